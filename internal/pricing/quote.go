package pricing

import "github.com/centinela/backoffice/internal/rates"

// BillingBasis is the period a catalog unit price is quoted on. Prices are
// normalized to a monthly basis before any aggregation.
type BillingBasis string

const (
	BillingMonthly    BillingBasis = "monthly"
	BillingSemiannual BillingBasis = "semiannual"
	BillingAnnual     BillingBasis = "annual"
)

// CostBasis tags how a flat cost item scales.
type CostBasis string

const (
	CostPerMonth CostBasis = "per_month"
	CostPerGuard CostBasis = "per_guard"
)

// CostTag separates ordinary cost items from the financial/policy lines,
// which are derived from the solved sale price instead of being summed
// into the base cost.
type CostTag string

const (
	CostTagNone      CostTag = ""
	CostTagFinancial CostTag = "financial"
	CostTagPolicy    CostTag = "policy"
)

// Position is one staffed role: a resolved employer cost times a headcount.
// The package behind the cost was snapshotted at computation time, so later
// default changes never silently reprice the quote.
type Position struct {
	Name                string
	GuardCount          int
	MonthlyEmployerCost int64
}

func (p Position) MonthlyCost() int64 {
	return p.MonthlyEmployerCost * int64(p.GuardCount)
}

// UniformItem is one catalog line of the uniform set. PriceMissing marks a
// catalog lookup that could not be resolved; the item prices at zero and the
// summary carries a warning instead of aborting.
type UniformItem struct {
	Name         string
	UnitPrice    int64
	Billing      BillingBasis
	Quantity     int
	PriceMissing bool
}

// ExamItem is one pre-employment exam of the entry set.
type ExamItem struct {
	Name         string
	UnitPrice    int64
	PriceMissing bool
}

// MealPlan feeds one service; disabled plans cost nothing.
type MealPlan struct {
	Name          string
	Enabled       bool
	PricePerMeal  int64
	MealsPerDay   int
	DaysOfService int
}

// Vehicle is one patrol unit with rent, maintenance and fuel burn.
type Vehicle struct {
	Name               string
	Count              int
	MonthlyRent        int64
	MonthlyMaintenance int64
	KmPerDay           float64
	DaysPerMonth       int
	KmPerLiter         float64
	FuelPriceCLP       int64
}

// InfrastructureUnit is a fixed asset at the installation (booth, generator,
// lighting tower); fuel-consuming units burn liters per hour of operation.
type InfrastructureUnit struct {
	Name          string
	Quantity      int
	MonthlyRent   int64
	ConsumesFuel  bool
	LitersPerHour float64
	HoursPerDay   float64
	DaysPerMonth  int
	FuelPriceCLP  int64
}

// CostItem is a flat or per-guard monthly line.
type CostItem struct {
	Name   string
	Amount int64
	Basis  CostBasis
	Tag    CostTag
}

// Parameters are the quote-level knobs. Percentage fields are rates on the
// sale price, already normalized to fractions at the boundary.
type Parameters struct {
	MarginPct    rates.Rate
	FinancingPct rates.Rate
	PolicyPct    rates.Rate

	ContractMonths       int
	PolicyContractMonths int
	PolicyCoveragePct    rates.Rate
	PolicyRatePct        rates.Rate

	UniformChangesPerYear float64
	AvgTenureMonths       float64
	StandardMonthlyHours  int
}

// Quote is a fully materialized proposal: positions plus ancillary
// collections plus parameters, read in one snapshot. The quote exclusively
// owns its positions and items.
type Quote struct {
	ID             int64
	Positions      []Position
	Uniforms       []UniformItem
	Exams          []ExamItem
	Meals          []MealPlan
	Vehicles       []Vehicle
	Infrastructure []InfrastructureUnit
	CostItems      []CostItem
	Params         Parameters
}
