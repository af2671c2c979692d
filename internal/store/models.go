package store

import (
	"time"
)

// RateTableVersion represents the 'rate_table_versions' table: the scalar
// statutory constants of one snapshot. Pension funds and tax brackets hang
// off it in their own tables.
type RateTableVersion struct {
	ID            int64     `db:"id"`
	EffectiveFrom time.Time `db:"effective_from"`
	UFValueCLP    float64   `db:"uf_value_clp"`
	MinimumWage   int64     `db:"minimum_wage_clp"`

	SISRate            float64 `db:"sis_rate"`
	WorkInjuryBaseRate float64 `db:"work_injury_base_rate"`

	AFCEmployerIndefinite float64 `db:"afc_employer_indefinite"`
	AFCWorkerIndefinite   float64 `db:"afc_worker_indefinite"`
	AFCEmployerFixedTerm  float64 `db:"afc_employer_fixed_term"`
	AFCWorkerFixedTerm    float64 `db:"afc_worker_fixed_term"`

	ContributionCapUF float64 `db:"contribution_cap_uf"`
	AFCCapUF          float64 `db:"afc_cap_uf"`

	PublicHealthRate float64 `db:"public_health_rate"`

	VacationProvisionRate  float64 `db:"vacation_provision_rate"`
	SeveranceProvisionRate float64 `db:"severance_provision_rate"`

	InsertedAt time.Time `db:"inserted_at"`
}

// PensionFundRow represents the 'pension_fund_rates' table.
type PensionFundRow struct {
	ID             int64   `db:"id"`
	VersionID      int64   `db:"version_id"`
	Code           string  `db:"code"`
	Name           string  `db:"name"`
	MandatoryRate  float64 `db:"mandatory_rate"`
	CommissionRate float64 `db:"commission_rate"`
}

// TaxBracketRow represents the 'tax_brackets' table. Deduction is the
// cumulative bracket deduction in CLP.
type TaxBracketRow struct {
	ID            int64   `db:"id"`
	VersionID     int64   `db:"version_id"`
	LowerBoundCLP int64   `db:"lower_bound_clp"`
	MarginalRate  float64 `db:"marginal_rate"`
	DeductionCLP  int64   `db:"deduction_clp"`
}

// CatalogItem represents the 'catalog_items' table: uniform pieces, exams,
// meal plans and fuel references priced by the supplier catalog.
type CatalogItem struct {
	ID           int64     `db:"id"`
	Kind         string    `db:"kind"`
	Name         string    `db:"name"`
	BasePriceCLP int64     `db:"base_price_clp"`
	Unit         string    `db:"unit"`
	Active       bool      `db:"active"`
	InsertedAt   time.Time `db:"inserted_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Catalog item kinds.
const (
	CatalogKindUniform = "uniform"
	CatalogKindExam    = "exam"
	CatalogKindMeal    = "meal"
	CatalogKindFuel    = "fuel"
)

// CompensationPackageRow represents the 'compensation_packages' table. Bonus
// lines hang off it in 'package_bonuses'.
type CompensationPackageRow struct {
	ID                  int64   `db:"id"`
	BaseSalaryCLP       int64   `db:"base_salary_clp"`
	GratificationMode   string  `db:"gratification_mode"`
	CustomGratification int64   `db:"custom_gratification_clp"`
	MealAllowance       int64   `db:"meal_allowance_clp"`
	TransportAllowance  int64   `db:"transport_allowance_clp"`
	OtherAllowance      int64   `db:"other_allowance_clp"`
	PensionFundCode     string  `db:"pension_fund_code"`
	HealthSystem        string  `db:"health_system"`
	HealthPlanRate      float64 `db:"health_plan_rate"`
	ContractType        string  `db:"contract_type"`
	WorkInjuryRate      float64 `db:"work_injury_rate"`
}

// PackageBonusRow represents the 'package_bonuses' table.
type PackageBonusRow struct {
	ID        int64   `db:"id"`
	PackageID int64   `db:"package_id"`
	Name      string  `db:"name"`
	AmountCLP int64   `db:"amount_clp"`
	PctOfBase float64 `db:"pct_of_base"`
	Taxable   bool    `db:"taxable"`
}

// PayEstimate represents the 'guard_pay_estimates' table: the cached
// display estimate shown next to a guard, invalidated whenever the salary
// structure of that guard changes.
type PayEstimate struct {
	GuardID         string    `db:"guard_id"`
	NetPayCLP       int64     `db:"net_pay_clp"`
	EmployerCostCLP int64     `db:"employer_cost_clp"`
	RateVersion     int64     `db:"rate_version"`
	ComputedAt      time.Time `db:"computed_at"`
}

// ImportHistory represents the 'catalog_import_history' table.
type ImportHistory struct {
	ID          int64     `db:"id"`
	SourceFile  string    `db:"source_file"`
	Kind        string    `db:"kind"`
	TriggerType string    `db:"trigger_type"`
	Status      string    `db:"status"`
	ItemCount   int       `db:"item_count"`
	ProcessedAt time.Time `db:"processed_at"`
}

var (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
)

var (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusPartial = "partial"
)
