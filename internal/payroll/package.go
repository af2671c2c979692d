package payroll

import "github.com/centinela/backoffice/internal/rates"

// HealthSystem selects between the public flat-rate scheme and a privately
// contracted plan.
type HealthSystem string

const (
	HealthPublic  HealthSystem = "fonasa"
	HealthPrivate HealthSystem = "isapre"
)

// GratificationMode selects how the statutory gratification line is built:
// a capped fraction of base earnings, or a negotiated fixed amount.
type GratificationMode string

const (
	GratificationAutoPct GratificationMode = "auto_pct"
	GratificationCustom  GratificationMode = "custom"
)

// Bonus is one additional line item of the package, either a flat amount or
// a percent of base salary.
type Bonus struct {
	Name      string
	Amount    int64
	PctOfBase rates.Rate
	Taxable   bool
}

// MonthlyAmount materializes the bonus against a base salary.
func (b Bonus) MonthlyAmount(baseSalary int64) int64 {
	if b.Amount != 0 {
		return b.Amount
	}
	return b.PctOfBase.Of(baseSalary)
}

// Allowances are flat non-taxable lines, outside the contribution base.
type Allowances struct {
	Meal      int64
	Transport int64
	Other     int64
}

func (a Allowances) Total() int64 {
	return a.Meal + a.Transport + a.Other
}

// CompensationPackage is the gross compensation of one guard, as resolved by
// the salary structure. Amounts are CLP; callers validate non-negativity at
// the boundary before the engine runs.
type CompensationPackage struct {
	BaseSalary          int64
	GratificationMode   GratificationMode
	CustomGratification int64
	Bonuses             []Bonus
	Allowances          Allowances

	PensionFundCode string
	HealthSystem    HealthSystem
	// Contracted plan rate for isapre packages. Zero falls back to the
	// statutory public rate, which is the legal minimum.
	HealthPlanRate rates.Rate

	ContractType rates.ContractType

	// Installation-specific work-injury premium rate; the mutual adjusts it
	// on accident history. Zero falls back to the table's base rate.
	WorkInjuryRate rates.Rate
}

// Assumptions toggle the forward-liability provisions. They are reported
// separately from the employer contributions so pricing callers can choose
// whether to fold them in.
type Assumptions struct {
	IncludeVacationProvision  bool
	IncludeSeveranceProvision bool
	// Zero rates fall back to the table defaults.
	VacationProvisionRate  rates.Rate
	SeveranceProvisionRate rates.Rate
}
