package payroll

import "github.com/centinela/backoffice/internal/rates"

// Warning codes embedded in a breakdown. Warnings never abort a simulation.
const (
	WarnGratificationExceedsEarnings = "gratification_exceeds_base_earnings"
)

// AFCContribution is the unemployment insurance line split by payer.
type AFCContribution struct {
	Total         int64
	EmployerShare int64
	WorkerShare   int64
}

// Deductions are the worker-side lines subtracted from taxable income.
type Deductions struct {
	Pension   int64
	Health    int64
	AFC       int64
	IncomeTax int64
}

func (d Deductions) Total() int64 {
	return d.Pension + d.Health + d.AFC + d.IncomeTax
}

// Breakdown is the full simulated payslip. It is recomputed on demand from a
// package and a rate table and never mutated in place.
type Breakdown struct {
	BaseSalary           int64
	Gratification        int64
	TaxableBonuses       int64
	NonTaxableAllowances int64
	TotalTaxableIncome   int64

	SISEmployer        int64
	AFC                AFCContribution
	WorkInjuryEmployer int64

	VacationProvision  int64
	SeveranceProvision int64

	MonthlyEmployerCost int64

	Deductions Deductions
	NetPay     int64

	Warnings []string
}

// Simulate runs the gross-to-net computation for one package against one
// rate-table snapshot. Pure and deterministic: identical inputs yield an
// identical breakdown.
func Simulate(pkg CompensationPackage, tbl rates.Table, asm Assumptions) (Breakdown, error) {
	var out Breakdown
	out.BaseSalary = pkg.BaseSalary
	out.NonTaxableAllowances = pkg.Allowances.Total()

	for _, b := range pkg.Bonuses {
		if b.Taxable {
			out.TaxableBonuses += b.MonthlyAmount(pkg.BaseSalary)
		} else {
			out.NonTaxableAllowances += b.MonthlyAmount(pkg.BaseSalary)
		}
	}

	earnings := pkg.BaseSalary + out.TaxableBonuses
	switch pkg.GratificationMode {
	case GratificationCustom:
		out.Gratification = pkg.CustomGratification
		if pkg.CustomGratification > earnings {
			out.Warnings = append(out.Warnings, WarnGratificationExceedsEarnings)
		}
	default:
		out.Gratification = rates.New(0.25).Of(earnings)
		if cap := tbl.GratificationCap(); out.Gratification > cap {
			out.Gratification = cap
		}
	}
	out.TotalTaxableIncome = earnings + out.Gratification

	// Employer contributions on the uncapped taxable income; the AFC base
	// carries its own ceiling.
	afcSplit, err := tbl.AFC(pkg.ContractType)
	if err != nil {
		return Breakdown{}, err
	}
	afcBase := capAt(out.TotalTaxableIncome, tbl.AFCCap())
	out.SISEmployer = tbl.SISRate.Of(out.TotalTaxableIncome)
	out.AFC.EmployerShare = afcSplit.Employer.Of(afcBase)
	out.AFC.WorkerShare = afcSplit.Worker.Of(afcBase)
	out.AFC.Total = out.AFC.EmployerShare + out.AFC.WorkerShare

	injuryRate := pkg.WorkInjuryRate
	if injuryRate.IsZero() {
		injuryRate = tbl.WorkInjuryBaseRate
	}
	out.WorkInjuryEmployer = injuryRate.Of(out.TotalTaxableIncome)

	if asm.IncludeVacationProvision {
		rate := asm.VacationProvisionRate
		if rate.IsZero() {
			rate = tbl.VacationProvisionRate
		}
		out.VacationProvision = rate.Of(out.TotalTaxableIncome)
	}
	if asm.IncludeSeveranceProvision {
		rate := asm.SeveranceProvisionRate
		if rate.IsZero() {
			rate = tbl.SeveranceProvisionRate
		}
		out.SeveranceProvision = rate.Of(out.TotalTaxableIncome)
	}

	out.MonthlyEmployerCost = out.TotalTaxableIncome +
		out.SISEmployer + out.AFC.EmployerShare + out.WorkInjuryEmployer +
		out.VacationProvision + out.SeveranceProvision +
		out.NonTaxableAllowances

	// Worker deductions, each on its independently capped base.
	fund, err := tbl.PensionFund(pkg.PensionFundCode)
	if err != nil {
		return Breakdown{}, err
	}
	contribBase := capAt(out.TotalTaxableIncome, tbl.ContributionCap())
	out.Deductions.Pension = fund.WorkerRate().Of(contribBase)

	healthRate, err := healthRateFor(pkg, tbl)
	if err != nil {
		return Breakdown{}, err
	}
	out.Deductions.Health = healthRate.Of(contribBase)
	out.Deductions.AFC = out.AFC.WorkerShare

	taxBase := out.TotalTaxableIncome - out.Deductions.Pension - out.Deductions.Health - out.Deductions.AFC
	out.Deductions.IncomeTax = tbl.TaxFor(taxBase)

	out.NetPay = out.TotalTaxableIncome - out.Deductions.Total() + out.NonTaxableAllowances
	return out, nil
}

func healthRateFor(pkg CompensationPackage, tbl rates.Table) (rates.Rate, error) {
	switch pkg.HealthSystem {
	case HealthPublic:
		return tbl.PublicHealthRate, nil
	case HealthPrivate:
		if pkg.HealthPlanRate.IsZero() {
			return tbl.PublicHealthRate, nil
		}
		return pkg.HealthPlanRate, nil
	default:
		return 0, &rates.ConfigurationError{Field: "health_system", Value: string(pkg.HealthSystem)}
	}
}

func capAt(amount, cap int64) int64 {
	if amount > cap {
		return cap
	}
	return amount
}
