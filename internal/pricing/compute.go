package pricing

import "math"

// Warning codes carried inside a summary. A warning flags a line item or a
// degenerate parameter set without blocking the computation.
const (
	WarnDegenerateMarkup    = "degenerate_markup"
	WarnMissingCatalogPrice = "missing_catalog_price"
)

// Markup rates summing to this share of the sale price or beyond make the
// solve degenerate; the quote falls back to zero-markup pricing instead of
// failing, so the proposal still shows a sellable number.
const degenerateMarkupFloor = 0.99

type Warning struct {
	Code string `json:"code"`
	Item string `json:"item,omitempty"`
}

// Summary is the monthly cost breakdown of one quote. Monetary fields are
// CLP. It is recomputed wholesale from current inputs on every call; nothing
// is patched incrementally.
type Summary struct {
	TotalGuards           int   `json:"totalGuards"`
	MonthlyPositions      int64 `json:"monthlyPositions"`
	MonthlyUniforms       int64 `json:"monthlyUniforms"`
	MonthlyExams          int64 `json:"monthlyExams"`
	MonthlyMeals          int64 `json:"monthlyMeals"`
	MonthlyVehicles       int64 `json:"monthlyVehicles"`
	MonthlyInfrastructure int64 `json:"monthlyInfrastructure"`
	MonthlyCostItems      int64 `json:"monthlyCostItems"`
	MonthlyFinancial      int64 `json:"monthlyFinancial"`
	MonthlyPolicy         int64 `json:"monthlyPolicy"`
	// MonthlyExtras duplicates financial+policy; kept for compatibility with
	// the proposal templates that consume it.
	MonthlyExtras int64 `json:"monthlyExtras"`
	MonthlyTotal  int64 `json:"monthlyTotal"`

	BaseCost  int64 `json:"baseCost"`
	SalePrice int64 `json:"salePrice"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// ComputeQuoteCosts aggregates per-position employer costs and ancillary
// collections into a base cost, then solves the sale price for markup rates
// expressed as fractions of the sale price. Pure and idempotent.
func ComputeQuoteCosts(q Quote) Summary {
	var s Summary

	for _, p := range q.Positions {
		s.TotalGuards += p.GuardCount
		s.MonthlyPositions += p.MonthlyCost()
	}

	s.MonthlyUniforms = computeUniforms(q, s.TotalGuards, &s.Warnings)
	s.MonthlyExams = computeExams(q, s.TotalGuards, &s.Warnings)
	s.MonthlyMeals = computeMeals(q)
	s.MonthlyVehicles = computeVehicles(q)
	s.MonthlyInfrastructure = computeInfrastructure(q)
	s.MonthlyCostItems = computeCostItems(q, s.TotalGuards)

	s.BaseCost = s.MonthlyPositions + s.MonthlyUniforms + s.MonthlyExams +
		s.MonthlyMeals + s.MonthlyVehicles + s.MonthlyInfrastructure +
		s.MonthlyCostItems

	var degenerate bool
	s.SalePrice, degenerate = solveSalePrice(s.BaseCost, q.Params)
	if degenerate {
		s.Warnings = append(s.Warnings, Warning{Code: WarnDegenerateMarkup})
	}

	// Financing depends on the solved price, so it comes after the solve.
	s.MonthlyFinancial = q.Params.FinancingPct.Of(s.SalePrice)
	s.MonthlyPolicy = amortizePolicy(s.SalePrice, q.Params)
	s.MonthlyExtras = s.MonthlyFinancial + s.MonthlyPolicy
	s.MonthlyTotal = s.BaseCost + s.MonthlyFinancial + s.MonthlyPolicy

	return s
}

// solveSalePrice solves price = baseCost / (1 - margin - financing - policy),
// the algebraic consequence of rates defined against revenue rather than
// cost. At or past the degenerate floor it falls back to zero markup.
func solveSalePrice(baseCost int64, p Parameters) (int64, bool) {
	sum := p.MarginPct.Fraction() + p.FinancingPct.Fraction() + p.PolicyPct.Fraction()
	if sum >= degenerateMarkupFloor {
		return baseCost, true
	}
	return int64(math.Round(float64(baseCost) / (1 - sum))), false
}

// amortizePolicy spreads the insurance premium bought for the policy's own
// contract period over the proposal's billing term.
func amortizePolicy(salePrice int64, p Parameters) int64 {
	if p.ContractMonths <= 0 || p.PolicyContractMonths <= 0 {
		return 0
	}
	contractAmount := float64(salePrice) * float64(p.PolicyContractMonths) * p.PolicyCoveragePct.Fraction()
	premium := contractAmount * p.PolicyRatePct.Fraction()
	return int64(math.Round(premium / float64(p.ContractMonths)))
}

// computeUniforms levelizes a full uniform set into a monthly run-rate:
// catalog unit prices are first normalized onto a monthly basis, summed into
// a set price, then spread by the contracted change frequency per guard.
func computeUniforms(q Quote, guards int, warnings *[]Warning) int64 {
	var setPrice float64
	for _, u := range q.Uniforms {
		if u.PriceMissing {
			*warnings = append(*warnings, Warning{Code: WarnMissingCatalogPrice, Item: u.Name})
			continue
		}
		setPrice += monthlyBasis(u.UnitPrice, u.Billing) * float64(u.Quantity)
	}
	return int64(math.Round(setPrice * q.Params.UniformChangesPerYear / 12 * float64(guards)))
}

// computeExams levelizes the entry exam set by expected turnover: average
// tenure determines how many times per year a post is re-staffed.
func computeExams(q Quote, guards int, warnings *[]Warning) int64 {
	if q.Params.AvgTenureMonths <= 0 {
		return 0
	}
	var setPrice float64
	for _, e := range q.Exams {
		if e.PriceMissing {
			*warnings = append(*warnings, Warning{Code: WarnMissingCatalogPrice, Item: e.Name})
			continue
		}
		setPrice += float64(e.UnitPrice)
	}
	entriesPerYear := 12 / q.Params.AvgTenureMonths
	return int64(math.Round(setPrice * entriesPerYear / 12 * float64(guards)))
}

func computeMeals(q Quote) int64 {
	var total int64
	for _, m := range q.Meals {
		if !m.Enabled {
			continue
		}
		total += m.PricePerMeal * int64(m.MealsPerDay) * int64(m.DaysOfService)
	}
	return total
}

func computeVehicles(q Quote) int64 {
	var total int64
	for _, v := range q.Vehicles {
		unit := v.MonthlyRent + v.MonthlyMaintenance
		if v.KmPerLiter > 0 {
			liters := v.KmPerDay * float64(v.DaysPerMonth) / v.KmPerLiter
			unit += int64(math.Round(liters * float64(v.FuelPriceCLP)))
		}
		total += unit * int64(v.Count)
	}
	return total
}

func computeInfrastructure(q Quote) int64 {
	var total int64
	for _, u := range q.Infrastructure {
		unit := u.MonthlyRent
		if u.ConsumesFuel {
			liters := u.LitersPerHour * u.HoursPerDay * float64(u.DaysPerMonth)
			unit += int64(math.Round(liters * float64(u.FuelPriceCLP)))
		}
		total += unit * int64(u.Quantity)
	}
	return total
}

func computeCostItems(q Quote, guards int) int64 {
	var total int64
	for _, c := range q.CostItems {
		if c.Tag == CostTagFinancial || c.Tag == CostTagPolicy {
			continue
		}
		switch c.Basis {
		case CostPerGuard:
			total += c.Amount * int64(guards)
		default:
			total += c.Amount
		}
	}
	return total
}

func monthlyBasis(price int64, b BillingBasis) float64 {
	switch b {
	case BillingAnnual:
		return float64(price) / 12
	case BillingSemiannual:
		return float64(price) / 6
	default:
		return float64(price)
	}
}
