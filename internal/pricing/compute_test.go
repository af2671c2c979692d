package pricing

import (
	"reflect"
	"testing"

	"github.com/centinela/backoffice/internal/rates"
)

func TestMarkupRoundTrip(t *testing.T) {
	q := Quote{
		CostItems: []CostItem{{Name: "base", Amount: 1000000, Basis: CostPerMonth}},
		Params: Parameters{
			MarginPct:    rates.New(20),
			FinancingPct: rates.New(2),
			PolicyPct:    rates.New(3),
		},
	}
	s := ComputeQuoteCosts(q)

	if s.BaseCost != 1000000 {
		t.Fatalf("expected base cost 1000000, got %d", s.BaseCost)
	}
	if s.SalePrice != 1333333 {
		t.Fatalf("expected sale price 1333333, got %d", s.SalePrice)
	}
	if want := rates.New(2).Of(s.SalePrice); s.MonthlyFinancial != want {
		t.Fatalf("financing must be computed on the solved price: got %d want %d", s.MonthlyFinancial, want)
	}
	if len(s.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", s.Warnings)
	}
}

func TestDegenerateMarkupFallsBackToBaseCost(t *testing.T) {
	for _, margin := range []float64{100, 1.0, 0.995, 120} {
		q := Quote{
			CostItems: []CostItem{{Name: "base", Amount: 500000, Basis: CostPerMonth}},
			Params:    Parameters{MarginPct: rates.New(margin)},
		}
		s := ComputeQuoteCosts(q)
		if s.SalePrice != s.BaseCost {
			t.Fatalf("margin %v: expected zero-markup fallback, got sale %d base %d", margin, s.SalePrice, s.BaseCost)
		}
		found := false
		for _, w := range s.Warnings {
			if w.Code == WarnDegenerateMarkup {
				found = true
			}
		}
		if !found {
			t.Fatalf("margin %v: expected %s warning, got %v", margin, WarnDegenerateMarkup, s.Warnings)
		}
	}
}

func TestPercentAndFractionInputsAgree(t *testing.T) {
	build := func(margin, financing float64) Summary {
		return ComputeQuoteCosts(Quote{
			Positions: []Position{{Name: "day guard", GuardCount: 4, MonthlyEmployerCost: 850000}},
			Params: Parameters{
				MarginPct:    rates.New(margin),
				FinancingPct: rates.New(financing),
			},
		})
	}
	asPercent := build(20, 2)
	asFraction := build(0.20, 0.02)
	if !reflect.DeepEqual(asPercent, asFraction) {
		t.Fatalf("20/2 and 0.20/0.02 must price identically:\n%+v\n%+v", asPercent, asFraction)
	}
}

func TestTenGuardScenario(t *testing.T) {
	q := Quote{
		Positions: []Position{{Name: "24/7 guard", GuardCount: 10, MonthlyEmployerCost: 900000}},
		Params:    Parameters{MarginPct: rates.New(20)},
	}
	s := ComputeQuoteCosts(q)

	if s.TotalGuards != 10 {
		t.Fatalf("expected 10 guards, got %d", s.TotalGuards)
	}
	if s.BaseCost != 9000000 {
		t.Fatalf("expected base cost 9000000, got %d", s.BaseCost)
	}
	if s.SalePrice != 11250000 {
		t.Fatalf("expected sale price 11250000, got %d", s.SalePrice)
	}
	// monthlyTotal tracks cost; salePrice tracks revenue.
	if s.MonthlyTotal != 9000000 {
		t.Fatalf("expected monthly total 9000000, got %d", s.MonthlyTotal)
	}
}

func TestUniformLevelizationIsLinearInChangeFrequency(t *testing.T) {
	build := func(changes float64) Summary {
		return ComputeQuoteCosts(Quote{
			Positions: []Position{{Name: "guard", GuardCount: 10, MonthlyEmployerCost: 800000}},
			Uniforms: []UniformItem{
				{Name: "full set", UnitPrice: 60000, Billing: BillingMonthly, Quantity: 1},
			},
			Params: Parameters{UniformChangesPerYear: changes},
		})
	}

	two := build(2)
	four := build(4)
	if two.MonthlyUniforms != 100000 {
		t.Fatalf("expected 100000 at two changes/year, got %d", two.MonthlyUniforms)
	}
	if four.MonthlyUniforms != 2*two.MonthlyUniforms {
		t.Fatalf("doubling changesPerYear must double monthlyUniforms: %d vs %d", four.MonthlyUniforms, two.MonthlyUniforms)
	}
}

func TestUniformBillingBasisNormalization(t *testing.T) {
	// 120,000 billed annually and 10,000 billed monthly are the same
	// run-rate, so the set prices must match.
	annual := ComputeQuoteCosts(Quote{
		Positions: []Position{{GuardCount: 1, MonthlyEmployerCost: 800000}},
		Uniforms:  []UniformItem{{Name: "parka", UnitPrice: 120000, Billing: BillingAnnual, Quantity: 1}},
		Params:    Parameters{UniformChangesPerYear: 12},
	})
	monthly := ComputeQuoteCosts(Quote{
		Positions: []Position{{GuardCount: 1, MonthlyEmployerCost: 800000}},
		Uniforms:  []UniformItem{{Name: "parka", UnitPrice: 10000, Billing: BillingMonthly, Quantity: 1}},
		Params:    Parameters{UniformChangesPerYear: 12},
	})
	if annual.MonthlyUniforms != monthly.MonthlyUniforms {
		t.Fatalf("annual/12 must equal monthly: %d vs %d", annual.MonthlyUniforms, monthly.MonthlyUniforms)
	}

	semi := ComputeQuoteCosts(Quote{
		Positions: []Position{{GuardCount: 1, MonthlyEmployerCost: 800000}},
		Uniforms:  []UniformItem{{Name: "boots", UnitPrice: 60000, Billing: BillingSemiannual, Quantity: 1}},
		Params:    Parameters{UniformChangesPerYear: 12},
	})
	if semi.MonthlyUniforms != 10000 {
		t.Fatalf("expected semiannual 60000/6 = 10000, got %d", semi.MonthlyUniforms)
	}
}

func TestExamLevelizationByTenure(t *testing.T) {
	q := Quote{
		Positions: []Position{{GuardCount: 10, MonthlyEmployerCost: 800000}},
		Exams:     []ExamItem{{Name: "psych", UnitPrice: 24000}, {Name: "physical", UnitPrice: 12000}},
		Params:    Parameters{AvgTenureMonths: 6},
	}
	s := ComputeQuoteCosts(q)
	// entriesPerYear = 12/6 = 2; 36,000 * 2/12 * 10 guards = 60,000.
	if s.MonthlyExams != 60000 {
		t.Fatalf("expected monthly exams 60000, got %d", s.MonthlyExams)
	}

	q.Params.AvgTenureMonths = 0
	if got := ComputeQuoteCosts(q).MonthlyExams; got != 0 {
		t.Fatalf("zero tenure must not divide, got %d", got)
	}
}

func TestMealsVehiclesInfrastructure(t *testing.T) {
	q := Quote{
		Positions: []Position{{GuardCount: 2, MonthlyEmployerCost: 800000}},
		Meals: []MealPlan{
			{Name: "lunch", Enabled: true, PricePerMeal: 4500, MealsPerDay: 2, DaysOfService: 30},
			{Name: "dinner", Enabled: false, PricePerMeal: 4500, MealsPerDay: 1, DaysOfService: 30},
		},
		Vehicles: []Vehicle{
			{Name: "pickup", Count: 2, MonthlyRent: 450000, MonthlyMaintenance: 50000,
				KmPerDay: 40, DaysPerMonth: 30, KmPerLiter: 10, FuelPriceCLP: 1300},
		},
		Infrastructure: []InfrastructureUnit{
			{Name: "guard booth", Quantity: 3, MonthlyRent: 80000},
			{Name: "generator", Quantity: 1, MonthlyRent: 120000, ConsumesFuel: true,
				LitersPerHour: 1.5, HoursPerDay: 10, DaysPerMonth: 30, FuelPriceCLP: 1300},
		},
	}
	s := ComputeQuoteCosts(q)

	if s.MonthlyMeals != 270000 {
		t.Fatalf("expected meals 270000 (disabled plan excluded), got %d", s.MonthlyMeals)
	}
	// Per pickup: 450,000 + 50,000 + (40*30/10)*1300 = 656,000; two of them.
	if s.MonthlyVehicles != 1312000 {
		t.Fatalf("expected vehicles 1312000, got %d", s.MonthlyVehicles)
	}
	// Booths 3*80,000 + generator 120,000 + 1.5*10*30*1300 = 240,000 + 178,500... -> 585,000 + ...
	// generator fuel: 45 liters/day * 30? (1.5*10*30)=450 liters * 1300 = 585,000.
	if s.MonthlyInfrastructure != 945000 {
		t.Fatalf("expected infrastructure 945000, got %d", s.MonthlyInfrastructure)
	}
}

func TestCostItemBasesAndTags(t *testing.T) {
	q := Quote{
		Positions: []Position{{GuardCount: 5, MonthlyEmployerCost: 800000}},
		CostItems: []CostItem{
			{Name: "radio rental", Amount: 15000, Basis: CostPerGuard},
			{Name: "supervision", Amount: 200000, Basis: CostPerMonth},
			{Name: "factoring line", Amount: 100000, Basis: CostPerMonth, Tag: CostTagFinancial},
			{Name: "liability policy", Amount: 90000, Basis: CostPerMonth, Tag: CostTagPolicy},
		},
	}
	s := ComputeQuoteCosts(q)
	if s.MonthlyCostItems != 275000 {
		t.Fatalf("expected 15000*5 + 200000 = 275000 with tagged items excluded, got %d", s.MonthlyCostItems)
	}
}

func TestMissingCatalogPriceIsFlaggedNotFatal(t *testing.T) {
	q := Quote{
		Positions: []Position{{GuardCount: 2, MonthlyEmployerCost: 800000}},
		Uniforms: []UniformItem{
			{Name: "shirt", UnitPrice: 12000, Billing: BillingMonthly, Quantity: 2},
			{Name: "winter jacket", PriceMissing: true, Quantity: 1},
		},
		Params: Parameters{UniformChangesPerYear: 12},
	}
	s := ComputeQuoteCosts(q)

	// The resolvable item still prices: 24,000 * 12/12 * 2 guards.
	if s.MonthlyUniforms != 48000 {
		t.Fatalf("expected 48000 from the priced item alone, got %d", s.MonthlyUniforms)
	}
	if len(s.Warnings) != 1 || s.Warnings[0].Code != WarnMissingCatalogPrice || s.Warnings[0].Item != "winter jacket" {
		t.Fatalf("expected a flagged zero-cost line, got %v", s.Warnings)
	}
}

func TestPolicyAmortization(t *testing.T) {
	q := Quote{
		CostItems: []CostItem{{Name: "base", Amount: 1000000, Basis: CostPerMonth}},
		Params: Parameters{
			MarginPct:            rates.New(20),
			ContractMonths:       12,
			PolicyContractMonths: 6,
			PolicyCoveragePct:    rates.New(30),
			PolicyRatePct:        rates.New(1.5),
		},
	}
	s := ComputeQuoteCosts(q)

	// sale = 1,250,000; contract amount = 1,250,000*6*0.30 = 2,250,000;
	// premium = 2,250,000*0.015 = 33,750; monthly = 33,750/12 = 2,813.
	if s.SalePrice != 1250000 {
		t.Fatalf("expected sale 1250000, got %d", s.SalePrice)
	}
	if s.MonthlyPolicy != 2813 {
		t.Fatalf("expected monthly policy 2813, got %d", s.MonthlyPolicy)
	}
	if s.MonthlyExtras != s.MonthlyFinancial+s.MonthlyPolicy {
		t.Fatalf("extras must equal financial+policy, got %d", s.MonthlyExtras)
	}
	if s.MonthlyTotal != s.BaseCost+s.MonthlyFinancial+s.MonthlyPolicy {
		t.Fatalf("monthly total must equal base+financial+policy, got %d", s.MonthlyTotal)
	}
}

func TestComputeQuoteCostsIsIdempotent(t *testing.T) {
	q := Quote{
		Positions: []Position{
			{Name: "day", GuardCount: 6, MonthlyEmployerCost: 870000},
			{Name: "night", GuardCount: 4, MonthlyEmployerCost: 930000},
		},
		Uniforms: []UniformItem{{Name: "set", UnitPrice: 180000, Billing: BillingAnnual, Quantity: 1}},
		Exams:    []ExamItem{{Name: "psych", UnitPrice: 24000}},
		Params: Parameters{
			MarginPct:             rates.New(18),
			FinancingPct:          rates.New(2.5),
			PolicyPct:             rates.New(1),
			ContractMonths:        24,
			PolicyContractMonths:  12,
			PolicyCoveragePct:     rates.New(25),
			PolicyRatePct:         rates.New(2),
			UniformChangesPerYear: 3,
			AvgTenureMonths:       8,
		},
	}
	first := ComputeQuoteCosts(q)
	second := ComputeQuoteCosts(q)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input must produce bit-identical output:\n%+v\n%+v", first, second)
	}
}
