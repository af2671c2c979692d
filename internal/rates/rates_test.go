package rates

import (
	"testing"
	"time"
)

func testTable() Table {
	return Table{
		Version:            1,
		EffectiveFrom:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UFValue:            37000,
		MinimumWage:        500000,
		SISRate:            New(1.88),
		WorkInjuryBaseRate: New(0.0093),
		AFCIndefinite:      AFCSplit{Employer: New(2.4), Worker: 0},
		AFCFixedTerm:       AFCSplit{Employer: New(3.0), Worker: New(0.006)},
		ContributionCapUF:  84.3,
		AFCCapUF:           126.6,
		PublicHealthRate:   New(7),
		PensionFunds: map[string]PensionFund{
			"habitat": {Code: "habitat", Name: "AFP Habitat", MandatoryRate: New(10), CommissionRate: New(1.27)},
			"modelo":  {Code: "modelo", Name: "AFP Modelo", MandatoryRate: New(10), CommissionRate: New(0.0058)},
		},
		TaxBrackets: []TaxBracket{
			{LowerBound: 0, MarginalRate: 0, Deduction: 0},
			{LowerBound: 891000, MarginalRate: New(4), Deduction: 35640},
			{LowerBound: 1980000, MarginalRate: New(8), Deduction: 114840},
			{LowerBound: 3300000, MarginalRate: New(13.5), Deduction: 296340},
			{LowerBound: 4620000, MarginalRate: New(23), Deduction: 735240},
		},
	}
}

func TestRateNormalization(t *testing.T) {
	if New(20) != New(0.20) {
		t.Fatalf("expected 20 and 0.20 to normalize to the same rate, got %v and %v", New(20), New(0.20))
	}
	if New(0.07).Fraction() != 0.07 {
		t.Fatalf("fraction input must pass through unchanged, got %v", New(0.07).Fraction())
	}
	if New(1).Fraction() != 1 {
		t.Fatalf("a rate of exactly 1 is a fraction, got %v", New(1).Fraction())
	}
}

func TestRateOfRounds(t *testing.T) {
	if got := New(1.27).Of(1000000); got != 12700 {
		t.Fatalf("expected 12700, got %d", got)
	}
	if got := New(0.0188).Of(999999); got != 18800 {
		t.Fatalf("expected 18800, got %d", got)
	}
}

func TestPensionFundLookup(t *testing.T) {
	tbl := testTable()

	f, err := tbl.PensionFund("habitat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.WorkerRate() != New(11.27) {
		t.Fatalf("expected worker rate 0.1127, got %v", f.WorkerRate())
	}

	_, err = tbl.PensionFund("nonexistent")
	cfgErr, ok := err.(*ConfigurationError)
	if !ok {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Field != "afp_name" {
		t.Fatalf("expected offending field afp_name, got %s", cfgErr.Field)
	}
}

func TestAFCSplitByContractType(t *testing.T) {
	tbl := testTable()

	indef, err := tbl.AFC(ContractIndefinite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if indef.Worker != 0 {
		t.Fatalf("indefinite contracts carry no worker AFC share, got %v", indef.Worker)
	}

	fixed, err := tbl.AFC(ContractFixedTerm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fixed.Worker == 0 {
		t.Fatal("fixed-term contracts carry a worker AFC share")
	}

	if _, err := tbl.AFC("seasonal"); err == nil {
		t.Fatal("expected ConfigurationError for unknown contract type")
	}
}

func TestCapsMaterializeFromUF(t *testing.T) {
	tbl := testTable()
	if got := tbl.ContributionCap(); got != 3119100 {
		t.Fatalf("expected contribution cap 3119100, got %d", got)
	}
	if got := tbl.AFCCap(); got != 4684200 {
		t.Fatalf("expected AFC cap 4684200, got %d", got)
	}
	if got := tbl.GratificationCap(); got != 197917 {
		t.Fatalf("expected gratification cap 197917, got %d", got)
	}
}

func TestTaxForBrackets(t *testing.T) {
	tbl := testTable()

	if got := tbl.TaxFor(800000); got != 0 {
		t.Fatalf("income below the floor must be untaxed, got %d", got)
	}
	if got := tbl.TaxFor(0); got != 0 {
		t.Fatalf("zero base must be untaxed, got %d", got)
	}
	// 1,000,000 falls in the 4% bracket: 40,000 - 35,640.
	if got := tbl.TaxFor(1000000); got != 4360 {
		t.Fatalf("expected 4360, got %d", got)
	}
	// 2,500,000 falls in the 8% bracket: 200,000 - 114,840.
	if got := tbl.TaxFor(2500000); got != 85160 {
		t.Fatalf("expected 85160, got %d", got)
	}
	// Exactly on a bracket bound belongs to that bracket.
	if got := tbl.TaxFor(891000); got != 0 {
		t.Fatalf("expected 0 at the floor bound (35640-35640), got %d", got)
	}
}
