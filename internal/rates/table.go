package rates

import (
	"fmt"
	"math"
	"time"
)

// ContractType selects the unemployment insurance split.
type ContractType string

const (
	ContractIndefinite ContractType = "indefinite"
	ContractFixedTerm  ContractType = "fixed_term"
)

// ConfigurationError marks a lookup against the rate tables that has no
// matching entry. The engine never falls back to a substitute rate.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Field, e.Value)
}

// PensionFund holds the worker-side rates of one fund administrator.
type PensionFund struct {
	Code           string
	Name           string
	MandatoryRate  Rate
	CommissionRate Rate
}

// WorkerRate is the total deduction rate charged against the capped
// taxable base.
func (f PensionFund) WorkerRate() Rate {
	return f.MandatoryRate + f.CommissionRate
}

// TaxBracket is one step of the progressive income tax scale. Deduction is
// the cumulative bracket deduction in minor currency units, so the tax for a
// base falling inside the bracket is base*MarginalRate - Deduction.
type TaxBracket struct {
	LowerBound   int64
	MarginalRate Rate
	Deduction    int64
}

// AFCSplit is the unemployment insurance contribution split for one
// contract type.
type AFCSplit struct {
	Employer Rate
	Worker   Rate
}

// Table is one versioned snapshot of the statutory constants. Versions are
// immutable and selected by effective date; a statutory change supersedes the
// old version rather than mutating it, so historical computations stay
// reproducible.
type Table struct {
	Version       int64
	EffectiveFrom time.Time

	// Monetary unit value in CLP, used to materialize UF-denominated caps.
	UFValue     float64
	MinimumWage int64

	SISRate            Rate
	WorkInjuryBaseRate Rate

	AFCIndefinite AFCSplit
	AFCFixedTerm  AFCSplit

	// Taxable-base caps, in UF. Pension and health share one cap; AFC has
	// its own higher cap.
	ContributionCapUF float64
	AFCCapUF          float64

	PublicHealthRate Rate

	PensionFunds map[string]PensionFund

	// Ascending by LowerBound; the first bracket carries a zero marginal
	// rate, which is what makes income below the floor untaxed.
	TaxBrackets []TaxBracket

	VacationProvisionRate  Rate
	SeveranceProvisionRate Rate
}

func (t Table) PensionFund(code string) (PensionFund, error) {
	f, ok := t.PensionFunds[code]
	if !ok {
		return PensionFund{}, &ConfigurationError{Field: "afp_name", Value: code}
	}
	return f, nil
}

func (t Table) AFC(ct ContractType) (AFCSplit, error) {
	switch ct {
	case ContractIndefinite:
		return t.AFCIndefinite, nil
	case ContractFixedTerm:
		return t.AFCFixedTerm, nil
	default:
		return AFCSplit{}, &ConfigurationError{Field: "contract_type", Value: string(ct)}
	}
}

// ContributionCap is the pension/health taxable-base ceiling in CLP.
func (t Table) ContributionCap() int64 {
	return int64(math.Round(t.ContributionCapUF * t.UFValue))
}

// AFCCap is the unemployment insurance taxable-base ceiling in CLP.
func (t Table) AFCCap() int64 {
	return int64(math.Round(t.AFCCapUF * t.UFValue))
}

// GratificationCap is the statutory monthly ceiling of the auto_pct
// gratification: 4.75 minimum monthly wages spread over twelve months.
func (t Table) GratificationCap() int64 {
	return int64(math.Round(4.75 * float64(t.MinimumWage) / 12))
}

// TaxFor runs the progressive bracket lookup for a monthly tax base.
// The result is never negative.
func (t Table) TaxFor(base int64) int64 {
	if base <= 0 || len(t.TaxBrackets) == 0 {
		return 0
	}
	bracket := t.TaxBrackets[0]
	for _, b := range t.TaxBrackets[1:] {
		if base < b.LowerBound {
			break
		}
		bracket = b
	}
	tax := bracket.MarginalRate.Of(base) - bracket.Deduction
	if tax < 0 {
		return 0
	}
	return tax
}
