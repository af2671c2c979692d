package rates

import "math"

// Rate is a percentage expressed as a 0-1 fraction. Inputs arrive both as
// fractions (0.2) and as percent values (20); New is the single place where
// that ambiguity is resolved, so arithmetic downstream never double-scales.
type Rate float64

func New(v float64) Rate {
	if v > 1 {
		v = v / 100
	}
	return Rate(v)
}

// Of applies the rate to an amount in minor currency units, rounding
// half away from zero.
func (r Rate) Of(amount int64) int64 {
	return int64(math.Round(float64(amount) * float64(r)))
}

func (r Rate) Fraction() float64 {
	return float64(r)
}

func (r Rate) IsZero() bool {
	return r == 0
}
