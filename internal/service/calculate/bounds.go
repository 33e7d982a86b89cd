package calculate

import (
	"github.com/shopspring/decimal"
)

// Money columns are DECIMAL(20,4): every quantity, unit cost, line amount and
// total must stay below 10^15.
const (
	maxScale     = 20
	maxIntDigits = 15
)

var maxValue = decimal.New(1, maxIntDigits)

// inRange reports whether d has at most maxScale decimal places and a magnitude
// below maxValue. The exponent is checked before any comparison so inputs like
// 1e2000000000 are never expanded.
func inRange(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	e := d.Exponent()
	if e < -maxScale || e >= maxIntDigits {
		return false
	}
	return belowMax(d)
}

// belowMax is the magnitude check alone, for products and sums of values that
// already passed inRange.
func belowMax(d decimal.Decimal) bool {
	return d.Abs().LessThan(maxValue)
}

// rateInRange reports whether d is a fraction in [0, 1].
func rateInRange(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	if d.IsZero() {
		return true
	}
	e := d.Exponent()
	if e > 0 || e < -maxScale {
		return false
	}
	return !d.GreaterThan(one)
}
