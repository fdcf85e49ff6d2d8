package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EquityPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// EquityCurve is produced once per simulation run and read-only after.
type EquityCurve []EquityPoint

func (c EquityCurve) Values() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Value.InexactFloat64()
	}
	return out
}

// Returns derives day-over-day fraction returns from the curve's own
// values. Pairs with a zero prior value are skipped rather than divided
// through; a strategy curve legitimately starts at zero before the first
// buy.
func (c EquityCurve) Returns() []float64 {
	out := []float64{}
	for i := 1; i < len(c); i++ {
		prev := c[i-1].Value
		if prev.IsZero() {
			continue
		}
		out = append(out, c[i].Value.Sub(prev).Div(prev).InexactFloat64())
	}
	return out
}

// TrimLeadingZeros drops the zero-valued prefix so ratio metrics have a
// usable starting value.
func (c EquityCurve) TrimLeadingZeros() EquityCurve {
	for i, p := range c {
		if !p.Value.IsZero() {
			return c[i:]
		}
	}
	return EquityCurve{}
}
