package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReturnScale tags which unit a caller's daily returns are expressed in.
// Everything past NewNavHistory runs on percent units ("2.5" means 2.5%);
// magnitude-based guessing is deliberately not supported.
type ReturnScale int

const (
	ScalePercent ReturnScale = iota
	ScaleFraction
)

func ParseReturnScale(s string) (ReturnScale, error) {
	switch s {
	case "percent":
		return ScalePercent, nil
	case "fraction":
		return ScaleFraction, nil
	}
	return 0, ConfigurationError{Reason: fmt.Sprintf("unknown return scale %q", s)}
}

type NavPoint struct {
	Date time.Time
	Nav  decimal.Decimal
	// percent units after NewNavHistory normalization
	DailyReturn float64
}

type NavHistory []NavPoint

// NewNavHistory is the single unit-normalization point for daily returns.
// Dates must be strictly increasing; gaps are fine, reordering is not.
func NewNavHistory(points []NavPoint, scale ReturnScale) (NavHistory, error) {
	if scale != ScalePercent && scale != ScaleFraction {
		return nil, ConfigurationError{Reason: fmt.Sprintf("unknown return scale %d", scale)}
	}

	out := make(NavHistory, len(points))
	copy(out, points)

	for i := range out {
		if i > 0 && !out[i-1].Date.Before(out[i].Date) {
			return nil, ConfigurationError{
				Reason: fmt.Sprintf(
					"nav history dates out of order: %s then %s",
					out[i-1].Date.Format("2006-01-02"),
					out[i].Date.Format("2006-01-02"),
				),
			}
		}
		if scale == ScaleFraction {
			out[i].DailyReturn *= 100
		}
	}

	return out, nil
}

// Between returns the points with start <= date <= end. Zero start/end
// leave that side unbounded.
func (h NavHistory) Between(start, end time.Time) NavHistory {
	out := NavHistory{}
	for _, p := range h {
		if !start.IsZero() && p.Date.Before(start) {
			continue
		}
		if !end.IsZero() && p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
