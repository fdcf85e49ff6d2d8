package domain

import (
	"fmt"
	"time"
)

// ConfigurationError means the inputs themselves are wrong (bad rule
// bounds, empty rule set, unordered history) and the run never starts.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// InsufficientDataError means the date-filtered history is too short to
// simulate. The caller can retry with a wider range.
type InsufficientDataError struct {
	Points   int
	Required int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient nav history: have %d points, need %d", e.Points, e.Required)
}

type DataQualityKind string

const (
	DataQualityBadNav            DataQualityKind = "bad_nav"
	DataQualityMissingDates      DataQualityKind = "missing_dates"
	DataQualityPartialRedemption DataQualityKind = "partial_redemption"
)

// DataQualityEvent is recorded in the decision log instead of aborting
// the run. Callers inspect these to detect degraded runs.
type DataQualityEvent struct {
	Date   time.Time       `json:"date"`
	Kind   DataQualityKind `json:"kind"`
	Detail string          `json:"detail"`
}
