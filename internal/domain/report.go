package domain

// MetricValue carries a computed statistic plus, where relevant, the
// confidence level it was computed at (VaR/CVaR).
type MetricValue struct {
	Value      float64  `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// MetricsReport is created once from finished equity curves and
// read-only afterward. Degenerate lists the metrics that hit a guarded
// zero denominator and returned their 0.0 sentinel.
type MetricsReport struct {
	Metrics    map[string]MetricValue    `json:"metrics"`
	SubReports map[string]*MetricsReport `json:"subReports,omitempty"`
	Degenerate []string                  `json:"degenerate,omitempty"`
}
