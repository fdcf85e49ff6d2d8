package calculator

import (
	"fundsim/internal/domain"
	"fundsim/internal/util"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func curveFromValues(values []float64) domain.EquityCurve {
	curve := make(domain.EquityCurve, len(values))
	date := util.NewDate(2023, 1, 2)
	for i, v := range values {
		curve[i] = domain.EquityPoint{Date: date, Value: decimal.NewFromFloat(v)}
		date = date.AddDate(0, 0, 1)
		if date.Weekday() == time.Saturday {
			date = date.AddDate(0, 0, 2)
		}
	}
	return curve
}

// a long oscillating curve so percentile-based metrics have enough
// observations
func oscillatingCurve(n int) domain.EquityCurve {
	values := make([]float64, n)
	v := 100.0
	for i := range values {
		if i%3 == 2 {
			v *= 0.985
		} else {
			v *= 1.01
		}
		values[i] = v
	}
	return curveFromValues(values)
}

func requireAllFinite(t *testing.T, report *domain.MetricsReport) {
	t.Helper()
	for name, metric := range report.Metrics {
		require.False(t, math.IsNaN(metric.Value), "metric %s is NaN", name)
		require.False(t, math.IsInf(metric.Value, 0), "metric %s is Inf", name)
	}
}

func Test_Compute_FlatCurve(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve: curveFromValues([]float64{100, 100, 100, 100, 100}),
	})
	require.NoError(t, err)

	require.Equal(t, 0.0, report.Metrics[MetricTotalReturn].Value)
	require.Equal(t, 0.0, report.Metrics[MetricVolatility].Value)
	require.Equal(t, 0.0, report.Metrics[MetricMaxDrawdown].Value)
	require.Equal(t, 0.0, report.Metrics[MetricSharpeRatio].Value)
	require.Contains(t, report.Degenerate, MetricSharpeRatio)
	requireAllFinite(t, report)
}

func Test_Compute_MaxDrawdown(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve: curveFromValues([]float64{1.00, 1.02, 0.98, 1.05}),
	})
	require.NoError(t, err)

	expected := (0.98 - 1.02) / 1.02
	require.InDelta(t, expected, report.Metrics[MetricMaxDrawdown].Value, 1e-9)
	require.LessOrEqual(t, report.Metrics[MetricMaxDrawdown].Value, 0.0)
}

func Test_Compute_TotalReturnAndCAGR(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve:          curveFromValues([]float64{100, 101, 102, 110}),
		PeriodsPerYear: 252,
	})
	require.NoError(t, err)

	require.InDelta(t, 0.10, report.Metrics[MetricTotalReturn].Value, 1e-9)

	expectedCAGR := math.Pow(110.0/100.0, 252.0/4.0) - 1
	require.InDelta(t, expectedCAGR, report.Metrics[MetricCAGR].Value, 1e-9)
}

func Test_Compute_IdenticalBenchmark(t *testing.T) {
	curve := oscillatingCurve(100)

	riskFree := 0.02
	report, err := Compute(ComputeMetricsInput{
		Curve:        curve,
		Benchmark:    curve,
		RiskFreeRate: &riskFree,
	})
	require.NoError(t, err)

	require.InDelta(t, 1.0, report.Metrics[MetricBeta].Value, 1e-9)
	require.InDelta(t, 0.0, report.Metrics[MetricAlpha].Value, 1e-9)
	require.Equal(t, 0.0, report.Metrics[MetricTrackingError].Value)
	require.Equal(t, 0.0, report.Metrics[MetricInformationRatio].Value)
	require.Contains(t, report.Degenerate, MetricInformationRatio)
	requireAllFinite(t, report)
}

func Test_Compute_NoBenchmark(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve: oscillatingCurve(60),
	})
	require.NoError(t, err)

	// beta's documented default without a usable benchmark
	require.Equal(t, 1.0, report.Metrics[MetricBeta].Value)
	require.Contains(t, report.Degenerate, MetricAlpha)
	requireAllFinite(t, report)
}

func Test_Compute_Alignment(t *testing.T) {
	// benchmark longer than strategy: both must truncate to the common
	// prefix instead of silently misaligning
	strategy := oscillatingCurve(50)
	benchmark := oscillatingCurve(80)

	report, err := Compute(ComputeMetricsInput{
		Curve:     strategy,
		Benchmark: benchmark,
	})
	require.NoError(t, err)

	// the first 49 returns of both series are identical, so beta stays 1
	require.InDelta(t, 1.0, report.Metrics[MetricBeta].Value, 1e-9)
	require.Equal(t, 0.0, report.Metrics[MetricTrackingError].Value)
}

func Test_Compute_VaRAndCVaR(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve:         oscillatingCurve(120),
		VaRConfidence: 0.95,
	})
	require.NoError(t, err)

	valueAtRisk := report.Metrics[MetricVaR]
	conditional := report.Metrics[MetricCVaR]

	require.NotNil(t, valueAtRisk.Confidence)
	require.Equal(t, 0.95, *valueAtRisk.Confidence)

	// every third day loses 1.5%, so the 5% tail sits at that loss
	require.Less(t, valueAtRisk.Value, 0.0)
	require.LessOrEqual(t, conditional.Value, valueAtRisk.Value)
	requireAllFinite(t, report)
}

func Test_Compute_WinRateAndProfitLossRatio(t *testing.T) {
	// returns: +1%, +1%, -1.5% repeating
	report, err := Compute(ComputeMetricsInput{
		Curve: oscillatingCurve(91),
	})
	require.NoError(t, err)

	require.InDelta(t, 2.0/3.0, report.Metrics[MetricWinRate].Value, 0.02)
	require.InDelta(t, 0.01/0.015, report.Metrics[MetricProfitLossRatio].Value, 0.01)
}

func Test_Compute_SortinoAndCalmar(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve: oscillatingCurve(100),
	})
	require.NoError(t, err)

	require.Greater(t, report.Metrics[MetricDownsideDeviation].Value, 0.0)
	require.NotContains(t, report.Degenerate, MetricSortinoRatio)
	require.NotContains(t, report.Degenerate, MetricCalmarRatio)
	requireAllFinite(t, report)
}

func Test_Compute_EnabledSubset(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve:          oscillatingCurve(60),
		EnabledMetrics: []string{MetricTotalReturn, MetricMaxDrawdown},
	})
	require.NoError(t, err)

	require.Len(t, report.Metrics, 2)
	require.Contains(t, report.Metrics, MetricTotalReturn)
	require.Contains(t, report.Metrics, MetricMaxDrawdown)
}

func Test_Compute_TooShort(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve: curveFromValues([]float64{100}),
	})
	require.NoError(t, err)

	for _, name := range AllMetrics() {
		require.Equal(t, 0.0, report.Metrics[name].Value)
		require.Contains(t, report.Degenerate, name)
	}
}

func Test_Compute_LeadingZerosTrimmed(t *testing.T) {
	report, err := Compute(ComputeMetricsInput{
		Curve: curveFromValues([]float64{0, 0, 100, 110}),
	})
	require.NoError(t, err)

	require.InDelta(t, 0.10, report.Metrics[MetricTotalReturn].Value, 1e-9)
	requireAllFinite(t, report)
}

func Test_ComputeGrouped(t *testing.T) {
	curves := map[string]domain.EquityCurve{
		"fund-a": oscillatingCurve(60),
		"fund-b": curveFromValues([]float64{100, 100, 100, 100}),
	}

	t.Run("one sub-report per dimension", func(t *testing.T) {
		report, err := ComputeGrouped(curves, ComputeMetricsInput{}, false)
		require.NoError(t, err)

		require.Len(t, report.SubReports, 2)
		require.Contains(t, report.SubReports, "fund-a")
		require.Contains(t, report.SubReports, "fund-b")
		require.Empty(t, report.Metrics)

		require.Equal(t, 0.0, report.SubReports["fund-b"].Metrics[MetricVolatility].Value)
		require.Greater(t, report.SubReports["fund-a"].Metrics[MetricVolatility].Value, 0.0)
	})

	t.Run("aggregate sums curves over the common length", func(t *testing.T) {
		report, err := ComputeGrouped(curves, ComputeMetricsInput{}, true)
		require.NoError(t, err)

		require.NotEmpty(t, report.Metrics)
		requireAllFinite(t, report)
	})
}
