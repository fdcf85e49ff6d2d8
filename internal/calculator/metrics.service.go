package calculator

import (
	"fundsim/internal/domain"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

const (
	DefaultRiskFreeRate   = 0.02
	DefaultPeriodsPerYear = 252
	DefaultVaRConfidence  = 0.95
)

const (
	MetricTotalReturn       = "total_return"
	MetricCAGR              = "cagr"
	MetricVolatility        = "volatility"
	MetricSharpeRatio       = "sharpe_ratio"
	MetricMaxDrawdown       = "max_drawdown"
	MetricDownsideDeviation = "downside_deviation"
	MetricSortinoRatio      = "sortino_ratio"
	MetricCalmarRatio       = "calmar_ratio"
	MetricVaR               = "value_at_risk"
	MetricCVaR              = "conditional_value_at_risk"
	MetricBeta              = "beta"
	MetricAlpha             = "alpha"
	MetricTrackingError     = "tracking_error"
	MetricInformationRatio  = "information_ratio"
	MetricWinRate           = "win_rate"
	MetricProfitLossRatio   = "profit_loss_ratio"
)

func AllMetrics() []string {
	return []string{
		MetricTotalReturn,
		MetricCAGR,
		MetricVolatility,
		MetricSharpeRatio,
		MetricMaxDrawdown,
		MetricDownsideDeviation,
		MetricSortinoRatio,
		MetricCalmarRatio,
		MetricVaR,
		MetricCVaR,
		MetricBeta,
		MetricAlpha,
		MetricTrackingError,
		MetricInformationRatio,
		MetricWinRate,
		MetricProfitLossRatio,
	}
}

type ComputeMetricsInput struct {
	Curve     domain.EquityCurve
	Benchmark domain.EquityCurve

	// nil means DefaultRiskFreeRate; an explicit 0 is honored
	RiskFreeRate   *float64
	PeriodsPerYear int
	VaRConfidence  float64

	// nil means every metric
	EnabledMetrics []string
}

/**

every return-based metric runs on the curve's own derived daily returns,
not on the underlying nav series - strategy curves carry partial
redemptions and uneven cash flow that nav returns can't see.

degenerate denominators (zero variance, zero drawdown, zero tracking
error) yield a documented 0.0 sentinel and are listed in the report's
Degenerate field. nothing non-finite ever leaves this package.

*/

func Compute(in ComputeMetricsInput) (*domain.MetricsReport, error) {
	riskFree := DefaultRiskFreeRate
	if in.RiskFreeRate != nil {
		riskFree = *in.RiskFreeRate
	}
	periodsPerYear := in.PeriodsPerYear
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	confidence := in.VaRConfidence
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultVaRConfidence
	}

	report := &domain.MetricsReport{
		Metrics: map[string]domain.MetricValue{},
	}

	enabled := map[string]bool{}
	if len(in.EnabledMetrics) == 0 {
		for _, name := range AllMetrics() {
			enabled[name] = true
		}
	} else {
		for _, name := range in.EnabledMetrics {
			enabled[name] = true
		}
	}

	add := func(name string, value float64, confidenceLevel *float64) {
		if !enabled[name] {
			return
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			value = 0
			report.Degenerate = append(report.Degenerate, name)
		}
		report.Metrics[name] = domain.MetricValue{Value: value, Confidence: confidenceLevel}
	}
	degenerate := func(name string) {
		if !enabled[name] {
			return
		}
		report.Degenerate = append(report.Degenerate, name)
		report.Metrics[name] = domain.MetricValue{Value: 0}
	}

	curve := in.Curve.TrimLeadingZeros()
	values := curve.Values()
	returns := curve.Returns()
	annualized := annualizedReturn(values, periodsPerYear)

	if len(values) < 2 {
		for _, name := range AllMetrics() {
			degenerate(name)
		}
		return report, nil
	}

	add(MetricTotalReturn, values[len(values)-1]/values[0]-1, nil)
	add(MetricCAGR, annualized, nil)

	volatility := annualizedStdev(returns, periodsPerYear)
	add(MetricVolatility, volatility, nil)

	meanReturn := 0.0
	if len(returns) > 0 {
		meanReturn, _ = stats.Mean(returns)
	}
	if volatility == 0 {
		degenerate(MetricSharpeRatio)
	} else {
		add(MetricSharpeRatio, (meanReturn*float64(periodsPerYear)-riskFree)/volatility, nil)
	}

	maxDrawdown := computeMaxDrawdown(values)
	add(MetricMaxDrawdown, maxDrawdown, nil)

	downside := downsideDeviation(returns, 0, periodsPerYear)
	add(MetricDownsideDeviation, downside, nil)
	if downside == 0 {
		degenerate(MetricSortinoRatio)
	} else {
		add(MetricSortinoRatio, (meanReturn*float64(periodsPerYear)-riskFree)/downside, nil)
	}

	if maxDrawdown == 0 {
		degenerate(MetricCalmarRatio)
	} else {
		add(MetricCalmarRatio, annualized/math.Abs(maxDrawdown), nil)
	}

	valueAtRisk, conditional, ok := historicalVaR(returns, confidence)
	if !ok {
		degenerate(MetricVaR)
		degenerate(MetricCVaR)
	} else {
		add(MetricVaR, valueAtRisk, &confidence)
		add(MetricCVaR, conditional, &confidence)
	}

	computeRelativeMetrics(in.Benchmark, returns, annualized, riskFree, periodsPerYear, add, degenerate)

	positive, negative := 0, 0
	positiveSum, negativeSum := 0.0, 0.0
	for _, r := range returns {
		if r > 0 {
			positive++
			positiveSum += r
		} else if r < 0 {
			negative++
			negativeSum += r
		}
	}
	if len(returns) == 0 {
		degenerate(MetricWinRate)
	} else {
		add(MetricWinRate, float64(positive)/float64(len(returns)), nil)
	}
	if positive == 0 || negative == 0 {
		degenerate(MetricProfitLossRatio)
	} else {
		add(MetricProfitLossRatio, (positiveSum/float64(positive))/math.Abs(negativeSum/float64(negative)), nil)
	}

	return report, nil
}

// ComputeGrouped produces one sub-report per named curve, all sharing
// the options of base. With includeAggregate the top-level metrics are
// computed on the point-wise sum of the curves, truncated to their
// common length. The aggregate assumes the curves are date-aligned:
// points are summed by position and the summed curve carries the dates
// of the first curve in name order.
func ComputeGrouped(curves map[string]domain.EquityCurve, base ComputeMetricsInput, includeAggregate bool) (*domain.MetricsReport, error) {
	report := &domain.MetricsReport{
		Metrics:    map[string]domain.MetricValue{},
		SubReports: map[string]*domain.MetricsReport{},
	}

	names := make([]string, 0, len(curves))
	for name := range curves {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		in := base
		in.Curve = curves[name]
		sub, err := Compute(in)
		if err != nil {
			return nil, err
		}
		report.SubReports[name] = sub
	}

	if includeAggregate && len(names) > 0 {
		in := base
		in.Curve = aggregateCurve(curves, names)
		aggregate, err := Compute(in)
		if err != nil {
			return nil, err
		}
		report.Metrics = aggregate.Metrics
		report.Degenerate = aggregate.Degenerate
	}

	return report, nil
}

func aggregateCurve(curves map[string]domain.EquityCurve, names []string) domain.EquityCurve {
	trimmed := make([]domain.EquityCurve, 0, len(names))
	shortest := -1
	for _, name := range names {
		c := curves[name].TrimLeadingZeros()
		trimmed = append(trimmed, c)
		if shortest == -1 || len(c) < shortest {
			shortest = len(c)
		}
	}
	if shortest <= 0 {
		return domain.EquityCurve{}
	}

	out := make(domain.EquityCurve, shortest)
	for i := 0; i < shortest; i++ {
		point := domain.EquityPoint{Date: trimmed[0][i].Date}
		for _, c := range trimmed {
			point.Value = point.Value.Add(c[i].Value)
		}
		out[i] = point
	}
	return out
}

func computeRelativeMetrics(
	benchmark domain.EquityCurve,
	returns []float64,
	annualized float64,
	riskFree float64,
	periodsPerYear int,
	add func(string, float64, *float64),
	degenerate func(string),
) {
	benchmarkCurve := benchmark.TrimLeadingZeros()
	benchmarkReturns := benchmarkCurve.Returns()

	// silent misalignment produces wrong betas: both series are
	// truncated to their first min(n, m) returns before any pairwise
	// statistic
	n := len(returns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	aligned := returns[:n]
	alignedBenchmark := benchmarkReturns[:n]

	if n < 2 {
		// beta's documented default when no usable benchmark exists
		add(MetricBeta, 1.0, nil)
		degenerate(MetricAlpha)
		degenerate(MetricTrackingError)
		degenerate(MetricInformationRatio)
		return
	}

	benchmarkVariance, _ := stats.SampleVariance(alignedBenchmark)
	beta := 1.0
	if benchmarkVariance != 0 {
		covariance, _ := stats.Covariance(aligned, alignedBenchmark)
		beta = covariance / benchmarkVariance
	}
	add(MetricBeta, beta, nil)

	annualizedBenchmark := annualizedReturn(benchmarkCurve.Values(), periodsPerYear)
	add(MetricAlpha, annualized-(riskFree+beta*(annualizedBenchmark-riskFree)), nil)

	diffs := make([]float64, n)
	for i := 0; i < n; i++ {
		diffs[i] = aligned[i] - alignedBenchmark[i]
	}
	trackingError := annualizedStdev(diffs, periodsPerYear)
	add(MetricTrackingError, trackingError, nil)
	if trackingError == 0 {
		degenerate(MetricInformationRatio)
	} else {
		add(MetricInformationRatio, (annualized-annualizedBenchmark)/trackingError, nil)
	}
}

func annualizedReturn(values []float64, periodsPerYear int) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	ratio := values[len(values)-1] / values[0]
	if ratio <= 0 {
		return 0
	}
	return math.Pow(ratio, float64(periodsPerYear)/float64(len(values))) - 1
}

func annualizedStdev(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil || math.IsNaN(stdev) {
		return 0
	}
	return stdev * math.Sqrt(float64(periodsPerYear))
}

func computeMaxDrawdown(values []float64) float64 {
	maxDrawdown := 0.0
	runningMax := math.Inf(-1)
	for _, v := range values {
		if v > runningMax {
			runningMax = v
		}
		if runningMax > 0 {
			drawdown := (v - runningMax) / runningMax
			if drawdown < maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown
}

// downsideDeviation only penalizes returns below target (0 by default),
// annualized like volatility. Zero downside observations means 0.
func downsideDeviation(returns []float64, target float64, periodsPerYear int) float64 {
	sum, count := 0.0, 0
	for _, r := range returns {
		if r < target {
			d := r - target
			sum += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum/float64(count)) * math.Sqrt(float64(periodsPerYear))
}

// historicalVaR is historical simulation, not parametric: the
// (1-confidence) percentile of observed returns, and the mean of the
// tail at or below it.
func historicalVaR(returns []float64, confidence float64) (valueAtRisk, conditional float64, ok bool) {
	if len(returns) < 2 {
		return 0, 0, false
	}

	valueAtRisk, err := stats.Percentile(returns, (1-confidence)*100)
	if err != nil || math.IsNaN(valueAtRisk) {
		return 0, 0, false
	}

	tailSum, tailCount := 0.0, 0
	for _, r := range returns {
		if r <= valueAtRisk {
			tailSum += r
			tailCount++
		}
	}
	if tailCount == 0 {
		return valueAtRisk, 0, true
	}
	return valueAtRisk, tailSum / float64(tailCount), true
}
