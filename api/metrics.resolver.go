package api

import (
	"fundsim/internal/calculator"
	"fundsim/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type curvePointRequest struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type metricsRequest struct {
	// either a single curve, or several named ones for a per-dimension
	// breakdown
	Curve  []curvePointRequest            `json:"curve,omitempty"`
	Curves map[string][]curvePointRequest `json:"curves,omitempty"`

	Benchmark        []curvePointRequest `json:"benchmark,omitempty"`
	RiskFreeRate     *float64            `json:"riskFreeRate,omitempty"`
	PeriodsPerYear   int                 `json:"periodsPerYear,omitempty"`
	VaRConfidence    float64             `json:"varConfidence,omitempty"`
	EnabledMetrics   []string            `json:"enabledMetrics,omitempty"`
	IncludeAggregate bool                `json:"includeAggregate,omitempty"`
}

func (m ApiHandler) metrics(c *gin.Context) {
	var requestBody metricsRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	benchmark, err := parseCurve(requestBody.Benchmark)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	in := calculator.ComputeMetricsInput{
		Benchmark:      benchmark,
		RiskFreeRate:   requestBody.RiskFreeRate,
		PeriodsPerYear: requestBody.PeriodsPerYear,
		VaRConfidence:  requestBody.VaRConfidence,
		EnabledMetrics: requestBody.EnabledMetrics,
	}

	if len(requestBody.Curves) > 0 {
		curves := map[string]domain.EquityCurve{}
		for name, points := range requestBody.Curves {
			curve, err := parseCurve(points)
			if err != nil {
				returnErrorJson(err, c)
				return
			}
			curves[name] = curve
		}
		report, err := calculator.ComputeGrouped(curves, in, requestBody.IncludeAggregate)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		c.JSON(200, report)
		return
	}

	in.Curve, err = parseCurve(requestBody.Curve)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	report, err := calculator.Compute(in)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	c.JSON(200, report)
}

func parseCurve(points []curvePointRequest) (domain.EquityCurve, error) {
	curve := make(domain.EquityCurve, 0, len(points))
	for _, p := range points {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, err
		}
		curve = append(curve, domain.EquityPoint{
			Date:  date,
			Value: decimal.NewFromFloat(p.Value),
		})
	}
	return curve, nil
}
