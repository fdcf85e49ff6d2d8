package api

import (
	"fmt"
	"fundsim/internal/app"
	"fundsim/internal/calculator"
	"fundsim/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type navPointRequest struct {
	Date        string  `json:"date"`
	Nav         float64 `json:"nav"`
	DailyReturn float64 `json:"dailyReturn"`
}

type ruleRequest struct {
	ID            string   `json:"id,omitempty"`
	TodayMin      *float64 `json:"todayMin,omitempty"`
	TodayMax      *float64 `json:"todayMax,omitempty"`
	PrevMin       *float64 `json:"prevMin,omitempty"`
	PrevMax       *float64 `json:"prevMax,omitempty"`
	Action        string   `json:"action"`
	BuyMultiplier float64  `json:"buyMultiplier,omitempty"`
	RedeemMode    string   `json:"redeemMode,omitempty"`
	RedeemValue   float64  `json:"redeemValue,omitempty"`
	Label         string   `json:"label,omitempty"`
	Description   string   `json:"description,omitempty"`
}

type simulateRequest struct {
	NavHistory          []navPointRequest `json:"navHistory"`
	ReturnScale         string            `json:"returnScale"`
	Rules               []ruleRequest     `json:"rules"`
	BaseInvestAmount    float64           `json:"baseInvestAmount"`
	StartDate           string            `json:"startDate,omitempty"`
	EndDate             string            `json:"endDate,omitempty"`
	BenchmarkPolicy     string            `json:"benchmarkPolicy,omitempty"`
	BenchmarkExpression string            `json:"benchmarkExpression,omitempty"`

	RiskFreeRate   *float64 `json:"riskFreeRate,omitempty"`
	PeriodsPerYear int      `json:"periodsPerYear,omitempty"`
	EnabledMetrics []string `json:"enabledMetrics,omitempty"`
}

type simulateResponse struct {
	RunID          string                `json:"runId"`
	StrategyCurve  domain.EquityCurve    `json:"strategyCurve"`
	BenchmarkCurve domain.EquityCurve    `json:"benchmarkCurve"`
	Decisions      []app.DecisionRecord  `json:"decisions"`
	Report         *domain.MetricsReport `json:"report"`
}

func (m ApiHandler) simulate(c *gin.Context) {
	var requestBody simulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJson(err, c)
		return
	}

	history, ruleSet, err := parseSimulationInputs(requestBody)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	var startDate, endDate time.Time
	if requestBody.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", requestBody.StartDate)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	if requestBody.EndDate != "" {
		endDate, err = time.Parse("2006-01-02", requestBody.EndDate)
		if err != nil {
			returnErrorJson(err, c)
			return
		}
	}

	benchmark, err := app.BenchmarkPolicyByName(requestBody.BenchmarkPolicy, requestBody.BenchmarkExpression)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	result, err := m.SimulationHandler.Run(app.RunInput{
		History:          history,
		RuleSet:          ruleSet,
		BaseInvestAmount: decimal.NewFromFloat(requestBody.BaseInvestAmount),
		StartDate:        startDate,
		EndDate:          endDate,
		Benchmark:        benchmark,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	report, err := calculator.Compute(calculator.ComputeMetricsInput{
		Curve:          result.StrategyCurve,
		Benchmark:      result.BenchmarkCurve,
		RiskFreeRate:   requestBody.RiskFreeRate,
		PeriodsPerYear: requestBody.PeriodsPerYear,
		EnabledMetrics: requestBody.EnabledMetrics,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, simulateResponse{
		RunID:          result.RunID.String(),
		StrategyCurve:  result.StrategyCurve,
		BenchmarkCurve: result.BenchmarkCurve,
		Decisions:      result.Decisions,
		Report:         report,
	})
}

func parseSimulationInputs(requestBody simulateRequest) (domain.NavHistory, *domain.RuleSet, error) {
	scale, err := domain.ParseReturnScale(defaultString(requestBody.ReturnScale, "percent"))
	if err != nil {
		return nil, nil, err
	}

	points := make([]domain.NavPoint, 0, len(requestBody.NavHistory))
	for _, p := range requestBody.NavHistory {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, nil, err
		}
		points = append(points, domain.NavPoint{
			Date:        date,
			Nav:         decimal.NewFromFloat(p.Nav),
			DailyReturn: p.DailyReturn,
		})
	}
	history, err := domain.NewNavHistory(points, scale)
	if err != nil {
		return nil, nil, err
	}

	rules := make([]domain.Rule, 0, len(requestBody.Rules))
	for _, r := range requestBody.Rules {
		id := uuid.Nil
		if r.ID != "" {
			id, err = uuid.Parse(r.ID)
			if err != nil {
				return nil, nil, domain.ConfigurationError{Reason: fmt.Sprintf("invalid rule id %q", r.ID)}
			}
		}
		rules = append(rules, domain.Rule{
			ID:            id,
			TodayMin:      r.TodayMin,
			TodayMax:      r.TodayMax,
			PrevMin:       r.PrevMin,
			PrevMax:       r.PrevMax,
			Action:        domain.Action(r.Action),
			BuyMultiplier: r.BuyMultiplier,
			RedeemMode:    domain.RedeemMode(r.RedeemMode),
			RedeemValue:   r.RedeemValue,
			Label:         r.Label,
			Description:   r.Description,
		})
	}
	ruleSet, err := domain.NewRuleSet(rules)
	if err != nil {
		return nil, nil, err
	}

	return history, ruleSet, nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
