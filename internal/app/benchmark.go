package app

import (
	"fmt"
	"fundsim/internal/domain"
	"math"

	"github.com/maja42/goval"
	"github.com/shopspring/decimal"
)

// BenchmarkPolicy produces the comparison curve for a run. Policies get
// the same date-filtered points as the strategy and must be
// deterministic for identical input.
type BenchmarkPolicy interface {
	Name() string
	Run(points domain.NavHistory, base decimal.Decimal) (domain.EquityCurve, error)
}

// FixedDailyInvestPolicy invests the base amount every tradable day with
// no signal logic. This is the default comparison.
type FixedDailyInvestPolicy struct{}

func (FixedDailyInvestPolicy) Name() string { return "fixed_daily_invest" }

func (FixedDailyInvestPolicy) Run(points domain.NavHistory, base decimal.Decimal) (domain.EquityCurve, error) {
	curve := domain.EquityCurve{}
	shares := decimal.Zero
	for i := 1; i < len(points); i++ {
		day := points[i]
		if !day.Nav.IsPositive() {
			continue
		}
		shares = shares.Add(base.Div(day.Nav))
		curve = append(curve, domain.EquityPoint{
			Date:  day.Date,
			Value: shares.Mul(day.Nav),
		})
	}
	return curve, nil
}

// LumpSumBuyHoldPolicy buys once at the first tradable day's nav and
// holds. Zero Amount falls back to the run's base amount.
type LumpSumBuyHoldPolicy struct {
	Amount decimal.Decimal
}

func (LumpSumBuyHoldPolicy) Name() string { return "lump_sum_buy_hold" }

func (p LumpSumBuyHoldPolicy) Run(points domain.NavHistory, base decimal.Decimal) (domain.EquityCurve, error) {
	amount := p.Amount
	if amount.IsZero() {
		amount = base
	}

	curve := domain.EquityCurve{}
	shares := decimal.Zero
	for i := 1; i < len(points); i++ {
		day := points[i]
		if !day.Nav.IsPositive() {
			continue
		}
		if shares.IsZero() {
			shares = amount.Div(day.Nav)
		}
		curve = append(curve, domain.EquityPoint{
			Date:  day.Date,
			Value: shares.Mul(day.Nav),
		})
	}
	return curve, nil
}

// ExpressionPolicy sizes each day's investment with an expression over
// {todayReturn, prevReturn, nav, base}, e.g.
// "iff(todayReturn < -1, base * 2, base)". Negative results are clamped
// to zero. Evaluation is pure, so the policy stays deterministic.
type ExpressionPolicy struct {
	Expression string
}

func (ExpressionPolicy) Name() string { return "expression" }

func expressionFunctions() map[string]goval.ExpressionFunction {
	return map[string]goval.ExpressionFunction{
		"iff": func(args ...interface{}) (interface{}, error) {
			if len(args) != 3 {
				return 0, fmt.Errorf("iff needs 3 args, got %d", len(args))
			}
			cond, ok := args[0].(bool)
			if !ok {
				return 0, fmt.Errorf("iff condition must be a bool, got %T", args[0])
			}
			if cond {
				return args[1], nil
			}
			return args[2], nil
		},
	}
}

func (p ExpressionPolicy) Run(points domain.NavHistory, base decimal.Decimal) (domain.EquityCurve, error) {
	eval := goval.NewEvaluator()
	functions := expressionFunctions()

	curve := domain.EquityCurve{}
	shares := decimal.Zero
	for i := 1; i < len(points); i++ {
		day := points[i]
		if !day.Nav.IsPositive() {
			continue
		}

		variables := map[string]interface{}{
			"todayReturn": day.DailyReturn,
			"prevReturn":  points[i-1].DailyReturn,
			"nav":         day.Nav.InexactFloat64(),
			"base":        base.InexactFloat64(),
		}
		result, err := eval.Evaluate(p.Expression, variables, functions)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate benchmark expression: %w", err)
		}
		amount, err := toFloat(result)
		if err != nil {
			return nil, err
		}
		if amount > 0 {
			shares = shares.Add(decimal.NewFromFloat(amount).Div(day.Nav))
		}

		curve = append(curve, domain.EquityPoint{
			Date:  day.Date,
			Value: shares.Mul(day.Nav),
		})
	}
	return curve, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("benchmark expression produced non-finite amount")
		}
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, fmt.Errorf("benchmark expression produced %T, want a number", v)
}

// BenchmarkPolicyByName maps wire/CLI names onto policies.
func BenchmarkPolicyByName(name, expression string) (BenchmarkPolicy, error) {
	switch name {
	case "", "fixed_daily_invest":
		return FixedDailyInvestPolicy{}, nil
	case "lump_sum_buy_hold":
		return LumpSumBuyHoldPolicy{}, nil
	case "expression":
		if expression == "" {
			return nil, domain.ConfigurationError{Reason: "expression benchmark requires an expression"}
		}
		return ExpressionPolicy{Expression: expression}, nil
	}
	return nil, domain.ConfigurationError{Reason: fmt.Sprintf("unknown benchmark policy %q", name)}
}
