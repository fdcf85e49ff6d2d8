package internal

import (
	"fmt"
	"fundsim/internal/domain"
	"math"

	"github.com/shopspring/decimal"
)

/**

the signal engine is a pure function of (rules, todayReturn, prevReturn,
optional holding value). returns are percent units - callers normalize
once at ingestion via domain.NewNavHistory, never here.

ratio-mode redeem rules need the current holding value to size the
redemption; amount-mode rules don't. passing nil holdingValue puts the
engine in amount-mode-only operation.

*/

type SignalEngine struct {
	RuleSet          *domain.RuleSet
	BaseInvestAmount decimal.Decimal
}

func (e SignalEngine) Evaluate(todayReturn, prevReturn float64, holdingValue *decimal.Decimal) (domain.StrategyDecision, error) {
	if e.RuleSet == nil {
		return domain.StrategyDecision{}, domain.ConfigurationError{Reason: "signal engine has no rule set"}
	}
	if math.IsNaN(todayReturn) || math.IsInf(todayReturn, 0) ||
		math.IsNaN(prevReturn) || math.IsInf(prevReturn, 0) {
		return domain.StrategyDecision{}, fmt.Errorf("non-finite return pair (%f, %f)", todayReturn, prevReturn)
	}

	rule, ok := e.RuleSet.Match(todayReturn, prevReturn)
	if !ok {
		return domain.DefaultHoldDecision(), nil
	}

	decision := domain.StrategyDecision{
		MatchedRuleID:   rule.ID,
		Matched:         true,
		Action:          rule.Action,
		BuyMultiplier:   rule.BuyMultiplier,
		ExecutionAmount: decimal.Zero,
		RedeemAmount:    decimal.Zero,
		Label:           rule.Label,
	}

	switch {
	case rule.Action.IsBuy():
		decision.ExecutionAmount = e.BaseInvestAmount.Mul(decimal.NewFromFloat(rule.BuyMultiplier))
		decision.OperationText = fmt.Sprintf("invest %s", decision.ExecutionAmount.StringFixed(2))
	case rule.Action.IsSell():
		redeem, err := redeemAmount(rule, holdingValue)
		if err != nil {
			return domain.StrategyDecision{}, err
		}
		decision.RedeemAmount = redeem
		decision.OperationText = fmt.Sprintf("redeem %s", redeem.StringFixed(2))
	default:
		decision.OperationText = "no action"
	}

	return decision, nil
}

func redeemAmount(rule domain.Rule, holdingValue *decimal.Decimal) (decimal.Decimal, error) {
	switch rule.RedeemMode {
	case domain.RedeemAmount:
		return decimal.NewFromFloat(rule.RedeemValue), nil
	case domain.RedeemRatio:
		if holdingValue == nil {
			return decimal.Zero, fmt.Errorf("rule %s uses ratio redemption but no holding value was supplied", rule.ID)
		}
		return holdingValue.Mul(decimal.NewFromFloat(rule.RedeemValue)), nil
	}
	return decimal.Zero, domain.ConfigurationError{Reason: fmt.Sprintf("rule %s: unknown redeem mode %q", rule.ID, rule.RedeemMode)}
}
