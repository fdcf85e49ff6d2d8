package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StrategyDecision is derived per evaluation and never stored past the
// simulation step that produced it.
type StrategyDecision struct {
	MatchedRuleID   uuid.UUID       `json:"matchedRuleId"`
	Matched         bool            `json:"matched"`
	Action          Action          `json:"action"`
	BuyMultiplier   float64         `json:"buyMultiplier"`
	ExecutionAmount decimal.Decimal `json:"executionAmount"`
	RedeemAmount    decimal.Decimal `json:"redeemAmount"`
	Label           string          `json:"label"`
	OperationText   string          `json:"operationText"`
}

// DefaultHoldDecision is what the engine falls back to when no rule in
// the set covers the input pair.
func DefaultHoldDecision() StrategyDecision {
	return StrategyDecision{
		Action:          ActionHold,
		ExecutionAmount: decimal.Zero,
		RedeemAmount:    decimal.Zero,
		Label:           "hold",
		OperationText:   "no action",
	}
}
