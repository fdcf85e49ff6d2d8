package internal

import (
	"fundsim/internal/domain"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 {
	return &f
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func Test_SignalEngine_Evaluate(t *testing.T) {
	t.Run("buy rule scales the base amount", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{
				TodayMax:      floatPtr(-1),
				Action:        domain.ActionBuy,
				BuyMultiplier: 1.5,
			},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		decision, err := engine.Evaluate(-2.0, 0.5, nil)
		require.NoError(t, err)

		require.True(t, decision.Matched)
		require.Equal(t, domain.ActionBuy, decision.Action)
		require.Equal(t, 1.5, decision.BuyMultiplier)
		require.True(t, decision.ExecutionAmount.Equal(decimal.NewFromInt(150)))
		require.True(t, decision.RedeemAmount.IsZero())
	})

	t.Run("no match falls back to the engine-level hold", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{TodayMax: floatPtr(-1), Action: domain.ActionBuy, BuyMultiplier: 1},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		decision, err := engine.Evaluate(3.0, 0.0, nil)
		require.NoError(t, err)

		require.False(t, decision.Matched)
		require.Equal(t, domain.ActionHold, decision.Action)
		require.True(t, decision.ExecutionAmount.IsZero())
		require.True(t, decision.RedeemAmount.IsZero())
	})

	t.Run("amount-mode redemption needs no holding value", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{
				TodayMin:    floatPtr(2),
				Action:      domain.ActionSell,
				RedeemMode:  domain.RedeemAmount,
				RedeemValue: 300,
			},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		decision, err := engine.Evaluate(2.5, 0, nil)
		require.NoError(t, err)
		require.True(t, decision.RedeemAmount.Equal(decimal.NewFromInt(300)))
	})

	t.Run("ratio-mode redemption uses the holding value", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{
				TodayMin:    floatPtr(2),
				Action:      domain.ActionSell,
				RedeemMode:  domain.RedeemRatio,
				RedeemValue: 0.25,
			},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		decision, err := engine.Evaluate(2.5, 0, decimalPtr(decimal.NewFromInt(1000)))
		require.NoError(t, err)
		require.True(t, decision.RedeemAmount.Equal(decimal.NewFromInt(250)))
	})

	t.Run("ratio-mode redemption without holding value errors", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{
				TodayMin:    floatPtr(2),
				Action:      domain.ActionSell,
				RedeemMode:  domain.RedeemRatio,
				RedeemValue: 0.25,
			},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		_, err = engine.Evaluate(2.5, 0, nil)
		require.Error(t, err)
	})

	t.Run("non-finite inputs are rejected", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{Action: domain.ActionHold},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		_, err = engine.Evaluate(math.NaN(), 0, nil)
		require.Error(t, err)
	})

	t.Run("evaluation is pure", func(t *testing.T) {
		set, err := domain.NewRuleSet([]domain.Rule{
			{TodayMax: floatPtr(-1), Action: domain.ActionBuy, BuyMultiplier: 2},
		})
		require.NoError(t, err)

		engine := SignalEngine{RuleSet: set, BaseInvestAmount: decimal.NewFromInt(100)}
		first, err := engine.Evaluate(-2, 1, nil)
		require.NoError(t, err)
		second, err := engine.Evaluate(-2, 1, nil)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}
