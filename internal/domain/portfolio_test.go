package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_PortfolioState(t *testing.T) {
	t.Run("buy accumulates shares and cash at the day's nav", func(t *testing.T) {
		p := PortfolioState{}
		p.Buy(decimal.NewFromInt(100), decimal.NewFromFloat(0.98))
		p.Buy(decimal.NewFromInt(100), decimal.NewFromFloat(1.01))

		expectedShares := decimal.NewFromInt(100).Div(decimal.NewFromFloat(0.98)).
			Add(decimal.NewFromInt(100).Div(decimal.NewFromFloat(1.01)))
		require.True(t, expectedShares.Equal(p.SharesHeld))
		require.True(t, decimal.NewFromInt(200).Equal(p.CashInvested))
	})

	t.Run("redeem clamps at zero shares", func(t *testing.T) {
		p := PortfolioState{}
		p.Buy(decimal.NewFromInt(100), decimal.NewFromInt(1))

		redeemed, clamped := p.Redeem(decimal.NewFromInt(500), decimal.NewFromInt(1))
		require.True(t, clamped)
		require.True(t, decimal.NewFromInt(100).Equal(redeemed))
		require.True(t, p.SharesHeld.IsZero())
	})

	t.Run("redeem within holdings is exact and not clamped", func(t *testing.T) {
		p := PortfolioState{}
		p.Buy(decimal.NewFromInt(100), decimal.NewFromInt(1))

		redeemed, clamped := p.Redeem(decimal.NewFromInt(40), decimal.NewFromInt(1))
		require.False(t, clamped)
		require.True(t, decimal.NewFromInt(40).Equal(redeemed))
		require.True(t, decimal.NewFromInt(60).Equal(p.SharesHeld))
	})

	t.Run("market value prices shares at the last mark", func(t *testing.T) {
		p := PortfolioState{}
		p.Buy(decimal.NewFromInt(100), decimal.NewFromInt(1))
		p.LastNav = decimal.NewFromFloat(1.05)

		require.True(t, decimal.NewFromInt(105).Equal(p.MarketValue()))
		require.True(t, decimal.NewFromInt(110).Equal(p.HoldingValueAt(decimal.NewFromFloat(1.10))))
	})
}
