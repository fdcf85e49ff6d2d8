package domain

import "github.com/shopspring/decimal"

// PortfolioState is the running book of a single simulation. Each run
// owns its own instance; it is never shared across concurrent runs.
type PortfolioState struct {
	SharesHeld   decimal.Decimal
	CashInvested decimal.Decimal
	LastNav      decimal.Decimal
}

// MarketValue prices the held shares at the last nav the portfolio was
// marked with.
func (p PortfolioState) MarketValue() decimal.Decimal {
	return p.SharesHeld.Mul(p.LastNav)
}

func (p PortfolioState) HoldingValueAt(nav decimal.Decimal) decimal.Decimal {
	return p.SharesHeld.Mul(nav)
}

func (p *PortfolioState) Buy(amount, nav decimal.Decimal) {
	p.SharesHeld = p.SharesHeld.Add(amount.Div(nav))
	p.CashInvested = p.CashInvested.Add(amount)
}

// Redeem sells amount worth of shares at nav, clamped so the share
// count never goes negative. It reports the shares actually redeemed
// and whether the request was clamped.
func (p *PortfolioState) Redeem(amount, nav decimal.Decimal) (redeemed decimal.Decimal, clamped bool) {
	redeemed = amount.Div(nav)
	if redeemed.GreaterThan(p.SharesHeld) {
		redeemed = p.SharesHeld
		clamped = true
	}
	p.SharesHeld = p.SharesHeld.Sub(redeemed)
	return redeemed, clamped
}
