package app

import (
	"fmt"
	"fundsim/internal"
	"fundsim/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SimulationHandler struct {
	Log *zap.SugaredLogger
}

type RunInput struct {
	History          domain.NavHistory
	RuleSet          *domain.RuleSet
	BaseInvestAmount decimal.Decimal
	StartDate        time.Time
	EndDate          time.Time

	// nil picks FixedDailyInvestPolicy so runs stay reproducible
	Benchmark BenchmarkPolicy
}

// DecisionRecord is the audit trail: exactly one per simulated day,
// including days skipped for data quality. A day can carry more than
// one data-quality event (a calendar gap and a bad nav, say), so they
// accumulate rather than overwrite.
type DecisionRecord struct {
	Date         time.Time                 `json:"date"`
	Decision     domain.StrategyDecision   `json:"decision"`
	SharesHeld   decimal.Decimal           `json:"sharesHeld"`
	CashInvested decimal.Decimal           `json:"cashInvested"`
	MarketValue  decimal.Decimal           `json:"marketValue"`
	Events       []domain.DataQualityEvent `json:"events,omitempty"`
}

type RunResult struct {
	RunID          uuid.UUID          `json:"runId"`
	StrategyCurve  domain.EquityCurve `json:"strategyCurve"`
	BenchmarkCurve domain.EquityCurve `json:"benchmarkCurve"`
	Decisions      []DecisionRecord   `json:"decisions"`
}

// calendar gaps longer than this get flagged; anything shorter is
// assumed to be a weekend/holiday closure
const maxCalendarGapDays = 5

// Run simulates the rule set against the nav history between StartDate
// and EndDate. The first in-range point only supplies prevDayReturn, so
// a history of N points yields at most N-1 curve points.
func (h SimulationHandler) Run(in RunInput) (*RunResult, error) {
	if in.RuleSet == nil {
		return nil, domain.ConfigurationError{Reason: "simulation requires a rule set"}
	}
	if in.BaseInvestAmount.IsNegative() {
		return nil, domain.ConfigurationError{Reason: "negative base invest amount"}
	}
	for i := 1; i < len(in.History); i++ {
		if !in.History[i-1].Date.Before(in.History[i].Date) {
			return nil, domain.ConfigurationError{Reason: "nav history dates out of order"}
		}
	}

	points := in.History.Between(in.StartDate, in.EndDate)
	if len(points) < 2 {
		return nil, domain.InsufficientDataError{Points: len(points), Required: 2}
	}

	signal := internal.SignalEngine{
		RuleSet:          in.RuleSet,
		BaseInvestAmount: in.BaseInvestAmount,
	}

	result := &RunResult{
		RunID:         uuid.New(),
		StrategyCurve: domain.EquityCurve{},
		Decisions:     []DecisionRecord{},
	}

	portfolio := domain.PortfolioState{
		SharesHeld:   decimal.Zero,
		CashInvested: decimal.Zero,
	}

	for i := 1; i < len(points); i++ {
		day := points[i]
		prev := points[i-1]

		record := DecisionRecord{Date: day.Date}

		if gapDays := int(day.Date.Sub(prev.Date).Hours() / 24); gapDays > maxCalendarGapDays {
			record.Events = append(record.Events, domain.DataQualityEvent{
				Date:   day.Date,
				Kind:   domain.DataQualityMissingDates,
				Detail: fmt.Sprintf("%d calendar days since previous point", gapDays),
			})
			if h.Log != nil {
				h.Log.Warnw("nav history gap", "date", day.Date, "days", gapDays)
			}
		}

		if !day.Nav.IsPositive() {
			// bad mark - skip the day, carry the prior valuation, never
			// fabricate a curve point at a bogus nav
			record.Events = append(record.Events, domain.DataQualityEvent{
				Date:   day.Date,
				Kind:   domain.DataQualityBadNav,
				Detail: fmt.Sprintf("nav %s is not positive", day.Nav),
			})
			record.Decision = domain.DefaultHoldDecision()
			record.SharesHeld = portfolio.SharesHeld
			record.CashInvested = portfolio.CashInvested
			record.MarketValue = portfolio.MarketValue()
			result.Decisions = append(result.Decisions, record)
			if h.Log != nil {
				h.Log.Warnw("skipping bad nav", "date", day.Date, "nav", day.Nav)
			}
			continue
		}

		holdingValue := portfolio.HoldingValueAt(day.Nav)
		decision, err := signal.Evaluate(day.DailyReturn, prev.DailyReturn, &holdingValue)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate signal on %s: %w", day.Date.Format("2006-01-02"), err)
		}

		if decision.Action.IsBuy() && decision.ExecutionAmount.IsPositive() {
			portfolio.Buy(decision.ExecutionAmount, day.Nav)
		}
		if decision.Action.IsSell() && decision.RedeemAmount.IsPositive() {
			requested := decision.RedeemAmount.Div(day.Nav)
			held := portfolio.SharesHeld
			if _, clamped := portfolio.Redeem(decision.RedeemAmount, day.Nav); clamped {
				// redemption cannot drive shares negative
				record.Events = append(record.Events, domain.DataQualityEvent{
					Date: day.Date,
					Kind: domain.DataQualityPartialRedemption,
					Detail: fmt.Sprintf(
						"requested %s shares, held %s",
						requested.StringFixed(6), held.StringFixed(6),
					),
				})
			}
		}

		portfolio.LastNav = day.Nav

		record.Decision = decision
		record.SharesHeld = portfolio.SharesHeld
		record.CashInvested = portfolio.CashInvested
		record.MarketValue = portfolio.MarketValue()
		result.Decisions = append(result.Decisions, record)
		result.StrategyCurve = append(result.StrategyCurve, domain.EquityPoint{
			Date:  day.Date,
			Value: portfolio.MarketValue(),
		})
	}

	benchmark := in.Benchmark
	if benchmark == nil {
		benchmark = FixedDailyInvestPolicy{}
	}
	benchmarkCurve, err := benchmark.Run(points, in.BaseInvestAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s benchmark: %w", benchmark.Name(), err)
	}
	result.BenchmarkCurve = benchmarkCurve

	return result, nil
}
