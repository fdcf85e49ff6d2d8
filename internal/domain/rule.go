package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type Action string

const (
	ActionStrongBuy Action = "strong_buy"
	ActionBuy       Action = "buy"
	ActionWeakBuy   Action = "weak_buy"
	ActionHold      Action = "hold"
	ActionWeakSell  Action = "weak_sell"
	ActionSell      Action = "sell"
	ActionStopLoss  Action = "stop_loss"
)

func (a Action) IsBuy() bool {
	return a == ActionStrongBuy || a == ActionBuy || a == ActionWeakBuy
}

func (a Action) IsSell() bool {
	return a == ActionWeakSell || a == ActionSell || a == ActionStopLoss
}

func (a Action) valid() bool {
	return a.IsBuy() || a.IsSell() || a == ActionHold
}

// RedeemMode picks how a sell-family rule sizes its redemption: a fixed
// currency amount, or a ratio of the current holding value.
type RedeemMode string

const (
	RedeemAmount RedeemMode = "amount"
	RedeemRatio  RedeemMode = "ratio"
)

// Rule bounds are percent-unit returns. Nil bounds are unbounded
// (-inf / +inf). Lower bounds are inclusive, upper bounds exclusive.
type Rule struct {
	ID            uuid.UUID
	TodayMin      *float64
	TodayMax      *float64
	PrevMin       *float64
	PrevMax       *float64
	Action        Action
	BuyMultiplier float64
	RedeemMode    RedeemMode
	RedeemValue   float64
	Label         string
	Description   string
}

func (r Rule) matches(todayReturn, prevReturn float64) bool {
	return inRange(todayReturn, r.TodayMin, r.TodayMax) &&
		inRange(prevReturn, r.PrevMin, r.PrevMax)
}

func inRange(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v >= *max {
		return false
	}
	return true
}

// RuleSet is an ordered rule list, immutable after construction and safe
// to share across concurrent simulations. First match wins.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules []Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, ConfigurationError{Reason: "rule set is empty"}
	}

	out := make([]Rule, len(rules))
	copy(out, rules)

	for i := range out {
		if out[i].ID == uuid.Nil {
			out[i].ID = uuid.New()
		}
		if err := validateRule(out[i], i); err != nil {
			return nil, err
		}
		if out[i].RedeemMode == "" {
			out[i].RedeemMode = RedeemAmount
		}
	}

	return &RuleSet{rules: out}, nil
}

func validateRule(r Rule, position int) error {
	if !r.Action.valid() {
		return ConfigurationError{Reason: fmt.Sprintf("rule %d: unknown action %q", position, r.Action)}
	}
	if r.TodayMin != nil && r.TodayMax != nil && *r.TodayMin > *r.TodayMax {
		return ConfigurationError{Reason: fmt.Sprintf("rule %d: today bound min %f > max %f", position, *r.TodayMin, *r.TodayMax)}
	}
	if r.PrevMin != nil && r.PrevMax != nil && *r.PrevMin > *r.PrevMax {
		return ConfigurationError{Reason: fmt.Sprintf("rule %d: prev bound min %f > max %f", position, *r.PrevMin, *r.PrevMax)}
	}
	if r.BuyMultiplier < 0 {
		return ConfigurationError{Reason: fmt.Sprintf("rule %d: negative buy multiplier %f", position, r.BuyMultiplier)}
	}
	if r.RedeemValue < 0 {
		return ConfigurationError{Reason: fmt.Sprintf("rule %d: negative redeem value %f", position, r.RedeemValue)}
	}
	if r.RedeemMode != "" && r.RedeemMode != RedeemAmount && r.RedeemMode != RedeemRatio {
		return ConfigurationError{Reason: fmt.Sprintf("rule %d: unknown redeem mode %q", position, r.RedeemMode)}
	}
	return nil
}

// Rules returns a copy so callers can't mutate the set.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Match returns the first rule covering the pair, in declared order.
func (s *RuleSet) Match(todayReturn, prevReturn float64) (Rule, bool) {
	for _, r := range s.rules {
		if r.matches(todayReturn, prevReturn) {
			return r, true
		}
	}
	return Rule{}, false
}
