package rulejson

import (
	"encoding/json"
	"fmt"
	"fundsim/internal/domain"
	"io"
	"os"

	"github.com/google/uuid"
)

// ruleJSON is the ordered-array shape the rules editor exports. Bounds
// are percent units; a missing bound means unbounded on that side.
type ruleJSON struct {
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

func Load(r io.Reader) (*domain.RuleSet, error) {
	rows := []ruleJSON{}
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse rules json: %w", err)
	}

	rules := make([]domain.Rule, 0, len(rows))
	for i, row := range rows {
		rule := domain.Rule{
			TodayMin:      row.TodayMin,
			TodayMax:      row.TodayMax,
			PrevMin:       row.PrevMin,
			PrevMax:       row.PrevMax,
			Action:        domain.Action(row.Action),
			BuyMultiplier: row.BuyMultiplier,
			RedeemMode:    domain.RedeemMode(row.RedeemMode),
			RedeemValue:   row.RedeemValue,
			Label:         row.Label,
			Description:   row.Description,
		}
		if row.ID != "" {
			id, err := uuid.Parse(row.ID)
			if err != nil {
				return nil, fmt.Errorf("rule %d: invalid id %q: %w", i, row.ID, err)
			}
			rule.ID = id
		}
		rules = append(rules, rule)
	}

	return domain.NewRuleSet(rules)
}

func LoadFile(path string) (*domain.RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules json: %w", err)
	}
	defer f.Close()

	return Load(f)
}
