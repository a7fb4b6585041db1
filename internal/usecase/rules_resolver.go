package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
)

// RulesResolver loads stored rule sets and falls back to the built-in defaults
// for the default ID.
type RulesResolver struct {
	repo      scoring.Repository
	defaultID string
}

func NewRulesResolver(repo scoring.Repository, defaultID string) *RulesResolver {
	defaultID = strings.TrimSpace(defaultID)
	if defaultID == "" {
		defaultID = scoring.DefaultRulesID
	}
	return &RulesResolver{repo: repo, defaultID: defaultID}
}

func (r *RulesResolver) DefaultID() string {
	return r.defaultID
}

// Resolve returns the effective rules for rulesID and the ID actually used.
func (r *RulesResolver) Resolve(ctx context.Context, rulesID string) (scoring.EffectiveRules, string, error) {
	rulesID = strings.TrimSpace(rulesID)
	if rulesID == "" {
		rulesID = r.defaultID
	}

	if r.repo != nil {
		rules, exists, err := r.repo.GetRules(ctx, rulesID)
		if err != nil {
			return scoring.EffectiveRules{}, "", fmt.Errorf("get scoring rules=%s: %w", rulesID, err)
		}
		if exists {
			return rules.Resolve(), rulesID, nil
		}
	}

	if rulesID == r.defaultID || rulesID == scoring.DefaultRulesID {
		return scoring.DefaultRules().Resolve(), rulesID, nil
	}
	return scoring.EffectiveRules{}, "", fmt.Errorf("%w: scoring rules=%s", ErrNotFound, rulesID)
}
