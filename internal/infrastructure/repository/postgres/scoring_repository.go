package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) GetRules(ctx context.Context, rulesID string) (scoring.Rules, bool, error) {
	query, args, err := qb.Select("*").From("scoring_rules").
		Where(
			qb.Eq("public_id", rulesID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return scoring.Rules{}, false, fmt.Errorf("build select scoring rules query: %w", err)
	}

	var row scoringRulesTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Rules{}, false, nil
		}
		return scoring.Rules{}, false, fmt.Errorf("get scoring rules=%s: %w", rulesID, err)
	}

	var cfg scoringRulesConfig
	if err := decodeJSON(row.Config, &cfg); err != nil {
		return scoring.Rules{}, false, fmt.Errorf("decode scoring rules=%s config: %w", rulesID, err)
	}

	out := scoring.Rules{
		ID:        row.PublicID,
		Name:      row.Name,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
	}
	cfg.apply(&out)
	return out, true, nil
}

func (r *ScoringRepository) UpsertRules(ctx context.Context, rules scoring.Rules) error {
	config, err := encodeJSON(toScoringRulesConfig(rules))
	if err != nil {
		return fmt.Errorf("encode scoring rules=%s config: %w", rules.ID, err)
	}

	model := scoringRulesInsertModel{
		PublicID: rules.ID,
		Name:     rules.Name,
		Version:  rules.Version,
		Config:   config,
	}
	query, args, err := qb.InsertModel("scoring_rules", model, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    name = EXCLUDED.name,
    version = EXCLUDED.version,
    config = EXCLUDED.config,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert scoring rules query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert scoring rules=%s: %w", rules.ID, err)
	}
	return nil
}
