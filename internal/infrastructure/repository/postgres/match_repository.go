package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("public_id", matchID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match=%s: %w", matchID, err)
	}

	format, err := match.ParseFormat(row.Format)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("decode match=%s: %w", matchID, err)
	}

	return match.Match{
		ID:          row.PublicID,
		HomeSide:    row.HomeSide,
		AwaySide:    row.AwaySide,
		Format:      format,
		ScheduledAt: row.ScheduledAt,
		Status:      match.Status(row.Status),
		Result:      nullStringToString(row.Result),
		PlayerIDs:   []string(row.PlayerIDs),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, true, nil
}

func (r *MatchRepository) TransitionStatus(ctx context.Context, matchID string, from []match.Status, to match.Status, result string) (bool, error) {
	fromValues := make([]string, 0, len(from))
	for _, s := range from {
		fromValues = append(fromValues, string(s))
	}

	builder := qb.Update("matches").
		Set("status", string(to)).
		Set("updated_at", time.Now().UTC())
	if result != "" {
		builder = builder.Set("result", result)
	}
	query, args, err := builder.
		Where(
			qb.Eq("public_id", matchID),
			qb.InStrings("status", fromValues),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition match status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition match=%s to %s: %w", matchID, to, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected transition match=%s: %w", matchID, err)
	}
	return affected > 0, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	format, err := match.ParseFormat(string(m.Format))
	if err != nil {
		return fmt.Errorf("upsert match=%s: %w", m.ID, err)
	}

	scheduledAt := m.ScheduledAt.UTC()
	if scheduledAt.IsZero() {
		scheduledAt = time.Now().UTC()
	}

	model := matchInsertModel{
		PublicID:    m.ID,
		HomeSide:    m.HomeSide,
		AwaySide:    m.AwaySide,
		Format:      string(format),
		ScheduledAt: scheduledAt,
		Status:      string(m.Status),
		Result:      optionalString(m.Result),
		PlayerIDs:   append(pq.StringArray(nil), m.PlayerIDs...),
	}

	query, args, err := qb.InsertModel("matches", model, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    home_side = EXCLUDED.home_side,
    away_side = EXCLUDED.away_side,
    format = EXCLUDED.format,
    scheduled_at = EXCLUDED.scheduled_at,
    status = EXCLUDED.status,
    result = EXCLUDED.result,
    player_public_ids = EXCLUDED.player_public_ids,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match=%s: %w", m.ID, err)
	}
	return nil
}
