package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) GetByID(ctx context.Context, contestID string) (contest.Contest, bool, error) {
	query, args, err := qb.Select("*").From("contests").
		Where(
			qb.Eq("public_id", contestID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return contest.Contest{}, false, fmt.Errorf("build select contest query: %w", err)
	}

	var row contestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Contest{}, false, nil
		}
		return contest.Contest{}, false, fmt.Errorf("get contest=%s: %w", contestID, err)
	}

	item, err := row.toDomain()
	if err != nil {
		return contest.Contest{}, false, fmt.Errorf("decode contest=%s: %w", contestID, err)
	}
	return item, true, nil
}

func (r *ContestRepository) ListByMatch(ctx context.Context, matchID string, statuses ...contest.Status) ([]contest.Contest, error) {
	conditions := []qb.Condition{
		qb.Eq("match_public_id", matchID),
		qb.IsNull("deleted_at"),
	}
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		conditions = append(conditions, qb.InStrings("status", values))
	}

	query, args, err := qb.Select("*").From("contests").
		Where(conditions...).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select contests by match query: %w", err)
	}

	var rows []contestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select contests by match=%s: %w", matchID, err)
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode contest=%s: %w", row.PublicID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ContestRepository) Create(ctx context.Context, c contest.Contest) error {
	table, err := encodePrizeTable(c.PrizeTable)
	if err != nil {
		return fmt.Errorf("encode prize table contest=%s: %w", c.ID, err)
	}

	model := contestInsertModel{
		PublicID:   c.ID,
		MatchID:    c.MatchID,
		Name:       c.Name,
		EntryFee:   c.EntryFee,
		MaxEntries: c.MaxEntries,
		Rake:       c.Rake,
		RulesID:    c.RulesID,
		PrizeTable: table,
		Status:     string(c.Status),
	}
	query, args, err := qb.InsertModel("contests", model, "")
	if err != nil {
		return fmt.Errorf("build insert contest query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert contest=%s: %w", c.ID, err)
	}
	return nil
}

func (r *ContestRepository) TransitionByMatch(ctx context.Context, matchID string, from, to contest.Status) ([]string, error) {
	query, args, err := qb.Update("contests").
		Set("status", string(to)).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("status", string(from)),
			qb.IsNull("deleted_at"),
		).
		Suffix("RETURNING public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build transition contests query: %w", err)
	}

	var changed []string
	if err := r.db.SelectContext(ctx, &changed, query, args...); err != nil {
		return nil, fmt.Errorf("transition contests match=%s %s->%s: %w", matchID, from, to, err)
	}
	return changed, nil
}
