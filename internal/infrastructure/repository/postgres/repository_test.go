package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestMatchRepository_TransitionStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET status = $1, updated_at = $2 WHERE public_id = $3 AND status IN ($4) AND deleted_at IS NULL")).
		WithArgs("live", sqlmock.AnyArg(), "m-1", "upcoming").
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.TransitionStatus(context.Background(), "m-1", []match.Status{match.StatusUpcoming}, match.StatusLive, "")
	require.NoError(t, err)
	assert.True(t, changed)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET status = $1, updated_at = $2, result = $3 WHERE public_id = $4")).
		WithArgs("completed", sqlmock.AnyArg(), "A won", "m-1", "live").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err = repo.TransitionStatus(context.Background(), "m-1", []match.Status{match.StatusLive}, match.StatusCompleted, "A won")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContestRepository_GetByIDDecodesPrizeTable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContestRepository(db)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "public_id", "match_public_id", "name", "entry_fee", "max_entries", "rake",
		"rules_public_id", "prize_table", "status", "created_at", "updated_at", "settled_at", "deleted_at",
	}).AddRow(
		1, "c-1", "m-1", "Mega", "49", 10, "0.12",
		"default", `[{"rank":1,"amount":"258.72"},{"rank":2,"amount":"107.8"}]`, "live", now, now, nil, nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM contests WHERE public_id = $1 AND deleted_at IS NULL LIMIT 1")).
		WithArgs("c-1").
		WillReturnRows(rows)

	item, exists, err := repo.GetByID(context.Background(), "c-1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, contest.StatusLive, item.Status)
	require.Len(t, item.PrizeTable, 2)
	assert.True(t, item.PrizeTable[0].Amount.Equal(decimal.RequireFromString("258.72")))
	assert.True(t, item.EntryFee.Equal(decimal.RequireFromString("49")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContestRepository_TransitionByMatchReturnsChangedIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewContestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE contests SET status = $1, updated_at = $2 WHERE match_public_id = $3 AND status = $4 AND deleted_at IS NULL RETURNING public_id")).
		WithArgs("settling", sqlmock.AnyArg(), "m-1", "live").
		WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow("c-1").AddRow("c-2"))

	changed, err := repo.TransitionByMatch(context.Background(), "m-1", contest.StatusLive, contest.StatusSettling)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-2"}, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFantasyTeamRepository_UpdateScoresSingleStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFantasyTeamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("FROM unnest($1::text[], $2::numeric[])")).
		WithArgs(`{"t-1","t-2"}`, `{"56.5","20"}`, "c-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.UpdateScores(context.Background(), "c-1", []fantasyteam.ScoreUpdate{
		{TeamID: "t-1", TotalPoints: decimal.RequireFromString("56.5")},
		{TeamID: "t-2", TotalPoints: decimal.RequireFromString("20")},
	})
	require.NoError(t, err)
	assert.NoError(t, repo.UpdateScores(context.Background(), "c-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoringRulesConfig_PreservesBandSemantics(t *testing.T) {
	rules := scoring.Rules{
		ID:           "no-economy",
		RunPoints:    decimal.NewNullDecimal(decimal.NewFromInt(2)),
		EconomyBands: []scoring.Threshold{},
	}

	raw, err := encodeJSON(toScoringRulesConfig(rules))
	require.NoError(t, err)

	var cfg scoringRulesConfig
	require.NoError(t, decodeJSON(raw, &cfg))

	var decoded scoring.Rules
	cfg.apply(&decoded)
	assert.True(t, decoded.RunPoints.Valid)
	assert.True(t, decoded.RunPoints.Decimal.Equal(decimal.NewFromInt(2)))
	assert.False(t, decoded.CenturyBonus.Valid)
	assert.Nil(t, decoded.StrikeRateBands)
	assert.NotNil(t, decoded.EconomyBands)
	assert.Empty(t, decoded.EconomyBands)
}

func TestNewJobDispatchModel(t *testing.T) {
	at := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	failed, err := newJobDispatchModel(jobscheduler.DispatchEvent{
		DispatchID:   "settle-match-m-1-20260601T180000Z",
		JobName:      "settle-match",
		Status:       jobscheduler.StatusFailed,
		ErrorMessage: "qstash down",
		OccurredAt:   at,
		TraceID:      "trace-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "unknown", failed.MatchID)
	assert.Equal(t, "{}", failed.Payload)
	require.NotNil(t, failed.FailedAt)
	assert.Equal(t, at, *failed.FailedAt)
	assert.Nil(t, failed.SentAt)
	require.NotNil(t, failed.LastError)
	assert.Equal(t, "qstash down", *failed.LastError)
	require.NotNil(t, failed.FailedTraceID)
	assert.Nil(t, failed.FailedSpanID)

	sent, err := newJobDispatchModel(jobscheduler.DispatchEvent{
		DispatchID: "d-1",
		MatchID:    "m-1",
		Status:     jobscheduler.StatusSent,
		Payload:    map[string]any{"match_id": "m-1"},
		OccurredAt: at,
	})
	require.NoError(t, err)
	assert.Nil(t, sent.LastError)
	assert.JSONEq(t, `{"match_id":"m-1"}`, sent.Payload)

	_, err = newJobDispatchModel(jobscheduler.DispatchEvent{DispatchID: " "})
	assert.Error(t, err)
}

func TestJobDispatchRepository_GetStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobDispatchRepository(db)
	query := regexp.QuoteMeta("SELECT status FROM job_dispatches WHERE dispatch_id = $1 AND deleted_at IS NULL LIMIT 1")

	mock.ExpectQuery(query).
		WithArgs("d-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectQuery(query).
		WithArgs("d-missing").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	status, found, err := repo.GetStatus(context.Background(), "d-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, jobscheduler.StatusCompleted, status)

	_, found, err = repo.GetStatus(context.Background(), "d-missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_UpsertRejectsUnknownFormat(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	err := repo.Upsert(context.Background(), match.Match{ID: "m-9", Format: "T5", Status: match.StatusUpcoming})
	assert.ErrorIs(t, err, match.ErrUnknownFormat)
	require.NoError(t, mock.ExpectationsWereMet())
}
