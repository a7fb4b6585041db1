package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockContestSQL    = regexp.QuoteMeta("SELECT status FROM contests WHERE public_id = $1 AND deleted_at IS NULL FOR UPDATE")
	insertWinningsSQL = regexp.QuoteMeta("INSERT INTO wallet_transactions (public_id, user_id, type, amount, contest_public_id, position, rank, points, created_at)")
	creditWalletSQL   = regexp.QuoteMeta("INSERT INTO wallets (user_id, cash_balance, total_winnings, updated_at)")
	markSettledSQL    = regexp.QuoteMeta("UPDATE contests SET status = $1, settled_at = $2, updated_at = $3 WHERE public_id = $4 AND status = $5")
)

func newMockLedger(t *testing.T) (*SettlementLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ledger := NewSettlementLedger(sqlx.NewDb(db, "postgres"))
	ledger.now = func() time.Time { return time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC) }
	return ledger, mock
}

func samplePayouts() []settlement.Payout {
	return []settlement.Payout{
		{TransactionID: "tx-1", TeamID: "t-1", UserID: "u-1", Position: 1, Rank: 1, Amount: decimal.RequireFromString("264"), Points: decimal.RequireFromString("310.5")},
		{TransactionID: "tx-2", TeamID: "t-2", UserID: "u-2", Position: 2, Rank: 2, Amount: decimal.RequireFromString("110"), Points: decimal.RequireFromString("290")},
	}
}

func TestSettlementLedger_Settle(t *testing.T) {
	t.Run("credits every payout and marks settled", func(t *testing.T) {
		ledger, mock := newMockLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockContestSQL).
			WithArgs("c-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("settling"))
		for _, p := range samplePayouts() {
			mock.ExpectQuery(insertWinningsSQL).
				WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow(p.TransactionID))
			mock.ExpectExec(creditWalletSQL).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectExec(markSettledSQL).
			WithArgs("settled", sqlmock.AnyArg(), sqlmock.AnyArg(), "c-1", "settling").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		outcome, err := ledger.Settle(context.Background(), "c-1", samplePayouts())
		require.NoError(t, err)
		assert.False(t, outcome.AlreadySettled)
		assert.Equal(t, 2, outcome.Credited)
		assert.Equal(t, 0, outcome.Duplicates)
		assert.True(t, outcome.TotalPaid.Equal(decimal.RequireFromString("374")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips payouts already in the ledger", func(t *testing.T) {
		ledger, mock := newMockLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockContestSQL).
			WithArgs("c-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("settling"))
		mock.ExpectQuery(insertWinningsSQL).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}))
		mock.ExpectQuery(insertWinningsSQL).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow("tx-2"))
		mock.ExpectExec(creditWalletSQL).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(markSettledSQL).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		outcome, err := ledger.Settle(context.Background(), "c-1", samplePayouts())
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Credited)
		assert.Equal(t, 1, outcome.Duplicates)
		assert.True(t, outcome.TotalPaid.Equal(decimal.RequireFromString("110")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already settled changes nothing", func(t *testing.T) {
		ledger, mock := newMockLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockContestSQL).
			WithArgs("c-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("settled"))
		mock.ExpectRollback()

		outcome, err := ledger.Settle(context.Background(), "c-1", samplePayouts())
		require.NoError(t, err)
		assert.True(t, outcome.AlreadySettled)
		assert.Equal(t, 0, outcome.Credited)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects contest that is not settling", func(t *testing.T) {
		ledger, mock := newMockLedger(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockContestSQL).
			WithArgs("c-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("live"))
		mock.ExpectRollback()

		_, err := ledger.Settle(context.Background(), "c-1", samplePayouts())
		assert.ErrorIs(t, err, settlement.ErrNotSettling)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("credit failure rolls back", func(t *testing.T) {
		ledger, mock := newMockLedger(t)
		boom := errors.New("connection reset")

		mock.ExpectBegin()
		mock.ExpectQuery(lockContestSQL).
			WithArgs("c-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("settling"))
		mock.ExpectQuery(insertWinningsSQL).
			WillReturnRows(sqlmock.NewRows([]string{"public_id"}).AddRow("tx-1"))
		mock.ExpectExec(creditWalletSQL).
			WillReturnError(boom)
		mock.ExpectRollback()

		_, err := ledger.Settle(context.Background(), "c-1", samplePayouts())
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
