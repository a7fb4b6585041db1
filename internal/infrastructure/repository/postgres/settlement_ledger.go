package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
	"github.com/shopspring/decimal"
)

// SettlementLedger settles a contest in one transaction. The contest row lock
// serializes settlers across processes and the unique (contest, user, rank)
// index on wallet_transactions turns a replayed payout into a no-op.
type SettlementLedger struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSettlementLedger(db *sqlx.DB) *SettlementLedger {
	return &SettlementLedger{db: db, now: time.Now}
}

func (l *SettlementLedger) Settle(ctx context.Context, contestID string, payouts []settlement.Payout) (settlement.Outcome, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return settlement.Outcome{}, fmt.Errorf("begin tx settle contest=%s: %w", contestID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("status").From("contests").
		Where(
			qb.Eq("public_id", contestID),
			qb.IsNull("deleted_at"),
		).
		ForUpdate().
		ToSQL()
	if err != nil {
		return settlement.Outcome{}, fmt.Errorf("build lock contest query: %w", err)
	}

	var status string
	if err := tx.GetContext(ctx, &status, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return settlement.Outcome{}, fmt.Errorf("contest=%s not found", contestID)
		}
		return settlement.Outcome{}, fmt.Errorf("lock contest=%s: %w", contestID, err)
	}

	switch contest.Status(status) {
	case contest.StatusSettled:
		return settlement.Outcome{AlreadySettled: true}, nil
	case contest.StatusSettling:
	default:
		return settlement.Outcome{}, fmt.Errorf("%w: contest=%s status=%s", settlement.ErrNotSettling, contestID, status)
	}

	now := l.now().UTC()
	outcome := settlement.Outcome{TotalPaid: decimal.Zero}
	for _, p := range payouts {
		inserted, err := insertWinnings(ctx, tx, contestID, p, now)
		if err != nil {
			return settlement.Outcome{}, err
		}
		if !inserted {
			outcome.Duplicates++
			continue
		}
		if err := creditWallet(ctx, tx, p.UserID, p.Amount, now); err != nil {
			return settlement.Outcome{}, err
		}
		outcome.Credited++
		outcome.TotalPaid = outcome.TotalPaid.Add(p.Amount)
	}

	query, args, err := qb.Update("contests").
		Set("status", string(contest.StatusSettled)).
		Set("settled_at", now).
		Set("updated_at", now).
		Where(
			qb.Eq("public_id", contestID),
			qb.Eq("status", string(contest.StatusSettling)),
		).
		ToSQL()
	if err != nil {
		return settlement.Outcome{}, fmt.Errorf("build mark contest settled query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return settlement.Outcome{}, fmt.Errorf("mark contest=%s settled: %w", contestID, err)
	}

	if err := tx.Commit(); err != nil {
		return settlement.Outcome{}, fmt.Errorf("commit settle contest=%s tx: %w", contestID, err)
	}
	return outcome, nil
}

func insertWinnings(ctx context.Context, tx *sqlx.Tx, contestID string, p settlement.Payout, now time.Time) (bool, error) {
	model := walletTransactionInsertModel{
		PublicID:  p.TransactionID,
		UserID:    p.UserID,
		Type:      string(wallet.TransactionWinnings),
		Amount:    p.Amount,
		ContestID: contestID,
		Position:  p.Position,
		Rank:      p.Rank,
		Points:    p.Points,
		CreatedAt: now,
	}
	query, args, err := qb.InsertModel("wallet_transactions", model, `ON CONFLICT (contest_public_id, user_id, position) WHERE type = 'winnings'
DO NOTHING
RETURNING public_id`)
	if err != nil {
		return false, fmt.Errorf("build insert winnings query: %w", err)
	}

	var insertedID string
	if err := tx.GetContext(ctx, &insertedID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert winnings contest=%s user=%s position=%d: %w", contestID, p.UserID, p.Position, err)
	}
	return true, nil
}

func creditWallet(ctx context.Context, tx *sqlx.Tx, userID string, amount decimal.Decimal, now time.Time) error {
	model := walletCreditModel{
		UserID:        userID,
		CashBalance:   amount,
		TotalWinnings: amount,
		UpdatedAt:     now,
	}
	query, args, err := qb.InsertModel("wallets", model, `ON CONFLICT (user_id)
DO UPDATE SET
    cash_balance = wallets.cash_balance + EXCLUDED.cash_balance,
    total_winnings = wallets.total_winnings + EXCLUDED.total_winnings,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build credit wallet query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("credit wallet user=%s: %w", userID, err)
	}
	return nil
}
