package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetWallet(ctx context.Context, userID string) (wallet.Wallet, bool, error) {
	query, args, err := qb.Select(qb.Columns(walletTableModel{})...).From("wallets").
		Where(qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("build select wallet query: %w", err)
	}

	var row walletTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Wallet{}, false, nil
		}
		return wallet.Wallet{}, false, fmt.Errorf("get wallet user=%s: %w", userID, err)
	}

	return wallet.Wallet{
		UserID:        row.UserID,
		CashBalance:   row.CashBalance,
		TotalWinnings: row.TotalWinnings,
		UpdatedAt:     row.UpdatedAt,
	}, true, nil
}

func (r *WalletRepository) ListTransactions(ctx context.Context, userID string) ([]wallet.Transaction, error) {
	query, args, err := qb.Select("*").From("wallet_transactions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select wallet transactions query: %w", err)
	}

	var rows []walletTransactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select wallet transactions user=%s: %w", userID, err)
	}

	out := make([]wallet.Transaction, 0, len(rows))
	for _, row := range rows {
		points := decimal.Zero
		if row.Points.Valid {
			points = row.Points.Decimal
		}
		out = append(out, wallet.Transaction{
			ID:        row.PublicID,
			UserID:    row.UserID,
			Type:      wallet.TransactionType(row.Type),
			Amount:    row.Amount,
			ContestID: nullStringToString(row.ContestID),
			Position:  int(row.Position.Int64),
			Rank:      int(row.Rank.Int64),
			Points:    points,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
