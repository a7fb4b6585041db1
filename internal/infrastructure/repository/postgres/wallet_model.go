package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type walletTableModel struct {
	UserID        string          `db:"user_id"`
	CashBalance   decimal.Decimal `db:"cash_balance"`
	TotalWinnings decimal.Decimal `db:"total_winnings"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type walletCreditModel struct {
	UserID        string          `db:"user_id"`
	CashBalance   decimal.Decimal `db:"cash_balance"`
	TotalWinnings decimal.Decimal `db:"total_winnings"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type walletTransactionTableModel struct {
	ID        int64               `db:"id"`
	PublicID  string              `db:"public_id"`
	UserID    string              `db:"user_id"`
	Type      string              `db:"type"`
	Amount    decimal.Decimal     `db:"amount"`
	ContestID sql.NullString      `db:"contest_public_id"`
	Position  sql.NullInt64       `db:"position"`
	Rank      sql.NullInt64       `db:"rank"`
	Points    decimal.NullDecimal `db:"points"`
	CreatedAt time.Time           `db:"created_at"`
}

type walletTransactionInsertModel struct {
	PublicID  string          `db:"public_id"`
	UserID    string          `db:"user_id"`
	Type      string          `db:"type"`
	Amount    decimal.Decimal `db:"amount"`
	ContestID string          `db:"contest_public_id"`
	Position  int             `db:"position"`
	Rank      int             `db:"rank"`
	Points    decimal.Decimal `db:"points"`
	CreatedAt time.Time       `db:"created_at"`
}
