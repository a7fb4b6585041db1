package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionWinnings   TransactionType = "winnings"
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

var ErrBalanceMismatch = errors.New("wallet balance does not match ledger")

type Wallet struct {
	UserID        string
	CashBalance   decimal.Decimal
	TotalWinnings decimal.Decimal
	UpdatedAt     time.Time
}

// Transaction is an append-only ledger row. Amount is signed: withdrawals are negative.
// Winnings rows carry the prize slot in Position and the leaderboard rank in Rank.
type Transaction struct {
	ID        string
	UserID    string
	Type      TransactionType
	Amount    decimal.Decimal
	ContestID string
	Position  int
	Rank      int
	Points    decimal.Decimal
	CreatedAt time.Time
}

// Reconcile checks that the wallet's balance and winnings equal the ledger sums.
func Reconcile(w Wallet, txs []Transaction) error {
	balance := decimal.Zero
	winnings := decimal.Zero
	for _, tx := range txs {
		if tx.UserID != w.UserID {
			continue
		}
		balance = balance.Add(tx.Amount)
		if tx.Type == TransactionWinnings {
			winnings = winnings.Add(tx.Amount)
		}
	}
	if !balance.Equal(w.CashBalance) {
		return fmt.Errorf("%w: user=%s balance=%s ledger=%s", ErrBalanceMismatch, w.UserID, w.CashBalance, balance)
	}
	if !winnings.Equal(w.TotalWinnings) {
		return fmt.Errorf("%w: user=%s winnings=%s ledger=%s", ErrBalanceMismatch, w.UserID, w.TotalWinnings, winnings)
	}
	return nil
}
