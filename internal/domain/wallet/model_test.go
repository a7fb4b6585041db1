package wallet

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestReconcile(t *testing.T) {
	t.Parallel()

	txs := []Transaction{
		{UserID: "u-1", Type: TransactionDeposit, Amount: decimal.NewFromInt(50)},
		{UserID: "u-1", Type: TransactionWinnings, Amount: decimal.RequireFromString("176.00"), ContestID: "c-1", Rank: 1},
		{UserID: "u-1", Type: TransactionWithdrawal, Amount: decimal.NewFromInt(-20)},
		{UserID: "u-2", Type: TransactionWinnings, Amount: decimal.NewFromInt(999)},
	}

	ok := Wallet{UserID: "u-1", CashBalance: decimal.NewFromInt(206), TotalWinnings: decimal.NewFromInt(176)}
	if err := Reconcile(ok, txs); err != nil {
		t.Fatalf("unexpected reconcile error: %v", err)
	}

	drifted := ok
	drifted.CashBalance = decimal.NewFromInt(382)
	if err := Reconcile(drifted, txs); !errors.Is(err, ErrBalanceMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}
