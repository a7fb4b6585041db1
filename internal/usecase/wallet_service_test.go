package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

func TestGetWallet_ZeroForNewUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	view, err := env.walletSvc.GetWallet(context.Background(), "u-new")
	if err != nil {
		t.Fatalf("GetWallet returned error: %v", err)
	}
	if view.Wallet.UserID != "u-new" || !view.Wallet.CashBalance.IsZero() || len(view.Transactions) != 0 {
		t.Fatalf("unexpected wallet: %+v", view)
	}

	if _, err := env.walletSvc.GetWallet(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetWallet_ReconcilesAfterSettlement(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-1", match.StatusCompleted)
	addSettlingContest(t, env, "c-1", "100", 2)
	addSettlingContest(t, env, "c-2", "20", 2)
	for _, contestID := range []string{"c-1", "c-2"} {
		env.addTeam(t, fantasyteam.Team{ID: contestID + "-t", ContestID: contestID, UserID: "u-1", TotalPoints: dec("10"), SubmittedAt: fixedNow})
	}
	ctx := context.Background()

	if _, err := env.settlement.SettleMatch(ctx, "m-1"); err != nil {
		t.Fatalf("SettleMatch returned error: %v", err)
	}

	view, err := env.walletSvc.GetWallet(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetWallet returned error: %v", err)
	}
	if !view.Wallet.CashBalance.Equal(dec("211.2")) || len(view.Transactions) != 2 {
		t.Fatalf("unexpected wallet: balance=%s txs=%d", view.Wallet.CashBalance, len(view.Transactions))
	}
	if view.BalanceMismatch {
		t.Fatal("settled wallet flagged as drifted")
	}
	if err := wallet.Reconcile(view.Wallet, view.Transactions); err != nil {
		t.Fatalf("wallet does not reconcile: %v", err)
	}
}

type driftedWalletRepository struct {
	item wallet.Wallet
	txs  []wallet.Transaction
}

func (r driftedWalletRepository) GetWallet(context.Context, string) (wallet.Wallet, bool, error) {
	return r.item, true, nil
}

func (r driftedWalletRepository) ListTransactions(context.Context, string) ([]wallet.Transaction, error) {
	return r.txs, nil
}

func TestGetWallet_FlagsLedgerDrift(t *testing.T) {
	t.Parallel()

	repo := driftedWalletRepository{
		item: wallet.Wallet{UserID: "u-1", CashBalance: dec("500"), TotalWinnings: dec("176")},
		txs: []wallet.Transaction{
			{ID: "tx-1", UserID: "u-1", Type: wallet.TransactionWinnings, Amount: dec("176"), ContestID: "c-1", Rank: 1},
		},
	}
	svc := NewWalletService(repo, logging.NewNop())

	view, err := svc.GetWallet(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetWallet returned error: %v", err)
	}
	if !view.BalanceMismatch {
		t.Fatalf("expected balance mismatch for balance=%s ledger=176", view.Wallet.CashBalance)
	}
	if !view.Wallet.CashBalance.Equal(dec("500")) || len(view.Transactions) != 1 {
		t.Fatalf("stored wallet should be returned unchanged: %+v", view)
	}

	repo.item.CashBalance = dec("176")
	view, err = NewWalletService(repo, logging.NewNop()).GetWallet(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetWallet returned error: %v", err)
	}
	if view.BalanceMismatch {
		t.Fatal("expected reconciled wallet to carry no mismatch")
	}
}
