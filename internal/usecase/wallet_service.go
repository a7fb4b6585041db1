package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type WalletView struct {
	Wallet       wallet.Wallet
	Transactions []wallet.Transaction
	// BalanceMismatch is set when the stored balance or winnings disagree with the ledger sums.
	BalanceMismatch bool
}

type WalletService struct {
	repo   wallet.Repository
	logger *logging.Logger
}

func NewWalletService(repo wallet.Repository, logger *logging.Logger) *WalletService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WalletService{repo: repo, logger: logger}
}

// GetWallet returns a zero wallet for users that never received a credit.
// Drift between the wallet row and its ledger is flagged and logged, not repaired.
func (s *WalletService) GetWallet(ctx context.Context, userID string) (WalletView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.GetWallet")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return WalletView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return WalletView{}, fmt.Errorf("get wallet user=%s: %w", userID, err)
	}
	if !exists {
		item = wallet.Wallet{UserID: userID, CashBalance: decimal.Zero, TotalWinnings: decimal.Zero}
	}

	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return WalletView{}, fmt.Errorf("list transactions user=%s: %w", userID, err)
	}

	view := WalletView{Wallet: item, Transactions: txs}
	if err := wallet.Reconcile(item, txs); err != nil {
		view.BalanceMismatch = true
		s.logger.WarnContext(ctx, "wallet does not reconcile with ledger",
			"user_id", userID,
			"transactions", len(txs),
			"error", err,
		)
	}
	return view, nil
}
