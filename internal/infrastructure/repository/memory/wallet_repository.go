package memory

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
)

type WalletRepository struct {
	store *Store
}

func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

func (r *WalletRepository) GetWallet(_ context.Context, userID string) (wallet.Wallet, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.wallets[userID]
	return item, ok, nil
}

func (r *WalletRepository) ListTransactions(_ context.Context, userID string) ([]wallet.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]wallet.Transaction, 0)
	for _, tx := range r.store.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}
