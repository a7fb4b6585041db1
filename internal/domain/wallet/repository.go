package wallet

import "context"

// Repository is read-only; credits only happen through the settlement ledger.
type Repository interface {
	GetWallet(ctx context.Context, userID string) (Wallet, bool, error)
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
}
