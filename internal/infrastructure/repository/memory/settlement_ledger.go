package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// SettlementLedger applies payouts under the store's write lock, which gives
// the same all-or-nothing behaviour as the postgres transaction.
type SettlementLedger struct {
	store *Store
}

func NewSettlementLedger(store *Store) *SettlementLedger {
	return &SettlementLedger{store: store}
}

func (l *SettlementLedger) Settle(_ context.Context, contestID string, payouts []settlement.Payout) (settlement.Outcome, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	item, ok := l.store.contests[contestID]
	if !ok {
		return settlement.Outcome{}, fmt.Errorf("contest %s not found", contestID)
	}
	switch item.Status {
	case contest.StatusSettled:
		return settlement.Outcome{AlreadySettled: true}, nil
	case contest.StatusSettling:
	default:
		return settlement.Outcome{}, fmt.Errorf("%w: status=%s", settlement.ErrNotSettling, item.Status)
	}

	now := l.store.now().UTC()
	outcome := settlement.Outcome{TotalPaid: decimal.Zero}
	for _, p := range payouts {
		key := payoutKey{contestID: contestID, userID: p.UserID, position: p.Position}
		if _, exists := l.store.txKeys[key]; exists {
			outcome.Duplicates++
			continue
		}

		w, ok := l.store.wallets[p.UserID]
		if !ok {
			w = wallet.Wallet{UserID: p.UserID, CashBalance: decimal.Zero, TotalWinnings: decimal.Zero}
		}
		w.CashBalance = w.CashBalance.Add(p.Amount)
		w.TotalWinnings = w.TotalWinnings.Add(p.Amount)
		w.UpdatedAt = now
		l.store.wallets[p.UserID] = w

		l.store.txs = append(l.store.txs, wallet.Transaction{
			ID:        p.TransactionID,
			UserID:    p.UserID,
			Type:      wallet.TransactionWinnings,
			Amount:    p.Amount,
			ContestID: contestID,
			Position:  p.Position,
			Rank:      p.Rank,
			Points:    p.Points,
			CreatedAt: now,
		})
		l.store.txKeys[key] = struct{}{}
		outcome.Credited++
		outcome.TotalPaid = outcome.TotalPaid.Add(p.Amount)
	}

	item.Status = contest.StatusSettled
	item.UpdatedAt = now
	item.SettledAt = &now
	l.store.contests[contestID] = item
	return outcome, nil
}
