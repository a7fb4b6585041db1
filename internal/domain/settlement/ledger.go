package settlement

import "context"

// Ledger applies a contest's payouts and marks it settled as one atomic unit.
//
// Implementations must lock the contest row, return Outcome{AlreadySettled: true}
// without changes when it is already settled, fail with ErrNotSettling for any
// other non-settling status, skip payouts whose (contest, user, rank) row already
// exists, and only then move the status from settling to settled.
type Ledger interface {
	Settle(ctx context.Context, contestID string, payouts []Payout) (Outcome, error)
}
