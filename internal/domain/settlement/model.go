package settlement

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotSettling is returned by a Ledger when the contest left or never reached settling.
var ErrNotSettling = errors.New("contest is not settling")

// Payout is one prize slot resolved to a team. Position is the prize slot and,
// together with contest and user, identifies the ledger row. Rank is the team's
// competition rank, which tied teams share.
type Payout struct {
	TransactionID string
	TeamID        string
	UserID        string
	Position      int
	Rank          int
	Amount        decimal.Decimal
	Points        decimal.Decimal
}

// Outcome reports what one ledger call applied.
type Outcome struct {
	AlreadySettled bool
	Credited       int
	Duplicates     int
	TotalPaid      decimal.Decimal
}
