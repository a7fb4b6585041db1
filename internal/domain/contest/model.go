package contest

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusLive     Status = "live"
	StatusSettling Status = "settling"
	StatusSettled  Status = "settled"
)

// PrizeSlot pays Amount to the team finishing at payout position Rank.
type PrizeSlot struct {
	Rank   int
	Amount decimal.Decimal
}

// Contest is one prize pool on one match. PrizeTable is fixed at creation.
type Contest struct {
	ID         string
	MatchID    string
	Name       string
	EntryFee   decimal.Decimal
	MaxEntries int
	Rake       decimal.Decimal
	RulesID    string
	PrizeTable []PrizeSlot
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SettledAt  *time.Time
}

// AcceptsEntries reports whether team submissions are still allowed.
func (c Contest) AcceptsEntries() bool {
	return c.Status == StatusOpen
}
