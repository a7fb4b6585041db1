package fantasyteam

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team is one user's entry in one contest. TotalPoints and Rank are derived
// from player stats and can always be recomputed.
type Team struct {
	ID            string
	ContestID     string
	UserID        string
	DisplayName   string
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
	TotalPoints   decimal.Decimal
	Rank          int
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// ScoreUpdate carries a recomputed total for one team.
type ScoreUpdate struct {
	TeamID      string
	TotalPoints decimal.Decimal
}

// RankUpdate carries a recomputed rank for one team.
type RankUpdate struct {
	TeamID string
	Rank   int
}
