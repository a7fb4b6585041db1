package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventScore       EventType = "score"
	EventPoints      EventType = "points"
	EventLeaderboard EventType = "leaderboard"
	EventSettled     EventType = "settled"
)

// Event is the realtime envelope. Delivery is best-effort and at most once.
type Event struct {
	Type      EventType `json:"type"`
	Topic     string    `json:"topic"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster must never block the caller; implementations drop events they cannot deliver.
type Broadcaster interface {
	Publish(ctx context.Context, event Event)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(context.Context, Event) {}

func NewNoopBroadcaster() Broadcaster {
	return noopBroadcaster{}
}

func MatchTopic(matchID string) string {
	return "match:" + matchID
}

func ContestTopic(contestID string) string {
	return "contest:" + contestID
}

type PlayerScore struct {
	PlayerID      string          `json:"playerId"`
	Runs          int             `json:"runs"`
	BallsFaced    int             `json:"ballsFaced"`
	Fours         int             `json:"fours"`
	Sixes         int             `json:"sixes"`
	Wickets       int             `json:"wickets"`
	OversBowled   decimal.Decimal `json:"oversBowled"`
	RunsConceded  int             `json:"runsConceded"`
	Maidens       int             `json:"maidens"`
	Catches       int             `json:"catches"`
	Stumpings     int             `json:"stumpings"`
	RunOuts       int             `json:"runOuts"`
	FantasyPoints decimal.Decimal `json:"fantasyPoints"`
}

type TeamPoints struct {
	TeamID      string          `json:"teamId"`
	UserID      string          `json:"userId"`
	TotalPoints decimal.Decimal `json:"totalPoints"`
}

type SettledNotice struct {
	ContestID   string             `json:"contestId"`
	WinnersPaid int                `json:"winnersPaid"`
	TotalPaid   decimal.Decimal    `json:"totalPaid"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
