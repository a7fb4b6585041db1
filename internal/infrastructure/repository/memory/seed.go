package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/shopspring/decimal"
)

const (
	MatchIDIndAus       = "t20-ind-aus-2026-01"
	ContestIDIndAusH2H  = "ind-aus-h2h-01"
	ContestIDIndAusMega = "ind-aus-mega-01"
)

func SeedMatches(now time.Time) []match.Match {
	players := make([]string, 0, 22)
	for i := 1; i <= 11; i++ {
		players = append(players, fmt.Sprintf("ind-%02d", i), fmt.Sprintf("aus-%02d", i))
	}
	return []match.Match{
		{
			ID:          MatchIDIndAus,
			HomeSide:    "India",
			AwaySide:    "Australia",
			Format:      match.FormatT20,
			ScheduledAt: now.Add(24 * time.Hour).Truncate(time.Hour),
			Status:      match.StatusUpcoming,
			PlayerIDs:   players,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func SeedContests(now time.Time) []contest.Contest {
	h2h, _ := contest.BuildPrizeTable(decimal.NewFromInt(100), 2, decimal.RequireFromString("0.12"))
	mega, _ := contest.BuildPrizeTable(decimal.NewFromInt(49), 100, decimal.RequireFromString("0.15"))
	return []contest.Contest{
		{
			ID: ContestIDIndAusH2H, MatchID: MatchIDIndAus, Name: "Head to Head",
			EntryFee: decimal.NewFromInt(100), MaxEntries: 2, Rake: decimal.RequireFromString("0.12"),
			PrizeTable: h2h, Status: contest.StatusOpen, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: ContestIDIndAusMega, MatchID: MatchIDIndAus, Name: "Mega Contest",
			EntryFee: decimal.NewFromInt(49), MaxEntries: 100, Rake: decimal.RequireFromString("0.15"),
			PrizeTable: mega, Status: contest.StatusOpen, CreatedAt: now, UpdatedAt: now,
		},
	}
}

// Seed loads demo fixtures used when the API runs with the memory driver.
func (s *Store) Seed(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range SeedMatches(now) {
		s.matches[m.ID] = cloneMatch(m)
	}
	for _, c := range SeedContests(now) {
		s.contests[c.ID] = cloneContest(c)
	}
}
