package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/shopspring/decimal"
)

func seedLiveContest(t *testing.T, env *testEnv) {
	t.Helper()
	env.addMatch(t, "m-1", match.StatusLive)
	env.addContest(t, contest.Contest{ID: "c-1", MatchID: "m-1", Status: contest.StatusLive, MaxEntries: 10})
	env.addTeam(t, fantasyteam.Team{ID: "t-1", ContestID: "c-1", UserID: "u-1", PlayerIDs: playerIDs("a", 11), CaptainID: "a1", ViceCaptainID: "a2", SubmittedAt: fixedNow})
	env.addTeam(t, fantasyteam.Team{ID: "t-2", ContestID: "c-1", UserID: "u-2", PlayerIDs: playerIDs("b", 11), CaptainID: "b1", ViceCaptainID: "b2", SubmittedAt: fixedNow})
}

func TestIngestScores_UpdatesPointsAndLeaderboard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedLiveContest(t, env)

	result, err := env.ingestion.IngestScores(context.Background(), ScoreBatch{
		MatchID: "m-1",
		Updates: []playerstats.Update{
			{PlayerID: "a1", Counters: playerstats.Counters{Runs: 20, BallsFaced: 20, Catches: 1, OversBowled: decimal.Zero}},
			{PlayerID: "b1", Counters: playerstats.Counters{Runs: 10, BallsFaced: 12, OversBowled: decimal.Zero}},
		},
	})
	if err != nil {
		t.Fatalf("IngestScores returned error: %v", err)
	}
	if result.PlayersUpdated != 2 || result.ContestsUpdated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stats, _ := env.stats.ListByMatch(context.Background(), "m-1")
	if len(stats) != 2 {
		t.Fatalf("unexpected stats count: got=%d want=2", len(stats))
	}

	board, err := env.leaderboard.GetLeaderboard(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}
	// a1: 20 runs + 8 catch = 28, captain x2 = 56. b1: 10 runs, captain x2 = 20.
	if board[0].TeamID != "t-1" || !board[0].TotalPoints.Equal(dec("56")) {
		t.Fatalf("unexpected leader: %+v", board[0])
	}
	if board[1].TeamID != "t-2" || board[1].Rank != 2 || !board[1].TotalPoints.Equal(dec("20")) {
		t.Fatalf("unexpected runner-up: %+v", board[1])
	}

	if got := len(env.broadcaster.byType(EventScore)); got != 1 {
		t.Fatalf("unexpected score events: got=%d want=1", got)
	}
	if got := len(env.broadcaster.byType(EventPoints)); got != 1 {
		t.Fatalf("unexpected points events: got=%d want=1", got)
	}
	leaderboardEvents := env.broadcaster.byType(EventLeaderboard)
	if len(leaderboardEvents) != 1 || leaderboardEvents[0].Topic != ContestTopic("c-1") {
		t.Fatalf("unexpected leaderboard events: %+v", leaderboardEvents)
	}
}

func TestIngestScores_CumulativeBatchesRecompute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedLiveContest(t, env)
	ctx := context.Background()

	for _, runs := range []int{5, 12} {
		if _, err := env.ingestion.IngestScores(ctx, ScoreBatch{
			MatchID: "m-1",
			Updates: []playerstats.Update{{PlayerID: "a3", Counters: playerstats.Counters{Runs: runs, BallsFaced: runs, OversBowled: decimal.Zero}}},
		}); err != nil {
			t.Fatalf("IngestScores runs=%d returned error: %v", runs, err)
		}
	}

	teams, _ := env.teams.ListByContest(ctx, "c-1")
	for _, team := range teams {
		if team.ID == "t-1" && !team.TotalPoints.Equal(dec("12")) {
			t.Fatalf("unexpected total after second batch: got=%s want=12", team.TotalPoints)
		}
	}
}

func TestIngestScores_RejectsRegressionWithoutCorrection(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedLiveContest(t, env)
	ctx := context.Background()

	first := ScoreBatch{MatchID: "m-1", Updates: []playerstats.Update{{PlayerID: "a1", Counters: playerstats.Counters{Runs: 30, BallsFaced: 25, OversBowled: decimal.Zero}}}}
	if _, err := env.ingestion.IngestScores(ctx, first); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	lower := ScoreBatch{MatchID: "m-1", Updates: []playerstats.Update{{PlayerID: "a1", Counters: playerstats.Counters{Runs: 26, BallsFaced: 25, OversBowled: decimal.Zero}}}}
	_, err := env.ingestion.IngestScores(ctx, lower)
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, playerstats.ErrCounterRegression) {
		t.Fatalf("expected regression error, got %v", err)
	}

	lower.Correction = true
	if _, err := env.ingestion.IngestScores(ctx, lower); err != nil {
		t.Fatalf("correction batch: %v", err)
	}
	stats, _ := env.stats.ListByMatch(ctx, "m-1")
	if stats[0].Counters.Runs != 26 {
		t.Fatalf("unexpected runs after correction: got=%d want=26", stats[0].Counters.Runs)
	}
}

func TestIngestScores_InvalidBatchWritesNothing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seedLiveContest(t, env)
	ctx := context.Background()

	cases := map[string]ScoreBatch{
		"unknown player": {MatchID: "m-1", Updates: []playerstats.Update{
			{PlayerID: "a1", Counters: playerstats.Counters{Runs: 4, BallsFaced: 4}},
			{PlayerID: "z9", Counters: playerstats.Counters{Runs: 1, BallsFaced: 1}},
		}},
		"duplicate player": {MatchID: "m-1", Updates: []playerstats.Update{
			{PlayerID: "a1", Counters: playerstats.Counters{Runs: 4, BallsFaced: 4}},
			{PlayerID: "a1", Counters: playerstats.Counters{Runs: 5, BallsFaced: 5}},
		}},
		"overs past format": {MatchID: "m-1", Updates: []playerstats.Update{
			{PlayerID: "a1", Counters: playerstats.Counters{OversBowled: dec("4.6")}},
		}},
		"negative": {MatchID: "m-1", Updates: []playerstats.Update{
			{PlayerID: "a1", Counters: playerstats.Counters{Runs: -1}},
		}},
		"empty": {MatchID: "m-1"},
	}

	for name, batch := range cases {
		if _, err := env.ingestion.IngestScores(ctx, batch); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	stats, _ := env.stats.ListByMatch(ctx, "m-1")
	if len(stats) != 0 {
		t.Fatalf("expected no stats written, got %d", len(stats))
	}
	if got := len(env.broadcaster.byType(EventScore)); got != 0 {
		t.Fatalf("unexpected score events: got=%d want=0", got)
	}
}

func TestIngestScores_MatchState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-up", match.StatusUpcoming)
	ctx := context.Background()
	batch := func(id string) ScoreBatch {
		return ScoreBatch{MatchID: id, Updates: []playerstats.Update{{PlayerID: "a1", Counters: playerstats.Counters{Runs: 1, BallsFaced: 1}}}}
	}

	if _, err := env.ingestion.IngestScores(ctx, batch("m-up")); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for upcoming match, got %v", err)
	}
	if _, err := env.ingestion.IngestScores(ctx, batch("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing match, got %v", err)
	}
}

func TestIngestScores_ContestRulesOverride(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-1", match.StatusLive)
	ctx := context.Background()

	scoringRepo := env.rules.repo
	if err := scoringRepo.UpsertRules(ctx, scoringRules("double-runs", "2")); err != nil {
		t.Fatalf("seed rules: %v", err)
	}
	env.addContest(t, contest.Contest{ID: "c-std", MatchID: "m-1", Status: contest.StatusLive})
	env.addContest(t, contest.Contest{ID: "c-dbl", MatchID: "m-1", Status: contest.StatusLive, RulesID: "double-runs"})
	for _, contestID := range []string{"c-std", "c-dbl"} {
		env.addTeam(t, fantasyteam.Team{ID: "t-" + contestID, ContestID: contestID, UserID: "u-1", PlayerIDs: playerIDs("a", 11), CaptainID: "a2", ViceCaptainID: "a3"})
	}

	if _, err := env.ingestion.IngestScores(ctx, ScoreBatch{MatchID: "m-1", Updates: []playerstats.Update{
		{PlayerID: "a1", Counters: playerstats.Counters{Runs: 7, BallsFaced: 7}},
	}}); err != nil {
		t.Fatalf("IngestScores returned error: %v", err)
	}

	std, _ := env.teams.ListByContest(ctx, "c-std")
	dbl, _ := env.teams.ListByContest(ctx, "c-dbl")
	if !std[0].TotalPoints.Equal(dec("7")) || !dbl[0].TotalPoints.Equal(dec("14")) {
		t.Fatalf("unexpected totals: std=%s dbl=%s", std[0].TotalPoints, dbl[0].TotalPoints)
	}
}
