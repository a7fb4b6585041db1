package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []Event
}

func (b *recordingBroadcaster) Publish(_ context.Context, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) byType(t EventType) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, 0)
	for _, e := range b.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	store       *memory.Store
	matches     *memory.MatchRepository
	stats       *memory.PlayerStatsRepository
	contests    *memory.ContestRepository
	teams       *memory.FantasyTeamRepository
	wallets     *memory.WalletRepository
	dispatches  *memory.JobDispatchRepository
	broadcaster *recordingBroadcaster

	rules       *RulesResolver
	leaderboard *LeaderboardService
	ingestion   *IngestionService
	settlement  *SettlementService
	dispatcher  *SettlementDispatcher
	lifecycle   *MatchLifecycleService
	contestSvc  *ContestService
	walletSvc   *WalletService
}

var fixedNow = time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	env := &testEnv{
		store:       store,
		matches:     memory.NewMatchRepository(store),
		stats:       memory.NewPlayerStatsRepository(store),
		contests:    memory.NewContestRepository(store),
		teams:       memory.NewFantasyTeamRepository(store),
		wallets:     memory.NewWalletRepository(store),
		dispatches:  memory.NewJobDispatchRepository(store),
		broadcaster: &recordingBroadcaster{},
	}

	logger := logging.NewNop()
	locker := NewLocalLocker()
	env.rules = NewRulesResolver(memory.NewScoringRepository(store), "")
	env.leaderboard = NewLeaderboardService(env.contests, env.teams, cache.NewStore(time.Minute), logger)
	aggregator := NewAggregator(env.teams, logger)
	env.ingestion = NewIngestionService(env.matches, env.stats, env.contests, env.rules, aggregator, env.leaderboard, locker, env.broadcaster, IngestionConfig{}, logger)
	env.ingestion.now = func() time.Time { return fixedNow }
	env.settlement = NewSettlementService(env.matches, env.contests, memory.NewSettlementLedger(store), env.leaderboard, locker, env.broadcaster, &id.SequenceGenerator{Prefix: "tx"}, SettlementConfig{Workers: 2}, logger)
	env.dispatcher = NewSettlementDispatcher(env.settlement, nil, env.dispatches, SettlementDispatcherConfig{Mode: SettlementModeInline}, logger)
	env.lifecycle = NewMatchLifecycleService(env.matches, env.contests, env.dispatcher, locker, logger)
	env.contestSvc = NewContestService(env.matches, env.contests, env.teams, env.rules, env.leaderboard, locker, &id.SequenceGenerator{Prefix: "id"}, ContestConfig{DefaultRake: decimal.RequireFromString("0.12")}, logger)
	env.contestSvc.now = func() time.Time { return fixedNow }
	env.walletSvc = NewWalletService(env.wallets, logger)
	return env
}

func playerIDs(prefix string, n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func (e *testEnv) addMatch(t *testing.T, matchID string, status match.Status) {
	t.Helper()
	pool := append(playerIDs("a", 11), playerIDs("b", 11)...)
	if err := e.matches.Upsert(context.Background(), match.Match{
		ID: matchID, HomeSide: "A", AwaySide: "B", Format: match.FormatT20, Status: status, PlayerIDs: pool,
	}); err != nil {
		t.Fatalf("seed match: %v", err)
	}
}

func (e *testEnv) addContest(t *testing.T, c contest.Contest) {
	t.Helper()
	if err := e.contests.Create(context.Background(), c); err != nil {
		t.Fatalf("seed contest: %v", err)
	}
}

func (e *testEnv) addTeam(t *testing.T, team fantasyteam.Team) {
	t.Helper()
	if team.TotalPoints.IsZero() {
		team.TotalPoints = decimal.Zero
	}
	if err := e.teams.Create(context.Background(), team); err != nil {
		t.Fatalf("seed team: %v", err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func scoringRules(rulesID, runPoints string) scoring.Rules {
	return scoring.Rules{
		ID:        rulesID,
		Name:      rulesID,
		Version:   1,
		RunPoints: decimal.NewNullDecimal(dec(runPoints)),
	}
}
