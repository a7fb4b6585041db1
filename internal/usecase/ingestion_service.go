package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// ScoreBatch is one feed delivery for a match. Counters are cumulative-to-date.
// Correction allows counters to go backwards, e.g. after a scorer's amendment.
type ScoreBatch struct {
	MatchID    string
	Updates    []playerstats.Update
	Correction bool
}

type IngestResult struct {
	MatchID         string `json:"matchId"`
	PlayersUpdated  int    `json:"playersUpdated"`
	ContestsUpdated int    `json:"contestsUpdated"`
}

type IngestionConfig struct {
	ContestWorkers int
}

type IngestionService struct {
	matchRepo   match.Repository
	statsRepo   playerstats.Repository
	contestRepo contest.Repository
	rules       *RulesResolver
	aggregator  *Aggregator
	leaderboard *LeaderboardService
	locker      Locker
	broadcaster Broadcaster
	cfg         IngestionConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewIngestionService(
	matchRepo match.Repository,
	statsRepo playerstats.Repository,
	contestRepo contest.Repository,
	rules *RulesResolver,
	aggregator *Aggregator,
	leaderboard *LeaderboardService,
	locker Locker,
	broadcaster Broadcaster,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if broadcaster == nil {
		broadcaster = NewNoopBroadcaster()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ContestWorkers <= 0 {
		cfg.ContestWorkers = 4
	}

	return &IngestionService{
		matchRepo:   matchRepo,
		statsRepo:   statsRepo,
		contestRepo: contestRepo,
		rules:       rules,
		aggregator:  aggregator,
		leaderboard: leaderboard,
		locker:      locker,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// IngestScores validates the whole batch before writing anything, then under
// the match lock persists stats, re-aggregates and re-ranks every live contest
// and finally broadcasts. A returned error means the batch should be redelivered.
func (s *IngestionService) IngestScores(ctx context.Context, batch ScoreBatch) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestScores")
	defer span.End()

	batch.MatchID = strings.TrimSpace(batch.MatchID)
	if batch.MatchID == "" {
		return IngestResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if len(batch.Updates) == 0 {
		return IngestResult{}, fmt.Errorf("%w: score updates are required", ErrInvalidInput)
	}

	unlock, err := s.locker.Lock(ctx, matchLockKey(batch.MatchID))
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: lock match=%s: %w", ErrDependencyUnavailable, batch.MatchID, err)
	}
	defer unlock()

	item, exists, err := s.matchRepo.GetByID(ctx, batch.MatchID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("get match=%s: %w", batch.MatchID, err)
	}
	if !exists {
		return IngestResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, batch.MatchID)
	}
	if item.Status != match.StatusLive {
		return IngestResult{}, fmt.Errorf("%w: match=%s status=%s is not live", ErrConflict, item.ID, item.Status)
	}

	existing, err := s.statsRepo.ListByMatch(ctx, item.ID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("list player stats match=%s: %w", item.ID, err)
	}
	current := make(map[string]playerstats.MatchStat, len(existing))
	for _, stat := range existing {
		current[stat.PlayerID] = stat
	}

	if err := validateBatch(item, batch, current); err != nil {
		return IngestResult{}, err
	}

	defaultRules, defaultRulesID, err := s.rules.Resolve(ctx, "")
	if err != nil {
		return IngestResult{}, err
	}

	now := s.now().UTC()
	written := make([]playerstats.MatchStat, 0, len(batch.Updates))
	for _, update := range batch.Updates {
		stat := playerstats.MatchStat{
			MatchID:   item.ID,
			PlayerID:  strings.TrimSpace(update.PlayerID),
			Counters:  update.Counters,
			RulesID:   defaultRulesID,
			UpdatedAt: now,
		}
		stat.FantasyPoints = PointsFromStats([]playerstats.MatchStat{stat}, defaultRules)[stat.PlayerID]
		written = append(written, stat)
		current[stat.PlayerID] = stat
	}

	if err := s.statsRepo.UpsertBatch(ctx, written); err != nil {
		return IngestResult{}, fmt.Errorf("upsert player stats match=%s: %w", item.ID, err)
	}

	allStats := make([]playerstats.MatchStat, 0, len(current))
	for _, stat := range current {
		allStats = append(allStats, stat)
	}

	contests, err := s.contestRepo.ListByMatch(ctx, item.ID, contest.StatusLive)
	if err != nil {
		return IngestResult{}, fmt.Errorf("list live contests match=%s: %w", item.ID, err)
	}

	updates, err := s.refreshContests(ctx, contests, allStats)
	if err != nil {
		return IngestResult{}, err
	}

	s.publishScores(ctx, item.ID, written, now)
	for _, update := range updates {
		s.broadcaster.Publish(ctx, Event{Type: EventPoints, Topic: ContestTopic(update.contestID), Data: update.points, Timestamp: now})
		s.broadcaster.Publish(ctx, Event{Type: EventLeaderboard, Topic: ContestTopic(update.contestID), Data: update.leaderboard, Timestamp: now})
	}

	s.logger.InfoContext(ctx, "score batch ingested",
		"match_id", item.ID,
		"players", len(written),
		"contests", len(contests),
		"correction", batch.Correction,
	)

	return IngestResult{
		MatchID:         item.ID,
		PlayersUpdated:  len(written),
		ContestsUpdated: len(updates),
	}, nil
}

type contestRefresh struct {
	contestID   string
	points      []TeamPoints
	leaderboard []LeaderboardEntry
}

// refreshContests aggregates and ranks each contest in parallel. Contests are
// independent so the match lock held by the caller is enough.
func (s *IngestionService) refreshContests(ctx context.Context, contests []contest.Contest, stats []playerstats.MatchStat) ([]contestRefresh, error) {
	if len(contests) == 0 {
		return nil, nil
	}

	var (
		mu  sync.Mutex
		out = make([]contestRefresh, 0, len(contests))
	)

	p := pool.New().WithMaxGoroutines(s.cfg.ContestWorkers).WithContext(ctx)
	for _, item := range contests {
		item := item
		p.Go(func(ctx context.Context) error {
			rules, _, err := s.rules.Resolve(ctx, item.RulesID)
			if err != nil {
				return fmt.Errorf("resolve rules contest=%s: %w", item.ID, err)
			}

			points, err := s.aggregator.AggregateContest(ctx, item.ID, PointsFromStats(stats, rules), rules)
			if err != nil {
				return err
			}

			ranked, err := s.leaderboard.RankContest(ctx, item.ID)
			if err != nil {
				return err
			}

			mu.Lock()
			out = append(out, contestRefresh{
				contestID:   item.ID,
				points:      points,
				leaderboard: toLeaderboardEntries(ranked),
			})
			mu.Unlock()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("refresh contests: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].contestID < out[j].contestID })
	return out, nil
}

func (s *IngestionService) publishScores(ctx context.Context, matchID string, stats []playerstats.MatchStat, at time.Time) {
	scores := make([]PlayerScore, 0, len(stats))
	for _, stat := range stats {
		c := stat.Counters
		scores = append(scores, PlayerScore{
			PlayerID:      stat.PlayerID,
			Runs:          c.Runs,
			BallsFaced:    c.BallsFaced,
			Fours:         c.Fours,
			Sixes:         c.Sixes,
			Wickets:       c.Wickets,
			OversBowled:   c.OversBowled,
			RunsConceded:  c.RunsConceded,
			Maidens:       c.Maidens,
			Catches:       c.Catches,
			Stumpings:     c.Stumpings,
			RunOuts:       c.RunOuts,
			FantasyPoints: stat.FantasyPoints,
		})
	}
	s.broadcaster.Publish(ctx, Event{Type: EventScore, Topic: MatchTopic(matchID), Data: scores, Timestamp: at})
}

func validateBatch(item match.Match, batch ScoreBatch, current map[string]playerstats.MatchStat) error {
	seen := make(map[string]struct{}, len(batch.Updates))
	maxOvers := item.Format.MaxOvers()

	for _, update := range batch.Updates {
		playerID := strings.TrimSpace(update.PlayerID)
		if playerID == "" {
			return fmt.Errorf("%w: player id is required", ErrInvalidInput)
		}
		if _, dup := seen[playerID]; dup {
			return fmt.Errorf("%w: %w: %s", ErrInvalidInput, playerstats.ErrDuplicatePlayer, playerID)
		}
		seen[playerID] = struct{}{}

		if !item.HasPlayer(playerID) {
			return fmt.Errorf("%w: %w: %s", ErrInvalidInput, playerstats.ErrUnknownPlayer, playerID)
		}
		if err := update.Counters.Validate(maxOvers); err != nil {
			return fmt.Errorf("%w: player=%s: %w", ErrInvalidInput, playerID, err)
		}
		if prev, ok := current[playerID]; ok && !batch.Correction {
			if err := update.Counters.ValidateProgression(prev.Counters); err != nil {
				return fmt.Errorf("%w: player=%s: %w", ErrInvalidInput, playerID, err)
			}
		}
	}
	return nil
}
