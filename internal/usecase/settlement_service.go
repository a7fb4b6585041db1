package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type SkippedSlot struct {
	Rank   int             `json:"rank"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type SettleContestResult struct {
	ContestID      string          `json:"contestId"`
	AlreadySettled bool            `json:"alreadySettled"`
	WinnersPaid    int             `json:"winnersPaid"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	SkippedSlots   []SkippedSlot   `json:"skippedSlots,omitempty"`
}

type ContestFailure struct {
	ContestID string `json:"contestId"`
	Error     string `json:"error"`
}

type SettleMatchResult struct {
	MatchID         string           `json:"matchId"`
	ContestsSettled int              `json:"contestsSettled"`
	WinnersPaid     int              `json:"winnersPaid"`
	Failed          []ContestFailure `json:"failed,omitempty"`
}

type SettlementConfig struct {
	Workers int
}

type SettlementService struct {
	matchRepo   match.Repository
	contestRepo contest.Repository
	ledger      settlement.Ledger
	leaderboard *LeaderboardService
	locker      Locker
	broadcaster Broadcaster
	ids         id.Generator
	cfg         SettlementConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewSettlementService(
	matchRepo match.Repository,
	contestRepo contest.Repository,
	ledger settlement.Ledger,
	leaderboard *LeaderboardService,
	locker Locker,
	broadcaster Broadcaster,
	ids id.Generator,
	cfg SettlementConfig,
	logger *logging.Logger,
) *SettlementService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if broadcaster == nil {
		broadcaster = NewNoopBroadcaster()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SettlementService{
		matchRepo:   matchRepo,
		contestRepo: contestRepo,
		ledger:      ledger,
		leaderboard: leaderboard,
		locker:      locker,
		broadcaster: broadcaster,
		ids:         ids,
		cfg:         cfg,
		logger:      logger.Named("settlement"),
		now:         time.Now,
	}
}

// SettleContest fixes final ranks, pays every prize slot and marks the contest
// settled in one ledger call. An already-settled contest is reported, not
// treated as an error.
func (s *SettlementService) SettleContest(ctx context.Context, contestID string) (SettleContestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleContest")
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return SettleContestResult{}, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	unlock, err := s.locker.Lock(ctx, contestLockKey(contestID))
	if err != nil {
		return SettleContestResult{}, fmt.Errorf("%w: lock contest=%s: %w", ErrDependencyUnavailable, contestID, err)
	}
	defer unlock()

	item, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return SettleContestResult{}, fmt.Errorf("get contest=%s: %w", contestID, err)
	}
	if !exists {
		return SettleContestResult{}, fmt.Errorf("%w: contest=%s", ErrNotFound, contestID)
	}

	result := SettleContestResult{ContestID: item.ID, TotalPaid: decimal.Zero}
	switch item.Status {
	case contest.StatusSettled:
		result.AlreadySettled = true
		return result, nil
	case contest.StatusSettling:
	default:
		return SettleContestResult{}, fmt.Errorf("%w: contest=%s status=%s is not settling", ErrConflict, item.ID, item.Status)
	}

	ranked, err := s.leaderboard.RankContest(ctx, item.ID)
	if err != nil {
		return SettleContestResult{}, err
	}

	payouts, skipped := ResolvePayouts(item.PrizeTable, ranked)
	for _, slot := range skipped {
		s.logger.WarnContext(ctx, "prize slot skipped",
			"contest_id", item.ID,
			"rank", slot.Rank,
			"amount", slot.Amount,
			"reason", slot.Reason,
		)
	}
	for i := range payouts {
		txID, err := s.ids.NewID()
		if err != nil {
			return SettleContestResult{}, fmt.Errorf("generate transaction id: %w", err)
		}
		payouts[i].TransactionID = txID
	}

	outcome, err := s.ledger.Settle(ctx, item.ID, payouts)
	if err != nil {
		if errors.Is(err, settlement.ErrNotSettling) {
			return SettleContestResult{}, fmt.Errorf("%w: contest=%s: %w", ErrConflict, item.ID, err)
		}
		return SettleContestResult{}, fmt.Errorf("settle contest=%s: %w", item.ID, err)
	}
	if outcome.AlreadySettled {
		result.AlreadySettled = true
		return result, nil
	}

	result.WinnersPaid = outcome.Credited + outcome.Duplicates
	result.TotalPaid = contest.TotalPrize(payoutSlots(payouts))
	result.SkippedSlots = skipped

	s.logger.InfoContext(ctx, "contest settled",
		"contest_id", item.ID,
		"winners_paid", result.WinnersPaid,
		"credited", outcome.Credited,
		"duplicates", outcome.Duplicates,
		"total_paid", result.TotalPaid,
		"skipped_slots", len(skipped),
	)

	s.broadcaster.Publish(ctx, Event{
		Type:  EventSettled,
		Topic: ContestTopic(item.ID),
		Data: SettledNotice{
			ContestID:   item.ID,
			WinnersPaid: result.WinnersPaid,
			TotalPaid:   result.TotalPaid,
			Leaderboard: toLeaderboardEntries(ranked),
		},
		Timestamp: s.now().UTC(),
	})

	return result, nil
}

// SettleMatch settles every settling contest of the match on a worker pool.
// Failures are collected per contest; the returned error is non-nil when any
// contest failed so the job runner retries.
func (s *SettlementService) SettleMatch(ctx context.Context, matchID string) (SettleMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return SettleMatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	_, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return SettleMatchResult{}, fmt.Errorf("get match=%s: %w", matchID, err)
	}
	if !exists {
		return SettleMatchResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	contests, err := s.contestRepo.ListByMatch(ctx, matchID, contest.StatusSettling)
	if err != nil {
		return SettleMatchResult{}, fmt.Errorf("list settling contests match=%s: %w", matchID, err)
	}

	result := SettleMatchResult{MatchID: matchID}
	if len(contests) == 0 {
		return result, nil
	}

	workerCount := min(s.cfg.Workers, len(contests))
	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return SettleMatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		settledCount atomic.Int32
		winnerCount  atomic.Int32
		mu           sync.Mutex
		failures     []ContestFailure
		errs         []error
		workers      sync.WaitGroup
	)

	for _, item := range contests {
		item := item
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			res, err := s.SettleContest(ctx, item.ID)
			if err != nil {
				s.logger.ErrorContext(ctx, "contest settlement failed", "contest_id", item.ID, "error", err)
				mu.Lock()
				failures = append(failures, ContestFailure{ContestID: item.ID, Error: err.Error()})
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			if res.AlreadySettled {
				return
			}
			settledCount.Add(1)
			winnerCount.Add(int32(res.WinnersPaid))
		}); err != nil {
			workers.Done()
			return SettleMatchResult{}, fmt.Errorf("submit settlement to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].ContestID < failures[j].ContestID })
	result.ContestsSettled = int(settledCount.Load())
	result.WinnersPaid = int(winnerCount.Load())
	result.Failed = failures

	s.logger.InfoContext(ctx, "match settlement finished",
		"match_id", matchID,
		"contests_settled", result.ContestsSettled,
		"winners_paid", result.WinnersPaid,
		"failed", len(failures),
	)

	if len(errs) > 0 {
		return result, fmt.Errorf("settle match=%s: %w", matchID, errors.Join(errs...))
	}
	return result, nil
}

// ResolvePayouts maps prize slots onto the final leaderboard. ranked must be in
// leaderboard order; slot rank r pays the team at position r. Teams tied on
// points are already ordered by earlier submission, then team ID, so a shared
// competition rank never leaves a slot ambiguous.
func ResolvePayouts(table []contest.PrizeSlot, ranked []fantasyteam.Team) ([]settlement.Payout, []SkippedSlot) {
	payouts := make([]settlement.Payout, 0, len(table))
	var skipped []SkippedSlot

	for _, slot := range table {
		if !slot.Amount.IsPositive() {
			continue
		}
		if slot.Rank < 1 || slot.Rank > len(ranked) {
			skipped = append(skipped, SkippedSlot{Rank: slot.Rank, Amount: slot.Amount, Reason: "no team at rank"})
			continue
		}
		team := ranked[slot.Rank-1]
		if strings.TrimSpace(team.UserID) == "" {
			skipped = append(skipped, SkippedSlot{Rank: slot.Rank, Amount: slot.Amount, Reason: "team has no user"})
			continue
		}
		payouts = append(payouts, settlement.Payout{
			TeamID: team.ID,
			UserID: team.UserID,
			Position: slot.Rank,
			Rank:     team.Rank,
			Amount:   slot.Amount,
			Points:   team.TotalPoints,
		})
	}
	return payouts, skipped
}

func payoutSlots(payouts []settlement.Payout) []contest.PrizeSlot {
	out := make([]contest.PrizeSlot, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, contest.PrizeSlot{Rank: p.Position, Amount: p.Amount})
	}
	return out
}
