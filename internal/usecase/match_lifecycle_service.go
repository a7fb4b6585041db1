package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

// SettlementHandoff receives a completed match whose contests are settling.
// Delivery is at-least-once; settlement itself is idempotent.
type SettlementHandoff interface {
	DispatchMatchSettlement(ctx context.Context, matchID string) (DispatchResult, error)
}

type LockMatchResult struct {
	MatchID        string       `json:"matchId"`
	Status         match.Status `json:"status"`
	Transitioned   bool         `json:"transitioned"`
	ContestsLocked int          `json:"contestsLocked"`
}

type CompleteMatchResult struct {
	MatchID          string         `json:"matchId"`
	Status           match.Status   `json:"status"`
	Transitioned     bool           `json:"transitioned"`
	ContestsSettling int            `json:"contestsSettling"`
	Settlement       DispatchResult `json:"settlement"`
}

type MatchLifecycleService struct {
	matchRepo   match.Repository
	contestRepo contest.Repository
	handoff     SettlementHandoff
	locker      Locker
	logger      *logging.Logger
}

func NewMatchLifecycleService(
	matchRepo match.Repository,
	contestRepo contest.Repository,
	handoff SettlementHandoff,
	locker Locker,
	logger *logging.Logger,
) *MatchLifecycleService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchLifecycleService{
		matchRepo:   matchRepo,
		contestRepo: contestRepo,
		handoff:     handoff,
		locker:      locker,
		logger:      logger,
	}
}

// LockMatch moves the match upcoming -> live and every open contest on it to
// live, which closes team submission. Repeating the call is a no-op.
func (s *MatchLifecycleService) LockMatch(ctx context.Context, matchID string) (LockMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchLifecycleService.LockMatch")
	defer span.End()

	item, unlock, err := s.lockAndLoad(ctx, matchID)
	if err != nil {
		return LockMatchResult{}, err
	}
	defer unlock()

	result := LockMatchResult{MatchID: item.ID, Status: item.Status}
	switch item.Status {
	case match.StatusUpcoming:
		changed, err := s.matchRepo.TransitionStatus(ctx, item.ID, []match.Status{match.StatusUpcoming}, match.StatusLive, "")
		if err != nil {
			return LockMatchResult{}, fmt.Errorf("transition match=%s to live: %w", item.ID, err)
		}
		result.Transitioned = changed
		result.Status = match.StatusLive
	case match.StatusLive:
	default:
		return LockMatchResult{}, fmt.Errorf("%w: match=%s status=%s cannot be locked", ErrConflict, item.ID, item.Status)
	}

	locked, err := s.contestRepo.TransitionByMatch(ctx, item.ID, contest.StatusOpen, contest.StatusLive)
	if err != nil {
		return LockMatchResult{}, fmt.Errorf("lock contests match=%s: %w", item.ID, err)
	}
	result.ContestsLocked = len(locked)

	s.logger.InfoContext(ctx, "match locked",
		"match_id", item.ID,
		"transitioned", result.Transitioned,
		"contests_locked", result.ContestsLocked,
	)
	return result, nil
}

// CompleteMatch moves the match live -> completed and every live contest to
// settling, then hands settling contests to settlement. Repeating the call
// re-dispatches settlement, which is safe because settlement is idempotent.
func (s *MatchLifecycleService) CompleteMatch(ctx context.Context, matchID, resultText string) (CompleteMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchLifecycleService.CompleteMatch")
	defer span.End()

	item, unlock, err := s.lockAndLoad(ctx, matchID)
	if err != nil {
		return CompleteMatchResult{}, err
	}

	result := CompleteMatchResult{MatchID: item.ID, Status: item.Status}
	switch item.Status {
	case match.StatusLive:
		changed, err := s.matchRepo.TransitionStatus(ctx, item.ID, []match.Status{match.StatusLive}, match.StatusCompleted, strings.TrimSpace(resultText))
		if err != nil {
			unlock()
			return CompleteMatchResult{}, fmt.Errorf("transition match=%s to completed: %w", item.ID, err)
		}
		result.Transitioned = changed
		result.Status = match.StatusCompleted
	case match.StatusCompleted:
	default:
		unlock()
		return CompleteMatchResult{}, fmt.Errorf("%w: match=%s status=%s cannot be completed", ErrConflict, item.ID, item.Status)
	}

	if _, err := s.contestRepo.TransitionByMatch(ctx, item.ID, contest.StatusLive, contest.StatusSettling); err != nil {
		unlock()
		return CompleteMatchResult{}, fmt.Errorf("move contests to settling match=%s: %w", item.ID, err)
	}
	settling, err := s.contestRepo.ListByMatch(ctx, item.ID, contest.StatusSettling)
	if err != nil {
		unlock()
		return CompleteMatchResult{}, fmt.Errorf("list settling contests match=%s: %w", item.ID, err)
	}
	result.ContestsSettling = len(settling)

	// Settlement takes per-contest locks; release the match before handing off.
	unlock()

	s.logger.InfoContext(ctx, "match completed",
		"match_id", item.ID,
		"transitioned", result.Transitioned,
		"contests_settling", result.ContestsSettling,
	)

	if result.ContestsSettling == 0 || s.handoff == nil {
		return result, nil
	}

	dispatch, err := s.handoff.DispatchMatchSettlement(ctx, item.ID)
	if err != nil {
		return result, fmt.Errorf("dispatch settlement match=%s: %w", item.ID, err)
	}
	result.Settlement = dispatch
	return result, nil
}

func (s *MatchLifecycleService) lockAndLoad(ctx context.Context, matchID string) (match.Match, func(), error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	unlock, err := s.locker.Lock(ctx, matchLockKey(matchID))
	if err != nil {
		return match.Match{}, nil, fmt.Errorf("%w: lock match=%s: %w", ErrDependencyUnavailable, matchID, err)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		unlock()
		return match.Match{}, nil, fmt.Errorf("get match=%s: %w", matchID, err)
	}
	if !exists {
		unlock()
		return match.Match{}, nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, unlock, nil
}
