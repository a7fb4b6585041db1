package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type CreateContestInput struct {
	MatchID    string
	Name       string
	EntryFee   decimal.Decimal
	MaxEntries int
	Rake       decimal.NullDecimal
	RulesID    string
	PrizeTable []contest.PrizeSlot
}

type SubmitTeamInput struct {
	ContestID     string
	UserID        string
	DisplayName   string
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
}

type ContestConfig struct {
	DefaultRake decimal.Decimal
}

type ContestService struct {
	matchRepo   match.Repository
	contestRepo contest.Repository
	teamRepo    fantasyteam.Repository
	rules       *RulesResolver
	leaderboard *LeaderboardService
	locker      Locker
	ids         id.Generator
	cfg         ContestConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewContestService(
	matchRepo match.Repository,
	contestRepo contest.Repository,
	teamRepo fantasyteam.Repository,
	rules *RulesResolver,
	leaderboard *LeaderboardService,
	locker Locker,
	ids id.Generator,
	cfg ContestConfig,
	logger *logging.Logger,
) *ContestService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ContestService{
		matchRepo:   matchRepo,
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		rules:       rules,
		leaderboard: leaderboard,
		locker:      locker,
		ids:         ids,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateContest opens a contest on an upcoming match. Without an explicit
// prize table one is built from fee, entries and rake.
func (s *ContestService) CreateContest(ctx context.Context, input CreateContestInput) (contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.CreateContest")
	defer span.End()

	input.MatchID = strings.TrimSpace(input.MatchID)
	input.Name = strings.TrimSpace(input.Name)
	if input.MatchID == "" || input.Name == "" {
		return contest.Contest{}, fmt.Errorf("%w: match id and name are required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("get match=%s: %w", input.MatchID, err)
	}
	if !exists {
		return contest.Contest{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}
	if item.Status != match.StatusUpcoming {
		return contest.Contest{}, fmt.Errorf("%w: match=%s status=%s does not accept contests", ErrConflict, item.ID, item.Status)
	}

	_, rulesID, err := s.rules.Resolve(ctx, input.RulesID)
	if err != nil {
		return contest.Contest{}, err
	}

	rake := s.cfg.DefaultRake
	if input.Rake.Valid {
		rake = input.Rake.Decimal
	}

	table := input.PrizeTable
	if len(table) == 0 {
		table, err = contest.BuildPrizeTable(input.EntryFee, input.MaxEntries, rake)
		if err != nil {
			return contest.Contest{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	} else {
		if _, err := contest.BuildPrizeTable(input.EntryFee, input.MaxEntries, rake); err != nil {
			return contest.Contest{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if err := contest.ValidatePrizeTable(table, contest.PrizePool(input.EntryFee, input.MaxEntries, rake)); err != nil {
			return contest.Contest{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	contestID, err := s.ids.NewID()
	if err != nil {
		return contest.Contest{}, fmt.Errorf("generate contest id: %w", err)
	}

	now := s.now().UTC()
	created := contest.Contest{
		ID:         contestID,
		MatchID:    item.ID,
		Name:       input.Name,
		EntryFee:   input.EntryFee,
		MaxEntries: input.MaxEntries,
		Rake:       rake,
		RulesID:    rulesID,
		PrizeTable: table,
		Status:     contest.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.contestRepo.Create(ctx, created); err != nil {
		return contest.Contest{}, fmt.Errorf("create contest: %w", err)
	}

	s.logger.InfoContext(ctx, "contest created",
		"contest_id", created.ID,
		"match_id", created.MatchID,
		"max_entries", created.MaxEntries,
		"prize_slots", len(created.PrizeTable),
	)
	return created, nil
}

// SubmitTeam enters a team while the contest is open. It runs under the match
// lock so it cannot interleave with the lock trigger that closes entries.
func (s *ContestService) SubmitTeam(ctx context.Context, input SubmitTeamInput) (fantasyteam.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ContestService.SubmitTeam")
	defer span.End()

	input.ContestID = strings.TrimSpace(input.ContestID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.ContestID == "" || input.UserID == "" {
		return fantasyteam.Team{}, fmt.Errorf("%w: contest id and user id are required", ErrInvalidInput)
	}
	for i := range input.PlayerIDs {
		input.PlayerIDs[i] = strings.TrimSpace(input.PlayerIDs[i])
	}
	if err := fantasyteam.ValidateRoster(input.PlayerIDs, input.CaptainID, input.ViceCaptainID); err != nil {
		return fantasyteam.Team{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	target, err := s.getContest(ctx, input.ContestID)
	if err != nil {
		return fantasyteam.Team{}, err
	}

	unlock, err := s.locker.Lock(ctx, matchLockKey(target.MatchID))
	if err != nil {
		return fantasyteam.Team{}, fmt.Errorf("%w: lock match=%s: %w", ErrDependencyUnavailable, target.MatchID, err)
	}
	defer unlock()

	target, err = s.getContest(ctx, input.ContestID)
	if err != nil {
		return fantasyteam.Team{}, err
	}
	if !target.AcceptsEntries() {
		return fantasyteam.Team{}, fmt.Errorf("%w: contest=%s status=%s is closed for entries", ErrConflict, target.ID, target.Status)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, target.MatchID)
	if err != nil {
		return fantasyteam.Team{}, fmt.Errorf("get match=%s: %w", target.MatchID, err)
	}
	if !exists {
		return fantasyteam.Team{}, fmt.Errorf("%w: match=%s", ErrNotFound, target.MatchID)
	}
	for _, playerID := range input.PlayerIDs {
		if !item.HasPlayer(playerID) {
			return fantasyteam.Team{}, fmt.Errorf("%w: player=%s is not in match=%s", ErrInvalidInput, playerID, item.ID)
		}
	}

	existing, err := s.teamRepo.ListByContest(ctx, target.ID)
	if err != nil {
		return fantasyteam.Team{}, fmt.Errorf("list teams contest=%s: %w", target.ID, err)
	}
	for _, team := range existing {
		if team.UserID == input.UserID {
			return fantasyteam.Team{}, fmt.Errorf("%w: user=%s already entered contest=%s", ErrConflict, input.UserID, target.ID)
		}
	}
	if len(existing) >= target.MaxEntries {
		return fantasyteam.Team{}, fmt.Errorf("%w: contest=%s is full", ErrConflict, target.ID)
	}

	teamID, err := s.ids.NewID()
	if err != nil {
		return fantasyteam.Team{}, fmt.Errorf("generate team id: %w", err)
	}
	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.UserID
	}

	now := s.now().UTC()
	team := fantasyteam.Team{
		ID:            teamID,
		ContestID:     target.ID,
		UserID:        input.UserID,
		DisplayName:   displayName,
		PlayerIDs:     append([]string(nil), input.PlayerIDs...),
		CaptainID:     input.CaptainID,
		ViceCaptainID: input.ViceCaptainID,
		TotalPoints:   decimal.Zero,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return fantasyteam.Team{}, fmt.Errorf("create team contest=%s: %w", target.ID, err)
	}
	if s.leaderboard != nil {
		s.leaderboard.invalidate(ctx, target.ID)
	}

	return team, nil
}

func (s *ContestService) getContest(ctx context.Context, contestID string) (contest.Contest, error) {
	item, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("get contest=%s: %w", contestID, err)
	}
	if !exists {
		return contest.Contest{}, fmt.Errorf("%w: contest=%s", ErrNotFound, contestID)
	}
	return item, nil
}
