package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	contestmock "github.com/riskibarqy/fantasy-cricket/internal/mocks/domain/contest"
	matchmock "github.com/riskibarqy/fantasy-cricket/internal/mocks/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestLockMatch_MovesMatchAndOpenContestsLive(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-1", match.StatusUpcoming)
	env.addContest(t, contest.Contest{ID: "c-1", MatchID: "m-1", Status: contest.StatusOpen})
	env.addContest(t, contest.Contest{ID: "c-2", MatchID: "m-1", Status: contest.StatusOpen})
	ctx := context.Background()

	result, err := env.lifecycle.LockMatch(ctx, "m-1")
	if err != nil {
		t.Fatalf("LockMatch returned error: %v", err)
	}
	if !result.Transitioned || result.ContestsLocked != 2 || result.Status != match.StatusLive {
		t.Fatalf("unexpected lock result: %+v", result)
	}

	again, err := env.lifecycle.LockMatch(ctx, "m-1")
	if err != nil {
		t.Fatalf("second LockMatch returned error: %v", err)
	}
	if again.Transitioned || again.ContestsLocked != 0 {
		t.Fatalf("expected no-op on repeat, got %+v", again)
	}

	item, _, _ := env.contests.GetByID(ctx, "c-1")
	if item.Status != contest.StatusLive {
		t.Fatalf("unexpected contest status: got=%s want=%s", item.Status, contest.StatusLive)
	}
}

func TestLockMatch_ClosesTeamSubmission(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-1", match.StatusUpcoming)
	env.addContest(t, contest.Contest{ID: "c-1", MatchID: "m-1", Status: contest.StatusOpen, MaxEntries: 5})
	ctx := context.Background()

	if _, err := env.lifecycle.LockMatch(ctx, "m-1"); err != nil {
		t.Fatalf("LockMatch returned error: %v", err)
	}

	_, err := env.contestSvc.SubmitTeam(ctx, SubmitTeamInput{
		ContestID: "c-1", UserID: "u-1", PlayerIDs: playerIDs("a", 11), CaptainID: "a1", ViceCaptainID: "a2",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after lock, got %v", err)
	}
}

func TestLockMatch_RejectsCompletedMatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-1", match.StatusCompleted)

	if _, err := env.lifecycle.LockMatch(context.Background(), "m-1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := env.lifecycle.LockMatch(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteMatch_SettlesInline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addMatch(t, "m-1", match.StatusLive)
	table, err := contest.BuildPrizeTable(dec("100"), 2, dec("0.12"))
	if err != nil {
		t.Fatalf("build prize table: %v", err)
	}
	env.addContest(t, contest.Contest{ID: "c-h2h", MatchID: "m-1", Status: contest.StatusLive, EntryFee: dec("100"), MaxEntries: 2, PrizeTable: table})
	env.addTeam(t, fantasyteam.Team{ID: "t-1", ContestID: "c-h2h", UserID: "u-1", TotalPoints: dec("310"), SubmittedAt: fixedNow})
	env.addTeam(t, fantasyteam.Team{ID: "t-2", ContestID: "c-h2h", UserID: "u-2", TotalPoints: dec("290"), SubmittedAt: fixedNow})
	ctx := context.Background()

	result, err := env.lifecycle.CompleteMatch(ctx, "m-1", "A won by 20 runs")
	if err != nil {
		t.Fatalf("CompleteMatch returned error: %v", err)
	}
	if !result.Transitioned || result.ContestsSettling != 1 {
		t.Fatalf("unexpected complete result: %+v", result)
	}
	if result.Settlement.Mode != SettlementModeInline || result.Settlement.Settled == nil || result.Settlement.Settled.ContestsSettled != 1 {
		t.Fatalf("unexpected settlement dispatch: %+v", result.Settlement)
	}

	item, _, _ := env.matches.GetByID(ctx, "m-1")
	if item.Status != match.StatusCompleted || item.Result != "A won by 20 runs" {
		t.Fatalf("unexpected match after completion: %+v", item)
	}

	view, err := env.walletSvc.GetWallet(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetWallet returned error: %v", err)
	}
	if !view.Wallet.CashBalance.Equal(dec("176")) {
		t.Fatalf("unexpected winner balance: got=%s want=176", view.Wallet.CashBalance)
	}

	// Repeating completion re-dispatches and settles nothing new.
	again, err := env.lifecycle.CompleteMatch(ctx, "m-1", "")
	if err != nil {
		t.Fatalf("second CompleteMatch returned error: %v", err)
	}
	if again.Transitioned || again.ContestsSettling != 0 {
		t.Fatalf("unexpected repeat result: %+v", again)
	}
	view, _ = env.walletSvc.GetWallet(ctx, "u-1")
	if !view.Wallet.CashBalance.Equal(dec("176")) {
		t.Fatalf("winner credited twice: %s", view.Wallet.CashBalance)
	}
}

func TestCompleteMatch_RejectsUpcomingMatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	matchRepo := matchmock.NewRepository(t)
	matchRepo.
		On("GetByID", mock.Anything, "m-1").
		Return(match.Match{ID: "m-1", Status: match.StatusUpcoming}, true, nil).
		Once()

	service := NewMatchLifecycleService(matchRepo, nil, nil, nil, logging.NewNop())
	if _, err := service.CompleteMatch(ctx, "m-1", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCompleteMatch_RepositoryErrorPropagates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("db down")
	matchRepo := matchmock.NewRepository(t)
	matchRepo.
		On("GetByID", mock.Anything, "m-1").
		Return(match.Match{}, false, boom).
		Once()

	service := NewMatchLifecycleService(matchRepo, nil, nil, nil, logging.NewNop())
	if _, err := service.CompleteMatch(ctx, "m-1", ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestLockMatch_ContestRepositoryErrorPropagates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("contest store down")

	matchRepo := matchmock.NewRepository(t)
	matchRepo.
		On("GetByID", mock.Anything, "m-1").
		Return(match.Match{ID: "m-1", Status: match.StatusUpcoming}, true, nil).
		Once()
	matchRepo.
		On("TransitionStatus", mock.Anything, "m-1", []match.Status{match.StatusUpcoming}, match.StatusLive, "").
		Return(true, nil).
		Once()

	contestRepo := contestmock.NewRepository(t)
	contestRepo.
		On("TransitionByMatch", mock.Anything, "m-1", contest.StatusOpen, contest.StatusLive).
		Return(nil, boom).
		Once()

	service := NewMatchLifecycleService(matchRepo, contestRepo, nil, nil, logging.NewNop())
	if _, err := service.LockMatch(ctx, "m-1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped contest repository error, got %v", err)
	}
}

func TestMatchLifecycle_TerminalStatusesRejectTransitions(t *testing.T) {
	t.Parallel()

	for _, status := range []match.Status{match.StatusCancelled, match.StatusAbandoned} {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			env.addMatch(t, "m-1", status)
			env.addContest(t, contest.Contest{ID: "c-1", MatchID: "m-1", Status: contest.StatusOpen, MaxEntries: 5})
			ctx := context.Background()

			if _, err := env.lifecycle.LockMatch(ctx, "m-1"); !errors.Is(err, ErrConflict) {
				t.Fatalf("LockMatch: expected ErrConflict, got %v", err)
			}
			if _, err := env.lifecycle.CompleteMatch(ctx, "m-1", ""); !errors.Is(err, ErrConflict) {
				t.Fatalf("CompleteMatch: expected ErrConflict, got %v", err)
			}
			_, err := env.ingestion.IngestScores(ctx, ScoreBatch{MatchID: "m-1", Updates: []playerstats.Update{
				{PlayerID: "a1", Counters: playerstats.Counters{Runs: 1, BallsFaced: 1}},
			}})
			if !errors.Is(err, ErrConflict) {
				t.Fatalf("IngestScores: expected ErrConflict, got %v", err)
			}

			item, _, _ := env.contests.GetByID(ctx, "c-1")
			if item.Status != contest.StatusOpen {
				t.Fatalf("contest status changed: got=%s want=%s", item.Status, contest.StatusOpen)
			}
		})
	}
}
