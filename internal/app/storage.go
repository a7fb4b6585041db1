package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
	cacherepo "github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
)

type repositories struct {
	matches    match.Repository
	stats      playerstats.Repository
	scoring    scoring.Repository
	contests   contest.Repository
	teams      fantasyteam.Repository
	wallets    wallet.Repository
	ledger     settlement.Ledger
	dispatches jobscheduler.Repository

	db *sqlx.DB
}

func newRepositories(ctx context.Context, cfg config.Config, store *cache.Store) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openTracedDB(ctx, cfg.DBURL, cfg.ServiceName, cfg.DBMaxOpenConns)
		if err != nil {
			return repositories{}, err
		}
		repos = repositories{
			matches:    postgres.NewMatchRepository(db),
			stats:      postgres.NewPlayerStatsRepository(db),
			scoring:    postgres.NewScoringRepository(db),
			contests:   postgres.NewContestRepository(db),
			teams:      postgres.NewFantasyTeamRepository(db),
			wallets:    postgres.NewWalletRepository(db),
			ledger:     postgres.NewSettlementLedger(db),
			dispatches: postgres.NewJobDispatchRepository(db),
			db:         db,
		}
	case config.StorageMemory:
		mem := memory.NewStore()
		mem.Seed(time.Now().UTC())
		repos = repositories{
			matches:    memory.NewMatchRepository(mem),
			stats:      memory.NewPlayerStatsRepository(mem),
			scoring:    memory.NewScoringRepository(mem),
			contests:   memory.NewContestRepository(mem),
			teams:      memory.NewFantasyTeamRepository(mem),
			wallets:    memory.NewWalletRepository(mem),
			ledger:     memory.NewSettlementLedger(mem),
			dispatches: memory.NewJobDispatchRepository(mem),
		}
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if store != nil {
		repos.scoring = cacherepo.NewScoringRepository(repos.scoring, store)
	}
	return repos, nil
}

func (r repositories) close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
