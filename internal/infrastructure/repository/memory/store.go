package memory

import (
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/fantasyteam"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/wallet"
)

// Store holds all in-memory state behind one lock so the settlement ledger can
// touch contests, wallets and transactions atomically, like a database transaction.
type Store struct {
	mu sync.RWMutex

	matches    map[string]match.Match
	stats      map[string]map[string]playerstats.MatchStat
	rules      map[string]scoring.Rules
	contests   map[string]contest.Contest
	teams      map[string][]fantasyteam.Team
	wallets    map[string]wallet.Wallet
	txs        []wallet.Transaction
	txKeys     map[payoutKey]struct{}
	dispatches map[string]jobscheduler.DispatchEvent

	now func() time.Time
}

type payoutKey struct {
	contestID string
	userID    string
	position  int
}

func NewStore() *Store {
	return &Store{
		matches:    make(map[string]match.Match),
		stats:      make(map[string]map[string]playerstats.MatchStat),
		rules:      make(map[string]scoring.Rules),
		contests:   make(map[string]contest.Contest),
		teams:      make(map[string][]fantasyteam.Team),
		wallets:    make(map[string]wallet.Wallet),
		txKeys:     make(map[payoutKey]struct{}),
		dispatches: make(map[string]jobscheduler.DispatchEvent),
		now:        time.Now,
	}
}

func cloneMatch(m match.Match) match.Match {
	m.PlayerIDs = append([]string(nil), m.PlayerIDs...)
	return m
}

func cloneContest(c contest.Contest) contest.Contest {
	c.PrizeTable = append([]contest.PrizeSlot(nil), c.PrizeTable...)
	if c.SettledAt != nil {
		at := *c.SettledAt
		c.SettledAt = &at
	}
	return c
}

func cloneTeam(t fantasyteam.Team) fantasyteam.Team {
	t.PlayerIDs = append([]string(nil), t.PlayerIDs...)
	return t
}
