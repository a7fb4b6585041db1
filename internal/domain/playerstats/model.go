package playerstats

import (
	"time"

	"github.com/shopspring/decimal"
)

// Counters are cumulative-to-date per player per match, never deltas.
type Counters struct {
	Runs         int
	BallsFaced   int
	Fours        int
	Sixes        int
	Wickets      int
	OversBowled  decimal.Decimal // cricket notation: 3.4 is three overs and four balls
	RunsConceded int
	Maidens      int
	Catches      int
	Stumpings    int
	RunOuts      int
}

// BallsBowled converts OversBowled notation into legal deliveries.
func (c Counters) BallsBowled() int64 {
	whole := c.OversBowled.Truncate(0)
	part := c.OversBowled.Sub(whole).Shift(1).IntPart()
	return whole.IntPart()*6 + part
}

// TrueOvers is BallsBowled expressed as a decimal number of overs (3.4 -> 3.666...).
func (c Counters) TrueOvers() decimal.Decimal {
	return decimal.NewFromInt(c.BallsBowled()).Div(decimal.NewFromInt(6))
}

type MatchStat struct {
	MatchID       string
	PlayerID      string
	Counters      Counters
	FantasyPoints decimal.Decimal
	RulesID       string
	UpdatedAt     time.Time
}

// Update is one entry of a score-feed batch.
type Update struct {
	PlayerID string
	Counters Counters
}
