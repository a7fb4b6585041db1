package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type matchPlayerStatModel struct {
	MatchID       string          `db:"match_public_id"`
	PlayerID      string          `db:"player_public_id"`
	Runs          int             `db:"runs"`
	BallsFaced    int             `db:"balls_faced"`
	Fours         int             `db:"fours"`
	Sixes         int             `db:"sixes"`
	Wickets       int             `db:"wickets"`
	OversBowled   decimal.Decimal `db:"overs_bowled"`
	RunsConceded  int             `db:"runs_conceded"`
	Maidens       int             `db:"maidens"`
	Catches       int             `db:"catches"`
	Stumpings     int             `db:"stumpings"`
	RunOuts       int             `db:"run_outs"`
	FantasyPoints decimal.Decimal `db:"fantasy_points"`
	RulesID       string          `db:"rules_public_id"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
