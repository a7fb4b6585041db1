package scoring

import (
	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/shopspring/decimal"
)

const (
	pointsPlaces       = 2
	minStrikeRateBalls = 10
	minEconomyBalls    = 12
)

var hundred = decimal.NewFromInt(100)

// Breakdown keeps each additive term unrounded; only Total is rounded.
type Breakdown struct {
	Batting    decimal.Decimal
	Milestone  decimal.Decimal
	Duck       decimal.Decimal
	StrikeRate decimal.Decimal
	Bowling    decimal.Decimal
	WicketHaul decimal.Decimal
	Economy    decimal.Decimal
	Fielding   decimal.Decimal
	Total      decimal.Decimal
}

// Calculate returns fantasy points for one player's counters, rounded to two places.
func Calculate(c playerstats.Counters, rules EffectiveRules) decimal.Decimal {
	return CalculateBreakdown(c, rules).Total
}

func CalculateBreakdown(c playerstats.Counters, rules EffectiveRules) Breakdown {
	var b Breakdown

	b.Batting = count(c.Runs).Mul(rules.RunPoints).
		Add(count(c.Fours).Mul(rules.BoundaryBonus)).
		Add(count(c.Sixes).Mul(rules.SixBonus))

	switch {
	case c.Runs >= 100:
		b.Milestone = rules.CenturyBonus
	case c.Runs >= 50:
		b.Milestone = rules.HalfCenturyBonus
	}

	if c.Runs == 0 && c.BallsFaced > 0 {
		b.Duck = rules.DuckPenalty
	}

	if c.BallsFaced >= minStrikeRateBalls {
		strikeRate := count(c.Runs).Div(count(c.BallsFaced)).Mul(hundred)
		for _, band := range rules.StrikeRateBands {
			if strikeRate.GreaterThanOrEqual(band.Value) {
				b.StrikeRate = band.Points
				break
			}
		}
	}

	b.Bowling = count(c.Wickets).Mul(rules.WicketPoints).
		Add(count(c.Maidens).Mul(rules.MaidenOverPoints))

	switch {
	case c.Wickets >= 5:
		b.WicketHaul = rules.FiveWicketBonus
	case c.Wickets >= 3:
		b.WicketHaul = rules.ThreeWicketBonus
	}

	if c.BallsBowled() >= minEconomyBalls {
		economy := count(c.RunsConceded).Div(c.TrueOvers())
		for _, band := range rules.EconomyBands {
			if economy.LessThanOrEqual(band.Value) {
				b.Economy = band.Points
				break
			}
		}
	}

	b.Fielding = count(c.Catches).Mul(rules.CatchPoints).
		Add(count(c.Stumpings).Mul(rules.StumpingPoints)).
		Add(count(c.RunOuts).Mul(rules.RunOutDirectPoints))

	b.Total = Round(decimal.Sum(b.Batting, b.Milestone, b.Duck, b.StrikeRate, b.Bowling, b.WicketHaul, b.Economy, b.Fielding))
	return b
}

// Round applies the points rounding rule: two places, halves away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(pointsPlaces)
}

func count(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
