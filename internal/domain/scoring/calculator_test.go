package scoring

import (
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/playerstats"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertPoints(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("unexpected points: got=%s want=%s", got, want)
	}
}

func TestCalculate_CenturyWithStrikeRateBonus(t *testing.T) {
	t.Parallel()

	c := playerstats.Counters{Runs: 105, BallsFaced: 50, Fours: 10, Sixes: 3}
	b := CalculateBreakdown(c, DefaultEffectiveRules())

	assertPoints(t, b.Batting, "121")
	assertPoints(t, b.Milestone, "50")
	assertPoints(t, b.StrikeRate, "10")
	assertPoints(t, b.Total, "181")
}

func TestCalculate_Duck(t *testing.T) {
	t.Parallel()

	b := CalculateBreakdown(playerstats.Counters{Runs: 0, BallsFaced: 5}, DefaultEffectiveRules())
	assertPoints(t, b.Duck, "-5")
	assertPoints(t, b.StrikeRate, "0")
	assertPoints(t, b.Total, "-5")

	notBatted := Calculate(playerstats.Counters{}, DefaultEffectiveRules())
	assertPoints(t, notBatted, "0")
}

func TestCalculate_MilestonesAreExclusive(t *testing.T) {
	t.Parallel()

	rules := DefaultEffectiveRules()
	rules.StrikeRateBands = nil

	assertPoints(t, CalculateBreakdown(playerstats.Counters{Runs: 50, BallsFaced: 60}, rules).Milestone, "20")
	assertPoints(t, CalculateBreakdown(playerstats.Counters{Runs: 99, BallsFaced: 80}, rules).Milestone, "20")
	assertPoints(t, CalculateBreakdown(playerstats.Counters{Runs: 100, BallsFaced: 80}, rules).Milestone, "50")
	assertPoints(t, CalculateBreakdown(playerstats.Counters{Runs: 49, BallsFaced: 80}, rules).Milestone, "0")
}

func TestCalculate_StrikeRateFirstBandWins(t *testing.T) {
	t.Parallel()

	rules := DefaultEffectiveRules()
	cases := []struct {
		runs, balls int
		want        string
	}{
		{runs: 20, balls: 10, want: "10"},
		{runs: 17, balls: 10, want: "6"},
		{runs: 15, balls: 10, want: "4"},
		{runs: 13, balls: 10, want: "2"},
		{runs: 12, balls: 10, want: "0"},
		{runs: 30, balls: 9, want: "0"},
	}
	for _, tc := range cases {
		b := CalculateBreakdown(playerstats.Counters{Runs: tc.runs, BallsFaced: tc.balls}, rules)
		if !b.StrikeRate.Equal(dec(tc.want)) {
			t.Fatalf("unexpected strike-rate bonus for %d/%d: got=%s want=%s", tc.runs, tc.balls, b.StrikeRate, tc.want)
		}
	}

	// Bands are scanned in the order given, so an ascending list stops at the lowest band.
	rules.StrikeRateBands = []Threshold{{Value: dec("130"), Points: dec("2")}, {Value: dec("200"), Points: dec("10")}}
	b := CalculateBreakdown(playerstats.Counters{Runs: 25, BallsFaced: 10}, rules)
	assertPoints(t, b.StrikeRate, "2")
}

func TestCalculate_BowlingAndEconomy(t *testing.T) {
	t.Parallel()

	rules := DefaultEffectiveRules()

	fiveFor := playerstats.Counters{Wickets: 5, OversBowled: dec("4"), RunsConceded: 20, Maidens: 1}
	b := CalculateBreakdown(fiveFor, rules)
	assertPoints(t, b.Bowling, "137")
	assertPoints(t, b.WicketHaul, "30")
	assertPoints(t, b.Economy, "6")
	assertPoints(t, b.Total, "173")

	threeFor := playerstats.Counters{Wickets: 3, OversBowled: dec("4"), RunsConceded: 26}
	b = CalculateBreakdown(threeFor, rules)
	assertPoints(t, b.WicketHaul, "15")
	assertPoints(t, b.Economy, "2")

	// 1.5 overs is below the two-over minimum.
	short := playerstats.Counters{OversBowled: dec("1.5"), RunsConceded: 2}
	assertPoints(t, CalculateBreakdown(short, rules).Economy, "0")

	// 2.3 overs is 15 balls: 10 runs gives economy 4.
	partial := playerstats.Counters{OversBowled: dec("2.3"), RunsConceded: 10}
	assertPoints(t, CalculateBreakdown(partial, rules).Economy, "6")

	expensive := playerstats.Counters{OversBowled: dec("3"), RunsConceded: 30}
	assertPoints(t, CalculateBreakdown(expensive, rules).Economy, "0")
}

func TestCalculate_Fielding(t *testing.T) {
	t.Parallel()

	got := Calculate(playerstats.Counters{Catches: 2, Stumpings: 1, RunOuts: 1}, DefaultEffectiveRules())
	assertPoints(t, got, "40")
}

func TestCalculate_RoundsOnlyAtTheEnd(t *testing.T) {
	t.Parallel()

	rules := DefaultEffectiveRules()
	rules.RunPoints = dec("0.333")
	rules.BoundaryBonus = dec("0.0025")
	rules.StrikeRateBands = nil

	// 3 x 0.333 + 2 x 0.0025 = 1.004 -> 1.00; rounding each term first would give 1.00 + 0.01.
	got := Calculate(playerstats.Counters{Runs: 3, BallsFaced: 4, Fours: 2}, rules)
	assertPoints(t, got, "1")

	rules.RunPoints = dec("0.335")
	rules.BoundaryBonus = decimal.Zero
	assertPoints(t, Calculate(playerstats.Counters{Runs: 1, BallsFaced: 1}, rules), "0.34")
}

func TestCalculate_Deterministic(t *testing.T) {
	t.Parallel()

	c := playerstats.Counters{Runs: 47, BallsFaced: 31, Fours: 4, Sixes: 2, Wickets: 2, OversBowled: dec("3.4"), RunsConceded: 23, Catches: 1}
	rules := DefaultEffectiveRules()
	first := Calculate(c, rules)
	second := Calculate(c, rules)
	if first.String() != second.String() {
		t.Fatalf("non-deterministic result: %s vs %s", first, second)
	}
}

func TestResolveAppliesOverrides(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	rules.WicketPoints = decimal.NewNullDecimal(dec("30"))
	rules.EconomyBands = []Threshold{}

	effective := rules.Resolve()
	assertPoints(t, effective.WicketPoints, "30")
	assertPoints(t, effective.RunPoints, "1")
	assertPoints(t, effective.CaptainMultiplier, "2")
	if len(effective.EconomyBands) != 0 {
		t.Fatalf("explicit empty band list should disable economy bonus")
	}
	if len(effective.StrikeRateBands) != 4 {
		t.Fatalf("nil band list should keep defaults, got %d", len(effective.StrikeRateBands))
	}
}
