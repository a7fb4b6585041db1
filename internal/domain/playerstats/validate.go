package playerstats

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeCounter   = errors.New("counter must not be negative")
	ErrInvalidOvers      = errors.New("invalid overs notation")
	ErrOversExceedFormat = errors.New("overs exceed format limit")
	ErrInconsistent      = errors.New("inconsistent counters")
	ErrCounterRegression = errors.New("cumulative counter decreased")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrDuplicatePlayer   = errors.New("duplicate player in batch")
)

// Validate checks one player's counters. maxOvers of zero disables the overs cap.
func (c Counters) Validate(maxOvers int) error {
	for name, v := range c.intFields() {
		if v < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeCounter, name, v)
		}
	}
	if c.OversBowled.IsNegative() {
		return fmt.Errorf("%w: oversBowled=%s", ErrNegativeCounter, c.OversBowled)
	}

	fraction := c.OversBowled.Sub(c.OversBowled.Truncate(0))
	if !fraction.Equal(fraction.Truncate(1)) || fraction.Shift(1).IntPart() > 5 {
		return fmt.Errorf("%w: %s", ErrInvalidOvers, c.OversBowled)
	}
	if maxOvers > 0 && c.OversBowled.GreaterThan(decimal.NewFromInt(int64(maxOvers))) {
		return fmt.Errorf("%w: oversBowled=%s max=%d", ErrOversExceedFormat, c.OversBowled, maxOvers)
	}

	if c.Fours+c.Sixes > c.BallsFaced {
		return fmt.Errorf("%w: %d boundaries from %d balls", ErrInconsistent, c.Fours+c.Sixes, c.BallsFaced)
	}
	if int64(c.Maidens) > c.BallsBowled()/6 {
		return fmt.Errorf("%w: %d maidens in %s overs", ErrInconsistent, c.Maidens, c.OversBowled)
	}

	return nil
}

// ValidateProgression rejects any counter that went backwards since prev.
func (c Counters) ValidateProgression(prev Counters) error {
	current := c.intFields()
	for name, before := range prev.intFields() {
		if current[name] < before {
			return fmt.Errorf("%w: %s %d -> %d", ErrCounterRegression, name, before, current[name])
		}
	}
	if c.BallsBowled() < prev.BallsBowled() {
		return fmt.Errorf("%w: oversBowled %s -> %s", ErrCounterRegression, prev.OversBowled, c.OversBowled)
	}
	return nil
}

func (c Counters) intFields() map[string]int {
	return map[string]int{
		"runs":         c.Runs,
		"ballsFaced":   c.BallsFaced,
		"fours":        c.Fours,
		"sixes":        c.Sixes,
		"wickets":      c.Wickets,
		"runsConceded": c.RunsConceded,
		"maidens":      c.Maidens,
		"catches":      c.Catches,
		"stumpings":    c.Stumpings,
		"runOuts":      c.RunOuts,
	}
}
