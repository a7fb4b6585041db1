package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

// Threshold is one band entry: Points apply when the measured value crosses Value.
type Threshold struct {
	Value  decimal.Decimal
	Points decimal.Decimal
}

// Rules is a stored, versioned rule set. Unset fields fall back to DefaultEffectiveRules.
// A nil band list falls back to the default bands; an empty non-nil list disables the bonus.
type Rules struct {
	ID      string
	Name    string
	Version int

	RunPoints        decimal.NullDecimal
	BoundaryBonus    decimal.NullDecimal
	SixBonus         decimal.NullDecimal
	HalfCenturyBonus decimal.NullDecimal
	CenturyBonus     decimal.NullDecimal
	DuckPenalty      decimal.NullDecimal
	StrikeRateBands  []Threshold

	WicketPoints     decimal.NullDecimal
	MaidenOverPoints decimal.NullDecimal
	ThreeWicketBonus decimal.NullDecimal
	FiveWicketBonus  decimal.NullDecimal
	EconomyBands     []Threshold

	CatchPoints        decimal.NullDecimal
	StumpingPoints     decimal.NullDecimal
	RunOutDirectPoints decimal.NullDecimal

	CaptainMultiplier     decimal.NullDecimal
	ViceCaptainMultiplier decimal.NullDecimal

	CreatedAt time.Time
}

// EffectiveRules has every value populated and is what the calculator consumes.
type EffectiveRules struct {
	RunPoints        decimal.Decimal
	BoundaryBonus    decimal.Decimal
	SixBonus         decimal.Decimal
	HalfCenturyBonus decimal.Decimal
	CenturyBonus     decimal.Decimal
	DuckPenalty      decimal.Decimal
	StrikeRateBands  []Threshold

	WicketPoints     decimal.Decimal
	MaidenOverPoints decimal.Decimal
	ThreeWicketBonus decimal.Decimal
	FiveWicketBonus  decimal.Decimal
	EconomyBands     []Threshold

	CatchPoints        decimal.Decimal
	StumpingPoints     decimal.Decimal
	RunOutDirectPoints decimal.Decimal

	CaptainMultiplier     decimal.Decimal
	ViceCaptainMultiplier decimal.Decimal
}

func DefaultEffectiveRules() EffectiveRules {
	return EffectiveRules{
		RunPoints:        decimal.NewFromInt(1),
		BoundaryBonus:    decimal.NewFromInt(1),
		SixBonus:         decimal.NewFromInt(2),
		HalfCenturyBonus: decimal.NewFromInt(20),
		CenturyBonus:     decimal.NewFromInt(50),
		DuckPenalty:      decimal.NewFromInt(-5),
		StrikeRateBands: []Threshold{
			{Value: decimal.NewFromInt(200), Points: decimal.NewFromInt(10)},
			{Value: decimal.NewFromInt(170), Points: decimal.NewFromInt(6)},
			{Value: decimal.NewFromInt(150), Points: decimal.NewFromInt(4)},
			{Value: decimal.NewFromInt(130), Points: decimal.NewFromInt(2)},
		},

		WicketPoints:     decimal.NewFromInt(25),
		MaidenOverPoints: decimal.NewFromInt(12),
		ThreeWicketBonus: decimal.NewFromInt(15),
		FiveWicketBonus:  decimal.NewFromInt(30),
		EconomyBands: []Threshold{
			{Value: decimal.NewFromInt(5), Points: decimal.NewFromInt(6)},
			{Value: decimal.NewFromInt(6), Points: decimal.NewFromInt(4)},
			{Value: decimal.NewFromInt(7), Points: decimal.NewFromInt(2)},
		},

		CatchPoints:        decimal.NewFromInt(8),
		StumpingPoints:     decimal.NewFromInt(12),
		RunOutDirectPoints: decimal.NewFromInt(12),

		CaptainMultiplier:     decimal.NewFromInt(2),
		ViceCaptainMultiplier: decimal.RequireFromString("1.5"),
	}
}

// DefaultRules is the rule set used when a contest references no stored rules.
func DefaultRules() Rules {
	return Rules{ID: DefaultRulesID, Name: "Standard", Version: 1}
}

const DefaultRulesID = "default"

func (r Rules) Resolve() EffectiveRules {
	out := DefaultEffectiveRules()
	pick := func(dst *decimal.Decimal, v decimal.NullDecimal) {
		if v.Valid {
			*dst = v.Decimal
		}
	}

	pick(&out.RunPoints, r.RunPoints)
	pick(&out.BoundaryBonus, r.BoundaryBonus)
	pick(&out.SixBonus, r.SixBonus)
	pick(&out.HalfCenturyBonus, r.HalfCenturyBonus)
	pick(&out.CenturyBonus, r.CenturyBonus)
	pick(&out.DuckPenalty, r.DuckPenalty)
	pick(&out.WicketPoints, r.WicketPoints)
	pick(&out.MaidenOverPoints, r.MaidenOverPoints)
	pick(&out.ThreeWicketBonus, r.ThreeWicketBonus)
	pick(&out.FiveWicketBonus, r.FiveWicketBonus)
	pick(&out.CatchPoints, r.CatchPoints)
	pick(&out.StumpingPoints, r.StumpingPoints)
	pick(&out.RunOutDirectPoints, r.RunOutDirectPoints)
	pick(&out.CaptainMultiplier, r.CaptainMultiplier)
	pick(&out.ViceCaptainMultiplier, r.ViceCaptainMultiplier)

	if r.StrikeRateBands != nil {
		out.StrikeRateBands = append([]Threshold(nil), r.StrikeRateBands...)
	}
	if r.EconomyBands != nil {
		out.EconomyBands = append([]Threshold(nil), r.EconomyBands...)
	}
	return out
}
