package postgres

import (
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
	"github.com/shopspring/decimal"
)

type scoringRulesTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	Name      string     `db:"name"`
	Version   int        `db:"version"`
	Config    string     `db:"config"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type scoringRulesInsertModel struct {
	PublicID string `db:"public_id"`
	Name     string `db:"name"`
	Version  int    `db:"version"`
	Config   string `db:"config"`
}

// scoringRulesConfig is the JSONB document; absent values fall back to defaults.
type scoringRulesConfig struct {
	RunPoints        decimal.NullDecimal `json:"run_points"`
	BoundaryBonus    decimal.NullDecimal `json:"boundary_bonus"`
	SixBonus         decimal.NullDecimal `json:"six_bonus"`
	HalfCenturyBonus decimal.NullDecimal `json:"half_century_bonus"`
	CenturyBonus     decimal.NullDecimal `json:"century_bonus"`
	DuckPenalty      decimal.NullDecimal `json:"duck_penalty"`
	StrikeRateBands  []thresholdConfig   `json:"strike_rate_bands"`

	WicketPoints     decimal.NullDecimal `json:"wicket_points"`
	MaidenOverPoints decimal.NullDecimal `json:"maiden_over_points"`
	ThreeWicketBonus decimal.NullDecimal `json:"three_wicket_bonus"`
	FiveWicketBonus  decimal.NullDecimal `json:"five_wicket_bonus"`
	EconomyBands     []thresholdConfig   `json:"economy_bands"`

	CatchPoints        decimal.NullDecimal `json:"catch_points"`
	StumpingPoints     decimal.NullDecimal `json:"stumping_points"`
	RunOutDirectPoints decimal.NullDecimal `json:"run_out_direct_points"`

	CaptainMultiplier     decimal.NullDecimal `json:"captain_multiplier"`
	ViceCaptainMultiplier decimal.NullDecimal `json:"vice_captain_multiplier"`
}

type thresholdConfig struct {
	Value  decimal.Decimal `json:"value"`
	Points decimal.Decimal `json:"points"`
}

func toScoringRulesConfig(r scoring.Rules) scoringRulesConfig {
	return scoringRulesConfig{
		RunPoints:             r.RunPoints,
		BoundaryBonus:         r.BoundaryBonus,
		SixBonus:              r.SixBonus,
		HalfCenturyBonus:      r.HalfCenturyBonus,
		CenturyBonus:          r.CenturyBonus,
		DuckPenalty:           r.DuckPenalty,
		StrikeRateBands:       toThresholdConfig(r.StrikeRateBands),
		WicketPoints:          r.WicketPoints,
		MaidenOverPoints:      r.MaidenOverPoints,
		ThreeWicketBonus:      r.ThreeWicketBonus,
		FiveWicketBonus:       r.FiveWicketBonus,
		EconomyBands:          toThresholdConfig(r.EconomyBands),
		CatchPoints:           r.CatchPoints,
		StumpingPoints:        r.StumpingPoints,
		RunOutDirectPoints:    r.RunOutDirectPoints,
		CaptainMultiplier:     r.CaptainMultiplier,
		ViceCaptainMultiplier: r.ViceCaptainMultiplier,
	}
}

func (c scoringRulesConfig) apply(r *scoring.Rules) {
	r.RunPoints = c.RunPoints
	r.BoundaryBonus = c.BoundaryBonus
	r.SixBonus = c.SixBonus
	r.HalfCenturyBonus = c.HalfCenturyBonus
	r.CenturyBonus = c.CenturyBonus
	r.DuckPenalty = c.DuckPenalty
	r.StrikeRateBands = fromThresholdConfig(c.StrikeRateBands)
	r.WicketPoints = c.WicketPoints
	r.MaidenOverPoints = c.MaidenOverPoints
	r.ThreeWicketBonus = c.ThreeWicketBonus
	r.FiveWicketBonus = c.FiveWicketBonus
	r.EconomyBands = fromThresholdConfig(c.EconomyBands)
	r.CatchPoints = c.CatchPoints
	r.StumpingPoints = c.StumpingPoints
	r.RunOutDirectPoints = c.RunOutDirectPoints
	r.CaptainMultiplier = c.CaptainMultiplier
	r.ViceCaptainMultiplier = c.ViceCaptainMultiplier
}

// nil stays nil and empty stays empty so the disable-band semantics survive a round trip.
func toThresholdConfig(in []scoring.Threshold) []thresholdConfig {
	if in == nil {
		return nil
	}
	out := make([]thresholdConfig, 0, len(in))
	for _, t := range in {
		out = append(out, thresholdConfig{Value: t.Value, Points: t.Points})
	}
	return out
}

func fromThresholdConfig(in []thresholdConfig) []scoring.Threshold {
	if in == nil {
		return nil
	}
	out := make([]scoring.Threshold, 0, len(in))
	for _, t := range in {
		out = append(out, scoring.Threshold{Value: t.Value, Points: t.Points})
	}
	return out
}
