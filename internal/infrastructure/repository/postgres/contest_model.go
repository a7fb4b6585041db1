package postgres

import (
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/contest"
	"github.com/shopspring/decimal"
)

type contestTableModel struct {
	ID         int64           `db:"id"`
	PublicID   string          `db:"public_id"`
	MatchID    string          `db:"match_public_id"`
	Name       string          `db:"name"`
	EntryFee   decimal.Decimal `db:"entry_fee"`
	MaxEntries int             `db:"max_entries"`
	Rake       decimal.Decimal `db:"rake"`
	RulesID    string          `db:"rules_public_id"`
	PrizeTable string          `db:"prize_table"`
	Status     string          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
	SettledAt  *time.Time      `db:"settled_at"`
	DeletedAt  *time.Time      `db:"deleted_at"`
}

type contestInsertModel struct {
	PublicID   string          `db:"public_id"`
	MatchID    string          `db:"match_public_id"`
	Name       string          `db:"name"`
	EntryFee   decimal.Decimal `db:"entry_fee"`
	MaxEntries int             `db:"max_entries"`
	Rake       decimal.Decimal `db:"rake"`
	RulesID    string          `db:"rules_public_id"`
	PrizeTable string          `db:"prize_table"`
	Status     string          `db:"status"`
}

type prizeSlotConfig struct {
	Rank   int             `json:"rank"`
	Amount decimal.Decimal `json:"amount"`
}

func encodePrizeTable(table []contest.PrizeSlot) (string, error) {
	out := make([]prizeSlotConfig, 0, len(table))
	for _, slot := range table {
		out = append(out, prizeSlotConfig{Rank: slot.Rank, Amount: slot.Amount})
	}
	return encodeJSON(out)
}

func decodePrizeTable(raw string) ([]contest.PrizeSlot, error) {
	var slots []prizeSlotConfig
	if err := decodeJSON(raw, &slots); err != nil {
		return nil, err
	}
	out := make([]contest.PrizeSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, contest.PrizeSlot{Rank: slot.Rank, Amount: slot.Amount})
	}
	return out, nil
}

func (row contestTableModel) toDomain() (contest.Contest, error) {
	table, err := decodePrizeTable(row.PrizeTable)
	if err != nil {
		return contest.Contest{}, err
	}
	return contest.Contest{
		ID:         row.PublicID,
		MatchID:    row.MatchID,
		Name:       row.Name,
		EntryFee:   row.EntryFee,
		MaxEntries: row.MaxEntries,
		Rake:       row.Rake,
		RulesID:    row.RulesID,
		PrizeTable: table,
		Status:     contest.Status(row.Status),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		SettledAt:  row.SettledAt,
	}, nil
}
