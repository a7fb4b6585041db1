package contest

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	ErrInvalidEntryFee   = errors.New("entry fee must not be negative")
	ErrInvalidMaxEntries = errors.New("max entries must be greater than zero")
	ErrInvalidRake       = errors.New("rake must be in [0, 1)")
	ErrInvalidPrizeTable = errors.New("invalid prize table")
)

var (
	smallFieldSplit = percentages(60, 25, 15)
	midFieldLadder  = percentages(25, 15, 12, 10, 9, 8, 7, 6, 4, 4)
	largeFieldTop   = percentages(20, 12, 8)
	largeFieldRest  = decimal.New(60, -2)
)

// PrizePool is fee x entries x (1 - rake), unrounded.
func PrizePool(entryFee decimal.Decimal, maxEntries int, rake decimal.Decimal) decimal.Decimal {
	return entryFee.Mul(decimal.NewFromInt(int64(maxEntries))).Mul(decimal.NewFromInt(1).Sub(rake))
}

// BuildPrizeTable splits the pool by field size. Every slot is floored to cents;
// the rounding remainder stays with the platform.
func BuildPrizeTable(entryFee decimal.Decimal, maxEntries int, rake decimal.Decimal) ([]PrizeSlot, error) {
	if entryFee.IsNegative() {
		return nil, ErrInvalidEntryFee
	}
	if maxEntries < 1 {
		return nil, ErrInvalidMaxEntries
	}
	if rake.IsNegative() || rake.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRake, rake)
	}

	pool := PrizePool(entryFee, maxEntries, rake)

	var shares []decimal.Decimal
	switch {
	case maxEntries <= 2:
		shares = []decimal.Decimal{decimal.NewFromInt(1)}
	case maxEntries <= 10:
		shares = smallFieldSplit
	case maxEntries <= 100:
		shares = midFieldLadder
	default:
		shares = append(shares, largeFieldTop...)
		paidRanks := max(10, maxEntries/10)
		rest := paidRanks - len(largeFieldTop)
		each := largeFieldRest.Div(decimal.NewFromInt(int64(rest)))
		for i := 0; i < rest; i++ {
			shares = append(shares, each)
		}
	}

	table := make([]PrizeSlot, 0, len(shares))
	for i, share := range shares {
		table = append(table, PrizeSlot{
			Rank:   i + 1,
			Amount: pool.Mul(share).RoundFloor(moneyPlaces),
		})
	}
	return table, nil
}

// ValidatePrizeTable checks ranks are 1..N in order with non-negative amounts and
// that the table never pays out more than pool.
func ValidatePrizeTable(table []PrizeSlot, pool decimal.Decimal) error {
	total := decimal.Zero
	for i, slot := range table {
		if slot.Rank != i+1 {
			return fmt.Errorf("%w: slot %d has rank %d", ErrInvalidPrizeTable, i, slot.Rank)
		}
		if slot.Amount.IsNegative() {
			return fmt.Errorf("%w: negative amount at rank %d", ErrInvalidPrizeTable, slot.Rank)
		}
		total = total.Add(slot.Amount)
	}
	if total.GreaterThan(pool) {
		return fmt.Errorf("%w: total %s exceeds pool %s", ErrInvalidPrizeTable, total, pool)
	}
	return nil
}

// TotalPrize sums every slot of table.
func TotalPrize(table []PrizeSlot) decimal.Decimal {
	total := decimal.Zero
	for _, slot := range table {
		total = total.Add(slot.Amount)
	}
	return total
}

func percentages(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.New(v, -2))
	}
	return out
}
