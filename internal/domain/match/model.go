package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusAbandoned Status = "abandoned"
)

type Format string

const (
	FormatT10  Format = "T10"
	FormatT20  Format = "T20"
	FormatODI  Format = "ODI"
	FormatTest Format = "TEST"
)

var ErrUnknownFormat = errors.New("unknown match format")

// ParseFormat accepts any case, e.g. "t20" or "Test".
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
	return f, nil
}

// MaxOvers is the innings limit for the format; zero means unlimited.
func (f Format) MaxOvers() int {
	switch f {
	case FormatT10:
		return 10
	case FormatT20:
		return 20
	case FormatODI:
		return 50
	default:
		return 0
	}
}

func (f Format) Valid() bool {
	switch f {
	case FormatT10, FormatT20, FormatODI, FormatTest:
		return true
	default:
		return false
	}
}

// Match is owned by the scheduling side; this service only reads it and advances Status.
type Match struct {
	ID          string
	HomeSide    string
	AwaySide    string
	Format      Format
	ScheduledAt time.Time
	Status      Status
	Result      string
	PlayerIDs   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPlayer reports whether playerID is in the registered pool.
// Matches without a registered pool accept any player.
func (m Match) HasPlayer(playerID string) bool {
	if len(m.PlayerIDs) == 0 {
		return true
	}
	for _, id := range m.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}
