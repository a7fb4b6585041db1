package fantasyteam

import (
	"errors"
	"fmt"
)

const RosterSize = 11

var (
	ErrInvalidRosterSize       = errors.New("invalid roster size")
	ErrDuplicatePlayerInRoster = errors.New("duplicate player in roster")
	ErrCaptainNotInRoster      = errors.New("captain is not in roster")
	ErrViceCaptainNotInRoster  = errors.New("vice-captain is not in roster")
	ErrCaptainIsViceCaptain    = errors.New("captain and vice-captain must differ")
)

// ValidateRoster checks the structural rules of a submitted team. Player
// eligibility against the match pool is checked by the caller.
func ValidateRoster(playerIDs []string, captainID, viceCaptainID string) error {
	if len(playerIDs) != RosterSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidRosterSize, RosterSize, len(playerIDs))
	}

	seen := make(map[string]struct{}, len(playerIDs))
	for _, playerID := range playerIDs {
		if playerID == "" {
			return fmt.Errorf("player id is required")
		}
		if _, exists := seen[playerID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayerInRoster, playerID)
		}
		seen[playerID] = struct{}{}
	}

	if captainID == viceCaptainID {
		return ErrCaptainIsViceCaptain
	}
	if _, ok := seen[captainID]; !ok {
		return fmt.Errorf("%w: %s", ErrCaptainNotInRoster, captainID)
	}
	if _, ok := seen[viceCaptainID]; !ok {
		return fmt.Errorf("%w: %s", ErrViceCaptainNotInRoster, viceCaptainID)
	}
	return nil
}
