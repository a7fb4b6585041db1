package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
)

// Locker hands out single-writer scopes. Lock blocks until the key is held or
// ctx is done; the returned func releases it and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// NewLocalLocker serializes within one process only.
func NewLocalLocker() Locker {
	return resilience.NewKeyedMutex()
}

func matchLockKey(matchID string) string {
	return "match:" + matchID
}

func contestLockKey(contestID string) string {
	return "contest:" + contestID
}
