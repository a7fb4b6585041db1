package redis

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/id"
)

var ErrLockTimeout = errors.New("redis: timed out waiting for lock")

// releaseLua deletes the key only while it still holds the caller's token.
const releaseLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// refreshLua extends the key's TTL only while it still holds the caller's token.
const refreshLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

type LockerConfig struct {
	Prefix          string
	TTL             time.Duration
	RefreshInterval time.Duration
	RetryInterval   time.Duration
	WaitTimeout     time.Duration
}

// Locker is a blocking mutual-exclusion lock shared by every API instance.
// A live holder keeps extending the key every RefreshInterval; TTL bounds how
// long a crashed holder can keep it.
type Locker struct {
	rdb     *redis.Client
	release *redis.Script
	refresh *redis.Script
	tokens  id.Generator
	cfg     LockerConfig
}

func NewLocker(c *Client, tokens id.Generator, cfg LockerConfig) *Locker {
	if tokens == nil {
		tokens = id.NewUUIDGenerator()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.RefreshInterval <= 0 || cfg.RefreshInterval >= cfg.TTL {
		cfg.RefreshInterval = cfg.TTL / 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * time.Millisecond
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 10 * time.Second
	}
	return &Locker{
		rdb:     c.Underlying(),
		release: redis.NewScript(releaseLua),
		refresh: redis.NewScript(refreshLua),
		tokens:  tokens,
		cfg:     cfg,
	}
}

// Lock polls SET NX until it wins, ctx ends or WaitTimeout passes. The returned
// release func is safe to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token, err := l.tokens.NewID()
	if err != nil {
		return nil, errors.Wrap(err, "redis: lock token")
	}
	lockKey := l.cfg.Prefix + key

	deadline := time.NewTimer(l.cfg.WaitTimeout)
	defer deadline.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "redis: acquire lock %s", key)
		}
		if ok {
			stop := make(chan struct{})
			done := make(chan struct{})
			go l.keepAlive(lockKey, token, stop, done)
			return l.releaseFunc(lockKey, token, stop, done), nil
		}

		retry := time.NewTimer(l.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			retry.Stop()
			return nil, ctx.Err()
		case <-deadline.C:
			retry.Stop()
			return nil, errors.Wrapf(ErrLockTimeout, "key=%s", key)
		case <-retry.C:
		}
	}
}

// keepAlive extends the key until stop closes. It gives up once the key no
// longer holds token, since the lock has then passed to someone else.
func (l *Locker) keepAlive(lockKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.RefreshInterval)
		extended, err := l.refresh.Run(ctx, l.rdb, []string{lockKey}, token, l.cfg.TTL.Milliseconds()).Int64()
		cancel()
		if err == nil && extended == 0 {
			return
		}
	}
}

func (l *Locker) releaseFunc(lockKey, token string, stop chan<- struct{}, done <-chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// The caller's context may already be cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = l.release.Run(ctx, l.rdb, []string{lockKey}, token).Err()
		})
	}
}
