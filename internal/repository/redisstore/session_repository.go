// Package redisstore keeps synthesis sessions in Redis so several API
// instances can serve the same session. Updates to one session are
// serialized across instances with a SET NX lock held from load to save.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"source-intel-be/pkg/synthesis"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "synthesis:session:"
	lockPrefix = "synthesis:lock:"

	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 5 * time.Second
	lockRetry       = 20 * time.Millisecond
)

// ErrSessionLocked is returned when another instance holds the session for longer than the lock wait.
var ErrSessionLocked = fmt.Errorf("%w: locked by another instance", synthesis.ErrSessionBusy)

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type SessionRepository struct {
	rdb      *redis.Client
	ttl      time.Duration
	lockTTL  time.Duration
	lockWait time.Duration
}

type Option func(*SessionRepository)

// WithLockTiming overrides how long a lock lives and how long a caller waits for it.
func WithLockTiming(ttl, wait time.Duration) Option {
	return func(r *SessionRepository) {
		if ttl > 0 {
			r.lockTTL = ttl
		}
		if wait > 0 {
			r.lockWait = wait
		}
	}
}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration, opts ...Option) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	r := &SessionRepository{rdb: rdb, ttl: ttl, lockTTL: defaultLockTTL, lockWait: defaultLockWait}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*synthesis.Session, bool, error) {
	raw, err := r.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}

	var s synthesis.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &s, true, nil
}

// Save writes the session and refreshes its expiry.
func (r *SessionRepository) Save(ctx context.Context, session *synthesis.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := r.rdb.Set(ctx, key(session.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, key(sessionID)).Err()
}

// LockSession takes the cross-instance lock for sessionID, polling until the
// lock wait runs out or ctx is done. The lock expires on its own after the
// lock TTL if the holder dies.
func (r *SessionRepository) LockSession(ctx context.Context, sessionID string) (func(), error) {
	lockKey := lockPrefix + sessionID
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, r.lockWait)
	defer cancel()

	ticker := time.NewTicker(lockRetry)
	defer ticker.Stop()

	for {
		ok, err := r.rdb.SetNX(waitCtx, lockKey, token, r.lockTTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("redis lock session: %w", err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, r.rdb, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrSessionLocked, sessionID)
		case <-ticker.C:
		}
	}
}
