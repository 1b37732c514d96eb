package memory

import (
	"context"
	"time"

	"source-intel-be/pkg/synthesis"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps synthesis sessions in process memory. Every save
// refreshes the TTL, so a session expires after ttl of inactivity.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	// Purge expired sessions at a third of the TTL.
	return &SessionRepository{
		cache: cache.New(ttl, ttl/3),
	}
}

// Get returns a copy so callers can never mutate the stored session in place.
func (r *SessionRepository) Get(_ context.Context, sessionID string) (*synthesis.Session, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*synthesis.Session).Clone(), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Save(_ context.Context, session *synthesis.Session) error {
	r.cache.Set(session.ID, session.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
