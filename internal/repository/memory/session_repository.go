package memory

import (
	"context"
	"slices"
	"time"

	"student-risk-be/internal/entity"
	"student-risk-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	// purge expired sessions every 10 minutes
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Save stores a copy so later mutations by the caller do not leak into the store.
func (r *SessionRepository) Save(_ context.Context, session *entity.Session) error {
	r.cache.Set(session.Id, clone(session), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*entity.Session, error) {
	if x, found := r.cache.Get(sessionID); found {
		return clone(x.(*entity.Session)), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func clone(s *entity.Session) *entity.Session {
	c := *s
	c.Flashes = slices.Clone(s.Flashes)
	return &c
}
