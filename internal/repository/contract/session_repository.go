package contract

import (
	"context"

	"student-risk-be/internal/entity"
)

// SessionRepository stores sessions with a fixed TTL. Get returns nil, nil for unknown or
// expired ids.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, sessionID string) (*entity.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
