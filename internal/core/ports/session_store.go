package ports

import (
	"context"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// SessionStore holds the single-session state slot keyed by session id.
// Load returns domain.ErrSessionNotFound when nothing is stored.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Load(ctx context.Context, id string) (*domain.Session, error)
	Clear(ctx context.Context, id string) error
}
