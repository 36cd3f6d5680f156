package ports

import (
	"context"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// SessionService owns tier transitions. Every operation is total and idempotent.
type SessionService interface {
	SignIn(ctx context.Context, sessionID, email, password string) (*domain.Session, error)
	Register(ctx context.Context, sessionID, name, email, password string) (*domain.Session, error)
	ContinueAsGuest(ctx context.Context, sessionID string) *domain.Session
	SignOut(ctx context.Context, sessionID string) *domain.Session
	Upgrade(ctx context.Context, sessionID string) (*domain.Session, error)
	// Current reads the tier snapshot for sessionID; unknown ids are anonymous.
	Current(ctx context.Context, sessionID string) *domain.Session
	IssueToken(s *domain.Session) (string, error)
	ParseToken(token string) (string, error)
}
