package ports

import (
	"context"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// AccountRepository persists registered accounts. Guests are never stored.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	SetPro(ctx context.Context, id string, pro bool) error
}
