package ports

import (
	"context"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// StrategyRepository is the persist channel for saved definitions.
type StrategyRepository interface {
	Save(ctx context.Context, s *domain.SavedStrategy) error
	// ListByOwner returns the owner's saved strategies, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.SavedStrategy, error)
}
