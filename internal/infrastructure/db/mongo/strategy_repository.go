package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

const collectionStrategies = "saved_strategies"

// StrategyRepository is the persist channel for saved definitions.
type StrategyRepository struct {
	col *mongo.Collection
}

func NewStrategyRepository(db *mongo.Database) *StrategyRepository {
	return &StrategyRepository{col: db.Collection(collectionStrategies)}
}

// Save inserts a snapshot. Every save is a new document.
func (r *StrategyRepository) Save(ctx context.Context, s *domain.SavedStrategy) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert strategy: %w", err)
	}
	return nil
}

// ListByOwner returns up to limit snapshots of ownerID, newest first.
func (r *StrategyRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.SavedStrategy, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "saved_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.SavedStrategy, 0, limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode strategies: %w", err)
	}
	return items, nil
}

// EnsureIndexes creates the owner/date index used by ListByOwner.
func (r *StrategyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "saved_at", Value: -1}},
	})
	return err
}
