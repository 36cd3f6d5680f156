package ports

import (
	"context"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/synth"
)

// Notifier is the notify channel the workspace pushes status strings to.
type Notifier interface {
	Notify(ctx context.Context, level domain.MessageLevel, text string)
}

// MessageBoard is a Notifier whose messages can be listed and cleared.
type MessageBoard interface {
	Notifier
	List() []domain.Message
	Clear()
}

// Exporter places rendered text outside the system (the shared clipboard).
type Exporter interface {
	Copy(ctx context.Context, sessionID, text string) error
}

// Display receives regenerated artifacts.
type Display interface {
	Deliver(ctx context.Context, sessionID string, a synth.Artifact)
}

// Regenerator is the async boundary that re-renders every target after a
// mutation. The tier is read when the rendering runs, not when it is requested.
type Regenerator interface {
	Regenerate(ctx context.Context, sessionID string, seq uint64, def domain.StrategyDefinition)
}
