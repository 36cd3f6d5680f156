// Package notify holds the per-workspace message log the core pushes status
// strings to.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

const defaultCapacity = 200

// MessageLog is a bounded, ordered ports.MessageBoard. When full, the oldest
// message is dropped.
type MessageLog struct {
	mu       sync.Mutex
	items    []domain.Message
	capacity int
	now      func() time.Time
	log      zerolog.Logger
}

func NewMessageLog(capacity int, log zerolog.Logger) *MessageLog {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MessageLog{capacity: capacity, now: time.Now, log: log}
}

func (m *MessageLog) Notify(_ context.Context, level domain.MessageLevel, text string) {
	msg := domain.Message{Level: level, Text: text, Timestamp: m.now().UTC()}

	m.mu.Lock()
	if len(m.items) == m.capacity {
		m.items = append(m.items[:0], m.items[1:]...)
	}
	m.items = append(m.items, msg)
	m.mu.Unlock()

	m.log.Debug().Str("level", string(level)).Msg(text)
}

// List returns the messages oldest first.
func (m *MessageLog) List() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.items...)
}

func (m *MessageLog) Clear() {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
}
