// Package display keeps the most recent regenerated artifact per session and
// target for the output endpoints.
package display

import (
	"context"
	"sync"

	"github.com/aitrader/strategy-studio/internal/synth"
)

type key struct {
	sessionID string
	target    synth.Target
}

// Latest is an in-process ports.Display.
type Latest struct {
	mu    sync.RWMutex
	items map[key]synth.Artifact
}

func NewLatest() *Latest {
	return &Latest{items: make(map[key]synth.Artifact)}
}

// Deliver stores a unless a newer artifact is already held for the same key.
func (l *Latest) Deliver(_ context.Context, sessionID string, a synth.Artifact) {
	k := key{sessionID: sessionID, target: a.Target}
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.items[k]; ok && cur.Seq > a.Seq {
		return
	}
	l.items[k] = a
}

func (l *Latest) Get(sessionID string, target synth.Target) (synth.Artifact, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.items[key{sessionID: sessionID, target: target}]
	return a, ok
}

// Forget drops every artifact of a session.
func (l *Latest) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.items {
		if k.sessionID == sessionID {
			delete(l.items, k)
		}
	}
}
