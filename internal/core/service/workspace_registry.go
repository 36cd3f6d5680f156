package service

import (
	"context"
	"sync"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// SessionReader reads the current tier snapshot of a session.
type SessionReader interface {
	Current(ctx context.Context, sessionID string) *domain.Session
}

// WorkspaceRegistry keeps one workspace per session id. All of its workspaces
// draw sequence numbers from one Sequence.
type WorkspaceRegistry struct {
	sessions SessionReader
	deps     WorkspaceDeps

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewWorkspaceRegistry(sessions SessionReader, deps WorkspaceDeps) *WorkspaceRegistry {
	if deps.Sequence == nil {
		deps.Sequence = &Sequence{}
	}
	return &WorkspaceRegistry{
		sessions: sessions,
		deps:     deps,
		items:    make(map[string]*Workspace),
	}
}

// For returns the workspace of sessionID, creating it on first use. Requests
// without a session get a throwaway workspace that is never registered.
func (r *WorkspaceRegistry) For(ctx context.Context, sessionID string) *Workspace {
	if sessionID == "" {
		return NewWorkspace(ctx, "", r.sourceFor(""), r.deps)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.items[sessionID]; ok {
		return w
	}
	w := NewWorkspace(ctx, sessionID, r.sourceFor(sessionID), r.deps)
	r.items[sessionID] = w
	return w
}

// Lookup returns the registered workspace without creating one.
func (r *WorkspaceRegistry) Lookup(sessionID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[sessionID]
	return w, ok
}

func (r *WorkspaceRegistry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, sessionID)
}

func (r *WorkspaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// HandleTransition is a TransitionListener. An upgrade keeps the workspace and
// re-renders it; any other transition starts the session over with a
// workspace seeded for the new tier.
func (r *WorkspaceRegistry) HandleTransition(ctx context.Context, _, to *domain.Session, ev domain.TierEvent) {
	if ev == domain.EventUpgrade {
		if w, ok := r.Lookup(to.ID); ok {
			w.Refresh(ctx)
		}
		return
	}
	r.Forget(to.ID)
}

func (r *WorkspaceRegistry) sourceFor(sessionID string) SessionSource {
	return func(ctx context.Context) *domain.Session {
		return r.sessions.Current(ctx, sessionID)
	}
}
