package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/ports"
	"github.com/aitrader/strategy-studio/internal/synth"
)

const (
	msgSuggestionApplied = "AI suggestion applied to strategy"
	msgSaved             = "Strategy saved successfully: %s"
	msgBacktestStarted   = "Backtest started for: %s"
	msgBacktestDone      = "Backtest completed: Annual Return %.1f%%, Sharpe Ratio %.2f, Max Drawdown -%.1f%%"
	msgReset             = "Strategy reset to defaults"
	msgCopied            = "Code copied to clipboard"
	msgCleared           = "Messages cleared"

	untitledStrategy    = "Untitled Strategy"
	defaultSavedListCap = 50
)

// SessionSource returns the session snapshot at the moment of the call.
type SessionSource func(ctx context.Context) *domain.Session

// Sequence hands out mutation numbers. Workspaces sharing one Sequence never
// reuse a number, even after a session's workspace is replaced.
type Sequence struct {
	n atomic.Uint64
}

func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// WorkspaceDeps are the collaborators shared by every workspace.
type WorkspaceDeps struct {
	Synth       *synth.Synthesizer
	Strategies  ports.StrategyRepository
	Exporter    ports.Exporter
	Regenerator ports.Regenerator
	NewBoard    func() ports.MessageBoard
	Sequence    *Sequence
	Rand        *rand.Rand
	Log         zerolog.Logger
}

// Workspace owns the single active definition of one session. Every gate check
// reads the session's tier at the moment of the check.
type Workspace struct {
	sessionID string
	session   SessionSource
	deps      WorkspaceDeps
	messages  ports.MessageBoard

	mu  sync.Mutex
	def domain.StrategyDefinition
	seq uint64
}

func NewWorkspace(ctx context.Context, sessionID string, session SessionSource, deps WorkspaceDeps) *Workspace {
	if deps.Sequence == nil {
		deps.Sequence = &Sequence{}
	}
	w := &Workspace{
		sessionID: sessionID,
		session:   session,
		deps:      deps,
		messages:  deps.NewBoard(),
	}
	if domain.HasCapability(session(ctx).Tier, domain.CapEditDefinition) {
		w.def = domain.DefaultStrategy()
	} else {
		w.def = domain.ExemplarStrategy()
	}
	return w
}

func (w *Workspace) SessionID() string { return w.sessionID }

// Definition returns a copy of the active definition.
func (w *Workspace) Definition() domain.StrategyDefinition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.def.Clone()
}

// Seq is the sequence number of the latest mutation.
func (w *Workspace) Seq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

// Authorize reports whether the session may use c right now.
func (w *Workspace) Authorize(ctx context.Context, c domain.Capability) error {
	_, err := w.authorize(ctx, c)
	return err
}

func (w *Workspace) authorize(ctx context.Context, c domain.Capability) (*domain.Session, error) {
	sess := w.session(ctx)
	return sess, domain.Authorize(sess.Tier, c)
}

// Update applies mutate to a copy of the active definition and swaps it in
// only when every setter succeeded.
func (w *Workspace) Update(ctx context.Context, mutate func(*domain.StrategyDefinition) error) (domain.StrategyDefinition, error) {
	if _, err := w.authorize(ctx, domain.CapEditDefinition); err != nil {
		return domain.StrategyDefinition{}, err
	}

	w.mu.Lock()
	next := w.def.Clone()
	if err := mutate(&next); err != nil {
		w.mu.Unlock()
		return domain.StrategyDefinition{}, fmt.Errorf("update strategy: %w", err)
	}
	w.def = next
	out := w.commitLocked(ctx)
	w.mu.Unlock()
	return out, nil
}

// ReplaceWith atomically swaps in a proposed definition. A denied proposal is
// discarded without touching the active definition or the message log.
func (w *Workspace) ReplaceWith(ctx context.Context, proposal domain.StrategyDefinition) (domain.StrategyDefinition, error) {
	if _, err := w.authorize(ctx, domain.CapEditDefinition); err != nil {
		return domain.StrategyDefinition{}, err
	}
	if err := proposal.Validate(); err != nil {
		return domain.StrategyDefinition{}, fmt.Errorf("replace strategy: %w", err)
	}

	w.mu.Lock()
	w.def = proposal.Clone()
	out := w.commitLocked(ctx)
	w.mu.Unlock()

	w.messages.Notify(ctx, domain.LevelAI, msgSuggestionApplied)
	return out, nil
}

// Reset restores the default definition.
func (w *Workspace) Reset(ctx context.Context) (domain.StrategyDefinition, error) {
	if _, err := w.authorize(ctx, domain.CapEditDefinition); err != nil {
		return domain.StrategyDefinition{}, err
	}

	w.mu.Lock()
	w.def = domain.DefaultStrategy()
	out := w.commitLocked(ctx)
	w.mu.Unlock()

	w.messages.Notify(ctx, domain.LevelInfo, msgReset)
	return out, nil
}

// Refresh re-runs the regenerate pass without changing the definition, for
// example after the tier changed.
func (w *Workspace) Refresh(ctx context.Context) {
	w.mu.Lock()
	w.commitLocked(ctx)
	w.mu.Unlock()
}

func (w *Workspace) commitLocked(ctx context.Context) domain.StrategyDefinition {
	w.seq = w.deps.Sequence.Next()
	out := w.def.Clone()
	if w.deps.Regenerator != nil {
		w.deps.Regenerator.Regenerate(ctx, w.sessionID, w.seq, out.Clone())
	}
	return out
}

// Save persists a snapshot of the active definition.
func (w *Workspace) Save(ctx context.Context) (*domain.SavedStrategy, error) {
	sess, err := w.authorize(ctx, domain.CapSaveDefinition)
	if err != nil {
		return nil, err
	}

	saved := &domain.SavedStrategy{
		ID:         uuid.NewString(),
		OwnerID:    ownerID(sess),
		Definition: w.Definition(),
		SavedAt:    time.Now().UTC(),
	}
	if err := w.deps.Strategies.Save(ctx, saved); err != nil {
		w.deps.Log.Error().Err(err).Str("session", w.sessionID).Msg("save strategy failed")
		w.messages.Notify(ctx, domain.LevelError, "Failed to save strategy")
		return nil, fmt.Errorf("save strategy: %w", err)
	}

	w.messages.Notify(ctx, domain.LevelSuccess, fmt.Sprintf(msgSaved, displayName(saved.Definition.Name)))
	return saved, nil
}

// SavedStrategies lists the session owner's saved definitions, newest first.
func (w *Workspace) SavedStrategies(ctx context.Context, limit int) ([]*domain.SavedStrategy, error) {
	sess, err := w.authorize(ctx, domain.CapSaveDefinition)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultSavedListCap {
		limit = defaultSavedListCap
	}
	items, err := w.deps.Strategies.ListByOwner(ctx, ownerID(sess), limit)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	return items, nil
}

// RunBacktest produces simulated metrics; no market data is involved.
func (w *Workspace) RunBacktest(ctx context.Context) (*domain.BacktestResult, error) {
	if _, err := w.authorize(ctx, domain.CapRunBacktest); err != nil {
		return nil, err
	}

	name := displayName(w.Definition().Name)
	w.messages.Notify(ctx, domain.LevelInfo, fmt.Sprintf(msgBacktestStarted, name))

	res := &domain.BacktestResult{
		Strategy:     name,
		AnnualReturn: round1(5 + w.randFloat()*35),
		SharpeRatio:  round2(0.5 + w.randFloat()*2),
		MaxDrawdown:  round1(3 + w.randFloat()*17),
		WinRate:      round1(40 + w.randFloat()*30),
		TotalTrades:  50 + w.randIntN(450),
		StartedAt:    time.Now().UTC(),
	}

	w.messages.Notify(ctx, domain.LevelSuccess, fmt.Sprintf(msgBacktestDone, res.AnnualReturn, res.SharpeRatio, res.MaxDrawdown))
	return res, nil
}

// Render synthesizes target from the active definition using the current tier.
func (w *Workspace) Render(ctx context.Context, target synth.Target) (synth.Artifact, error) {
	tier := w.session(ctx).Tier

	w.mu.Lock()
	def, seq := w.def.Clone(), w.seq
	w.mu.Unlock()

	a, err := w.deps.Synth.Render(tier, def, target)
	if err != nil {
		return synth.Artifact{}, err
	}
	a.Seq = seq
	return a, nil
}

// Export copies the rendering of target to the clipboard. On denial the
// exporter is never called and the *domain.DeniedError is returned so the
// caller can choose to ignore it.
func (w *Workspace) Export(ctx context.Context, target synth.Target) (synth.Artifact, error) {
	if _, err := w.authorize(ctx, domain.CapExportCode); err != nil {
		return synth.Artifact{}, err
	}

	a, err := w.Render(ctx, target)
	if err != nil {
		return synth.Artifact{}, err
	}
	if err := w.deps.Exporter.Copy(ctx, w.sessionID, a.Text); err != nil {
		return synth.Artifact{}, fmt.Errorf("export: %w", err)
	}

	w.messages.Notify(ctx, domain.LevelSuccess, msgCopied)
	return a, nil
}

func (w *Workspace) Messages() []domain.Message {
	return w.messages.List()
}

// ClearMessages empties the log and records that it did.
func (w *Workspace) ClearMessages(ctx context.Context) error {
	if _, err := w.authorize(ctx, domain.CapClearMessages); err != nil {
		return err
	}
	w.messages.Clear()
	w.messages.Notify(ctx, domain.LevelInfo, msgCleared)
	return nil
}

func (w *Workspace) randFloat() float64 {
	if w.deps.Rand != nil {
		return w.deps.Rand.Float64()
	}
	return rand.Float64()
}

func (w *Workspace) randIntN(n int) int {
	if w.deps.Rand != nil {
		return w.deps.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func ownerID(sess *domain.Session) string {
	if sess.Account != nil && sess.Account.ID != "" {
		return sess.Account.ID
	}
	return sess.ID
}

func displayName(name string) string {
	if name == "" {
		return untitledStrategy
	}
	return name
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
