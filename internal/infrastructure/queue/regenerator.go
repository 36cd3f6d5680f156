package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aitrader/strategy-studio/internal/api/metrics"
	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/core/ports"
	"github.com/aitrader/strategy-studio/internal/synth"
)

const defaultWorkers = 4

// TierSource reads a session's tier when a rendering runs.
type TierSource func(ctx context.Context, sessionID string) domain.AccessTier

type renderKey struct {
	sessionID string
	target    synth.Target
}

type renderRequest struct {
	key renderKey
	seq uint64
	def domain.StrategyDefinition
}

// worker owns every key that hashes to it, so a key is never rendered twice
// concurrently. pending holds at most one request per key: the newest.
type worker struct {
	id        int
	mu        sync.Mutex
	pending   map[renderKey]renderRequest
	delivered map[renderKey]uint64
	wake      chan struct{}
}

// Regenerator re-renders every emission target after a mutation.
//
// Requests for the same session and target are coalesced: only the newest
// pending one is rendered. A result is delivered only if its sequence number
// is greater than the last one delivered for that key, so the display never
// sees an older snapshot after a newer one.
type Regenerator struct {
	workers []*worker
	synth   *synth.Synthesizer
	tierOf  TierSource
	display ports.Display
	log     zerolog.Logger
}

// NewRegenerator creates a Regenerator with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRegenerator(numWorkers int, s *synth.Synthesizer, tierOf TierSource, display ports.Display, log zerolog.Logger) *Regenerator {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Regenerator{
		workers: make([]*worker, numWorkers),
		synth:   s,
		tierOf:  tierOf,
		display: display,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = &worker{
			id:        i,
			pending:   make(map[renderKey]renderRequest),
			delivered: make(map[renderKey]uint64),
			wake:      make(chan struct{}, 1),
		}
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Regenerator) Start(ctx context.Context) {
	for _, w := range r.workers {
		go r.runWorker(ctx, w)
	}
}

// Regenerate queues every target of def. It never blocks.
func (r *Regenerator) Regenerate(_ context.Context, sessionID string, seq uint64, def domain.StrategyDefinition) {
	for _, target := range synth.Targets {
		key := renderKey{sessionID: sessionID, target: target}
		r.enqueue(r.workers[r.shardIndex(key)], renderRequest{key: key, seq: seq, def: def})
	}
}

// Forget drops pending work and delivery bookkeeping for a session.
func (r *Regenerator) Forget(sessionID string) {
	for _, w := range r.workers {
		w.mu.Lock()
		for key := range w.pending {
			if key.sessionID == sessionID {
				delete(w.pending, key)
			}
		}
		for key := range w.delivered {
			if key.sessionID == sessionID {
				delete(w.delivered, key)
			}
		}
		w.mu.Unlock()
	}
}

func (r *Regenerator) enqueue(w *worker, req renderRequest) {
	w.mu.Lock()
	if prev, ok := w.pending[req.key]; ok {
		if prev.seq >= req.seq {
			w.mu.Unlock()
			return
		}
		metrics.RegenerateSupersededTotal.WithLabelValues(string(req.key.target)).Inc()
	}
	w.pending[req.key] = req
	metrics.RegeneratePending.WithLabelValues(strconv.Itoa(w.id)).Set(float64(len(w.pending)))
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// shardIndex maps a session and target deterministically to a worker index.
func (r *Regenerator) shardIndex(key renderKey) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.sessionID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key.target))
	return int(h.Sum32() % uint32(len(r.workers)))
}

func (r *Regenerator) runWorker(ctx context.Context, w *worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
			for _, req := range r.drain(w) {
				if ctx.Err() != nil {
					return
				}
				r.render(ctx, w, req)
			}
		}
	}
}

func (r *Regenerator) drain(w *worker) []renderRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := make([]renderRequest, 0, len(w.pending))
	for key, req := range w.pending {
		batch = append(batch, req)
		delete(w.pending, key)
	}
	metrics.RegeneratePending.WithLabelValues(strconv.Itoa(w.id)).Set(0)
	return batch
}

func (r *Regenerator) render(ctx context.Context, w *worker, req renderRequest) {
	start := time.Now()
	tier := r.tierOf(ctx, req.key.sessionID)

	a, err := r.synth.Render(tier, req.def, req.key.target)
	if err != nil {
		r.log.Error().Err(err).
			Str("session", req.key.sessionID).
			Str("target", string(req.key.target)).
			Int("worker_id", w.id).
			Msg("regenerate failed")
		return
	}
	a.Seq = req.seq

	w.mu.Lock()
	if req.seq <= w.delivered[req.key] {
		w.mu.Unlock()
		return
	}
	w.delivered[req.key] = req.seq
	w.mu.Unlock()

	r.display.Deliver(ctx, req.key.sessionID, a)
	metrics.RendersTotal.WithLabelValues(string(a.Target), metrics.RenderMode(a.Sample)).Inc()
	metrics.RenderDuration.WithLabelValues(string(a.Target)).Observe(time.Since(start).Seconds())
}
