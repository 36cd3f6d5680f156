// Package metrics defines and registers all custom Prometheus metrics for the
// strategy studio API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; the /metrics endpoint exposes them alongside the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studio"

// ── Tier metrics ──────────────────────────────────────────────────────────────

// TierTransitionsTotal counts applied tier transitions.
// Labels:
//   - event: "sign_in", "continue_as_guest", "upgrade", "sign_out"
//   - from, to: the tiers on either side of the transition
var TierTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tier_transitions_total",
		Help:      "Total number of tier transitions, by event and tiers.",
	},
	[]string{"event", "from", "to"},
)

// CapabilityDenialsTotal counts gate denials surfaced to HTTP callers.
// Label:
//   - capability: the missing capability (e.g. "export_code")
var CapabilityDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capability_denials_total",
		Help:      "Total number of requests denied by the capability gate.",
	},
	[]string{"capability"},
)

// ── Synthesis metrics ─────────────────────────────────────────────────────────

// RendersTotal counts renderings.
// Labels:
//   - target: "structured", "script", "compiled"
//   - mode: "live" or "sample" (exemplar substituted)
var RendersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Total number of renderings, by target and mode.",
	},
	[]string{"target", "mode"},
)

// RenderDuration measures one background regeneration from dequeue to delivery.
var RenderDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Duration of a background rendering from dequeue to delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"target"},
)

// RegenerateSupersededTotal counts pending requests replaced by a newer one
// before a worker picked them up.
var RegenerateSupersededTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "regenerate_superseded_total",
		Help:      "Total number of regenerate requests superseded before rendering.",
	},
	[]string{"target"},
)

// RegeneratePending tracks requests waiting in each regenerator worker.
// Label:
//   - worker_id: numeric worker index
var RegeneratePending = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "regenerate_pending",
		Help:      "Current number of pending regenerate requests per worker.",
	},
	[]string{"worker_id"},
)

// ── Workspace metrics ─────────────────────────────────────────────────────────

// StrategiesSavedTotal counts successful saves.
var StrategiesSavedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategies_saved_total",
		Help:      "Total number of strategy definitions saved.",
	},
)

// ExportsTotal counts code placed on the clipboard.
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of successful exports, by target.",
	},
	[]string{"target"},
)

// BacktestsTotal counts simulated backtest runs.
var BacktestsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtests_total",
		Help:      "Total number of simulated backtests run.",
	},
)

// RenderMode returns the mode label for a rendering.
func RenderMode(sample bool) string {
	if sample {
		return "sample"
	}
	return "live"
}
