// Package synth renders a strategy definition into its textual emission
// targets: a structured document and two class-shaped source stubs.
//
// The stubs carry a fixed RSI/SMA entry template; entry conditions and
// indicators appear only in the structured document.
//
// Rendering is pure. When the tier may not export code the caller's definition
// is ignored and the fixed exemplar is rendered instead, followed by a marker
// line. Denial degrades to a sample; it never fails.
package synth

import (
	"fmt"
	"strings"

	"github.com/aitrader/strategy-studio/internal/core/domain"
)

// Target is one of the textual shapes a definition can be rendered into.
type Target string

const (
	TargetStructured Target = "structured"
	TargetScript     Target = "script"
	TargetCompiled   Target = "compiled"
)

// Targets lists every emission target in display order.
var Targets = []Target{TargetStructured, TargetScript, TargetCompiled}

var targetAliases = map[string]Target{
	"structured": TargetStructured,
	"json":       TargetStructured,
	"script":     TargetScript,
	"python":     TargetScript,
	"compiled":   TargetCompiled,
	"java":       TargetCompiled,
}

// ParseTarget accepts a target name or its language alias (json, python, java).
func ParseTarget(s string) (Target, error) {
	if t, ok := targetAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownTarget, s)
}

const (
	sampleMarker       = "Sign up to generate custom strategies!"
	slashCommentPrefix = "// "
	hashCommentPrefix  = "# "
)

// Artifact is one rendering. Sample is true when the exemplar was substituted.
// Seq is the mutation sequence number the rendering was produced for; it is
// zero for direct, unsequenced calls.
type Artifact struct {
	Target Target `json:"target"`
	Text   string `json:"text"`
	Sample bool   `json:"sample"`
	Seq    uint64 `json:"seq"`
}

// Synthesizer maps a definition to an emission target.
type Synthesizer struct{}

func New() *Synthesizer {
	return &Synthesizer{}
}

// Render produces target from def for tier. It fails on an unknown target or
// when a value cannot be encoded.
func (s *Synthesizer) Render(tier domain.AccessTier, def domain.StrategyDefinition, target Target) (Artifact, error) {
	sample := domain.Authorize(tier, domain.CapExportCode) != nil
	if sample {
		def = domain.ExemplarStrategy()
	}

	var text string
	switch target {
	case TargetStructured:
		var err error
		if text, err = renderStructured(def); err != nil {
			return Artifact{}, fmt.Errorf("render: %w", err)
		}
	case TargetScript:
		text = renderScript(def)
	case TargetCompiled:
		text = renderCompiled(def)
	default:
		return Artifact{}, fmt.Errorf("render: %w: %q", domain.ErrUnknownTarget, target)
	}

	if sample {
		text += "\n\n" + markerLine(target)
	}
	return Artifact{Target: target, Text: text, Sample: sample}, nil
}

// RenderAll renders every target for the same definition snapshot.
func (s *Synthesizer) RenderAll(tier domain.AccessTier, def domain.StrategyDefinition) (map[Target]Artifact, error) {
	out := make(map[Target]Artifact, len(Targets))
	for _, t := range Targets {
		a, err := s.Render(tier, def, t)
		if err != nil {
			return nil, err
		}
		out[t] = a
	}
	return out, nil
}

func markerLine(t Target) string {
	if t == TargetScript {
		return hashCommentPrefix + sampleMarker
	}
	return slashCommentPrefix + sampleMarker
}
