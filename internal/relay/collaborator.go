package relay

import (
	"context"

	"github.com/auranova/uebridge/internal/model/envelope"
)

// Agent is the per-character decision source consulted by the built-in handlers.
type Agent interface {
	MakeDecision(ctx context.Context, options []any, situation map[string]any, extra map[string]any) (envelope.Decision, error)
	GenerateDialogue(ctx context.Context, situation map[string]any) (string, error)
	LearnFromConsequence(ctx context.Context, exp envelope.Experience) error
	CurrentMood() string
}

// Collective resolves agents by name.
type Collective interface {
	Consciousness(name string) (Agent, bool)
}

// CollectiveFunc adapts a lookup function to Collective.
type CollectiveFunc func(name string) (Agent, bool)

// Consciousness calls f(name).
func (f CollectiveFunc) Consciousness(name string) (Agent, bool) {
	return f(name)
}
