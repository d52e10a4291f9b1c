package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/model/envelope"
)

// ErrRegistryFrozen is returned by Register once a server has started using the registry.
var ErrRegistryFrozen = errors.New("relay: registry is frozen")

// HandlerFunc handles one request. Its result is encoded back to the peer unmodified.
type HandlerFunc func(ctx context.Context, req *envelope.Request) (any, error)

// Registry routes requests by command name: custom handlers first, then the
// built-in decision, dialogue and input handlers, then unknown_command.
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]HandlerFunc
	frozen     bool
	collective Collective
	metrics    *Metrics
	log        *zap.Logger
}

// NewRegistry creates a registry. collective may be nil when no decision source is attached.
func NewRegistry(collective Collective, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		handlers:   make(map[string]HandlerFunc),
		collective: collective,
		metrics:    &Metrics{},
		log:        logger,
	}
}

// Register binds a handler to a command name. A later registration for the
// same name replaces the earlier one.
func (r *Registry) Register(command string, h HandlerFunc) error {
	if command == "" {
		return fmt.Errorf("relay: command name is required")
	}
	if h == nil {
		return fmt.Errorf("relay: nil handler for %q", command)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.handlers[command] = h
	r.log.Info("registered handler", zap.String("command", command))
	return nil
}

// Metrics exposes the counters shared by every transport using this registry.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

func (r *Registry) freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// DispatchRaw dispatches an already decoded JSON object.
func (r *Registry) DispatchRaw(ctx context.Context, raw map[string]any) any {
	return r.Dispatch(ctx, envelope.RequestFromMap(raw))
}

// DispatchJSON decodes one JSON document and dispatches it. Anything that is
// not a JSON object is answered with invalid_request.
func (r *Registry) DispatchJSON(ctx context.Context, payload []byte) any {
	var message map[string]any
	if err := json.Unmarshal(payload, &message); err != nil || message == nil {
		r.metrics.incDecodeErrors()
		r.log.Warn("request is not a JSON object", zap.String("payload", preview(string(payload), 120)))
		return envelope.StatusResponse{Status: envelope.StatusInvalidRequest, Error: "request must be a JSON object"}
	}
	return r.DispatchRaw(ctx, message)
}

// Dispatch produces exactly one response for req. It never panics.
func (r *Registry) Dispatch(ctx context.Context, req *envelope.Request) (resp any) {
	r.metrics.incRequests()
	defer func() {
		if p := recover(); p != nil {
			r.metrics.incHandlerFailures()
			r.log.Error("handler panicked",
				zap.String("command", req.Command),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			resp = envelope.StatusResponse{Status: envelope.StatusError, Error: fmt.Sprintf("handler panic: %v", p)}
		}
	}()

	r.mu.RLock()
	h, ok := r.handlers[req.Command]
	r.mu.RUnlock()
	if ok {
		out, err := h(ctx, req)
		if err != nil {
			r.metrics.incHandlerFailures()
			r.log.Error("handler failed", zap.String("command", req.Command), zap.Error(err))
			return envelope.StatusResponse{Status: envelope.StatusError, Error: err.Error()}
		}
		return out
	}

	switch req.Kind() {
	case envelope.KindDecision:
		return r.handleDecision(ctx, req)
	case envelope.KindDialogue:
		return r.handleDialogue(ctx, req)
	case envelope.KindInput:
		return r.handleInput(ctx, req)
	default:
		r.metrics.incUnknownCommands()
		r.log.Warn("unknown command", zap.String("command", req.Command))
		return envelope.StatusResponse{Status: envelope.StatusUnknownCommand}
	}
}

func (r *Registry) lookup(name string) (Agent, bool) {
	if r.collective == nil {
		return nil, false
	}
	agent, ok := r.collective.Consciousness(name)
	if !ok || agent == nil {
		return nil, false
	}
	return agent, true
}
