package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/handler/agent"
	"github.com/auranova/uebridge/internal/handler/bridge"
	"github.com/auranova/uebridge/internal/handler/codegen"
	"github.com/auranova/uebridge/internal/handler/engine"
	"github.com/auranova/uebridge/internal/notifier"
	"github.com/auranova/uebridge/internal/relay"
	codegenService "github.com/auranova/uebridge/internal/service/codegen"
	"github.com/auranova/uebridge/internal/service/consciousness"
)

// Deps are the services exposed over HTTP. Collective and Generator may be nil.
type Deps struct {
	Registry        *relay.Registry
	Collective      *consciousness.Collective
	Notifier        *notifier.Notifier
	Generator       *codegenService.Generator
	MaxMessageBytes int64
	Logger          *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	var metrics *relay.Metrics
	if deps.Registry != nil {
		metrics = deps.Registry.Metrics()
		bridge.NewWebSocketHandler(deps.Registry, deps.MaxMessageBytes, logger).RegisterRoutes(r)
	}

	r.Route("/api", func(api chi.Router) {
		agent.New(deps.Collective).RegisterRoutes(api)
		engine.New(metrics, deps.Notifier, logger).RegisterRoutes(api)
		codegen.New(deps.Generator).RegisterRoutes(api)
	})

	return r
}
