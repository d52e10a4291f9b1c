// Package engine exposes relay counters and manual pushes to the engine.
package engine

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/notifier"
	"github.com/auranova/uebridge/internal/relay"
	"github.com/auranova/uebridge/pkg/utils"
)

// Handler serves /metrics and /push.
type Handler struct {
	metrics  *relay.Metrics
	notifier *notifier.Notifier
	log      *zap.Logger
}

func New(metrics *relay.Metrics, n *notifier.Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{metrics: metrics, notifier: n, log: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.handleMetrics)
	r.Post("/push", h.handlePush)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if h.metrics == nil {
		_ = utils.RespondJSON(w, http.StatusOK, map[string]int64{})
		return
	}
	_ = utils.RespondJSON(w, http.StatusOK, h.metrics.Snapshot())
}

var errForeignHost = errors.New("host must be the configured engine host")

type pushRequest struct {
	Host    string         `json:"host"`
	Port    int            `json:"port"`
	Message map[string]any `json:"message"`
}

func (h *Handler) handlePush(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		_ = utils.RespondError(w, http.StatusServiceUnavailable, "engine notifier unavailable")
		return
	}

	var req pushRequest
	if err := utils.DecodeBody(w, r, &req); err != nil {
		_ = utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Message) == 0 {
		_ = utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Port < 0 || req.Port > 65535 {
		_ = utils.RespondError(w, http.StatusBadRequest, "port out of range")
		return
	}

	addr, err := h.target(req.Host, req.Port)
	if err != nil {
		_ = utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	go h.notifier.SendTo(context.WithoutCancel(r.Context()), addr, req.Message)

	_ = utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "addr": addr})
}

// target fills host and port from the notifier's default address. Only the
// configured engine host may be addressed; the port may be overridden.
func (h *Handler) target(host string, port int) (string, error) {
	defHost, defPort, err := net.SplitHostPort(h.notifier.Addr())
	if err != nil {
		defHost, defPort = h.notifier.Addr(), ""
	}
	if host != "" && !strings.EqualFold(host, defHost) {
		return "", errForeignHost
	}
	p := defPort
	if port > 0 {
		p = strconv.Itoa(port)
	}
	return net.JoinHostPort(defHost, p), nil
}
