package agent

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/auranova/uebridge/internal/service/consciousness"
	"github.com/auranova/uebridge/pkg/utils"
)

const (
	listMemory    = 5
	defaultMemory = 20
)

// Handler agent 状态的 HTTP 处理器
type Handler struct {
	collective *consciousness.Collective
}

// New 创建 agent 处理器。collective 为 nil 时返回空列表。
func New(collective *consciousness.Collective) *Handler {
	return &Handler{collective: collective}
}

// RegisterRoutes 注册 agent 相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/agents", h.handleList)
	r.Get("/agents/{name}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	snapshots := make([]consciousness.Snapshot, 0)
	if h.collective != nil {
		for _, name := range h.collective.Names() {
			if snap, ok := h.collective.Snapshot(name, listMemory); ok {
				snapshots = append(snapshots, snap)
			}
		}
	}
	_ = utils.RespondJSON(w, http.StatusOK, snapshots)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	recent := defaultMemory
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = utils.RespondError(w, http.StatusBadRequest, "recent must be a non-negative integer")
			return
		}
		recent = n
	}

	if h.collective == nil {
		_ = utils.RespondError(w, http.StatusNotFound, "agent not found")
		return
	}
	snap, ok := h.collective.Snapshot(name, recent)
	if !ok {
		_ = utils.RespondError(w, http.StatusNotFound, "agent not found")
		return
	}
	_ = utils.RespondJSON(w, http.StatusOK, snap)
}
