package codegen

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/auranova/uebridge/internal/service/codegen"
	"github.com/auranova/uebridge/pkg/utils"
)

// Handler 代码生成的 HTTP 处理器
type Handler struct {
	generator *codegen.Generator
}

// New 创建处理器。generator 为 nil 时所有请求返回 503。
func New(generator *codegen.Generator) *Handler {
	return &Handler{generator: generator}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/codegen/character", h.handleCharacter)
	r.Post("/codegen/system", h.handleSystem)
}

type characterRequest struct {
	Name   string         `json:"name"`
	Traits map[string]any `json:"traits"`
}

type systemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type generateResponse struct {
	Name      string        `json:"name"`
	Files     codegen.Files `json:"files"`
	OutputDir string        `json:"outputDir,omitempty"`
}

func (h *Handler) handleCharacter(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req characterRequest
	if err := utils.DecodeBody(w, r, &req); err != nil {
		_ = utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		_ = utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Traits == nil {
		req.Traits = map[string]any{}
	}

	h.respond(w, name, h.generator.CharacterClass(r.Context(), name, req.Traits))
}

func (h *Handler) handleSystem(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req systemRequest
	if err := utils.DecodeBody(w, r, &req); err != nil {
		_ = utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Description) == "" {
		_ = utils.RespondError(w, http.StatusBadRequest, "name and description are required")
		return
	}

	h.respond(w, name, h.generator.GameLogic(r.Context(), name, req.Description))
}

func (h *Handler) available(w http.ResponseWriter) bool {
	if h.generator == nil {
		_ = utils.RespondError(w, http.StatusServiceUnavailable, "code generation requires AI_ENABLED")
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, name string, files codegen.Files) {
	if files.Empty() {
		_ = utils.RespondError(w, http.StatusBadGateway, "code generation failed")
		return
	}
	_ = utils.RespondJSON(w, http.StatusOK, generateResponse{
		Name:      name,
		Files:     files,
		OutputDir: h.generator.OutputDir(),
	})
}
