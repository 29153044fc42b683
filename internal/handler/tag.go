package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippet-api/internal/model"
)

type TagService interface {
	Create(ctx context.Context, in model.NewTag) (*model.Tag, error)
	Get(ctx context.Context, id string) (*model.Tag, error)
	Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error)
	Delete(ctx context.Context, id string) error
}

// TagHandler serves /api/tags.
type TagHandler struct {
	tags   TagService
	logger *slog.Logger
}

func NewTagHandler(tags TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// HTTP: POST /api/tags
// REQUEST BODY: {"name": "go"}
func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NewTag
	if !readJSON(w, r, &in, h.logger) {
		return
	}

	tag, err := h.tags.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// HTTP: GET /api/tags/{id}
func (h *TagHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HTTP: PUT /api/tags/{id}
func (h *TagHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.TagPatch
	if !readJSON(w, r, &patch, h.logger) {
		return
	}

	tag, err := h.tags.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// HTTP: DELETE /api/tags/{id}
func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Tag deleted successfully")
}
