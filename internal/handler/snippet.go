package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippet-api/internal/model"
)

// SnippetService is the subset of service.SnippetService the handler calls.
type SnippetService interface {
	Create(ctx context.Context, in model.NewSnippet) (*model.Snippet, error)
	Get(ctx context.Context, id string) (*model.Snippet, error)
	Update(ctx context.Context, id string, patch model.SnippetPatch) (*model.Snippet, error)
	Delete(ctx context.Context, id string) error
	AddTag(ctx context.Context, snippetID, tagID string) error
	RemoveTag(ctx context.Context, snippetID, tagID string) error
	Tags(ctx context.Context, snippetID string) ([]model.Tag, error)
}

// SnippetHandler serves /api/snippets and the snippet/tag link routes.
type SnippetHandler struct {
	snippets SnippetService
	logger   *slog.Logger
}

func NewSnippetHandler(snippets SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleCreate stores a new snippet.
//
// HTTP: POST /api/snippets
// REQUEST BODY: {"userId": "...", "title": "...", "content": "...",
// "language": "go", "description": "...", "isPublic": true}
//
// language, description and isPublic are optional; isPublic defaults to true.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NewSnippet
	if !readJSON(w, r, &in, h.logger) {
		return
	}

	snippet, err := h.snippets.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGet returns one snippet.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate changes the fields present in the body. updatedAt always
// moves forward.
//
// HTTP: PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.SnippetPatch
	if !readJSON(w, r, &patch, h.logger) {
		return
	}

	snippet, err := h.snippets.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
//
// HTTP: DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.snippets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Code snippet deleted successfully")
}

// HandleListTags returns the tags linked to a snippet, ordered by name.
//
// HTTP: GET /api/snippets/{id}/tags
func (h *SnippetHandler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.snippets.Tags(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleAddTag links a tag to a snippet.
//
// HTTP: POST /api/snippets/{snippetId}/tags/{tagId}
func (h *SnippetHandler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	err := h.snippets.AddTag(r.Context(), chi.URLParam(r, "snippetId"), chi.URLParam(r, "tagId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Tag added to code snippet successfully")
}

// HandleRemoveTag unlinks a tag from a snippet. Removing a link that does
// not exist still succeeds.
//
// HTTP: DELETE /api/snippets/{snippetId}/tags/{tagId}
func (h *SnippetHandler) HandleRemoveTag(w http.ResponseWriter, r *http.Request) {
	err := h.snippets.RemoveTag(r.Context(), chi.URLParam(r, "snippetId"), chi.URLParam(r, "tagId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Tag removed from code snippet successfully")
}
