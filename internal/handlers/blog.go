package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bitacora-blog/apiserver/internal/services"
	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/bitacora-blog/apiserver/internal/validation"
	"github.com/bitacora-blog/apiserver/types"
	"github.com/go-chi/chi/v5"
)

var (
	blogWriters = types.NewRoleSet(types.RoleWriter, types.RoleAdmin)
	blogReaders = types.NewRoleSet(types.RoleWriter, types.RoleAdmin, types.RoleReader)
	blogEditors = types.NewRoleSet(types.RoleAdmin, types.RoleWriter)
)

// BlogHandler provides HTTP handlers for blogs.
type BlogHandler struct {
	blogService *services.BlogService
	logger      *slog.Logger
}

// NewBlogHandler constructs a BlogHandler.
func NewBlogHandler(blogService *services.BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{blogService: blogService, logger: logger}
}

// BlogRouter registers blog routes on the given router. Mutations validate
// the body before checking the caller.
func BlogRouter(r chi.Router, handler *BlogHandler, guard *Guard) {
	r.With(Pipeline(Validate(validation.BlogCreate), guard.Authorize(blogWriters))).Post("/create", handler.Create)
	r.With(Pipeline(guard.Authorize(blogReaders))).Get("/list", handler.List)
	r.With(Pipeline(guard.Authorize(blogReaders))).Get("/find/{id}", handler.Find)
	r.With(Pipeline(Validate(validation.BlogCreate), guard.Authorize(blogEditors))).Put("/update/{id}", handler.Update)
	r.With(Pipeline(guard.Authorize(blogEditors))).Delete("/delete/{id}", handler.Delete)
}

func blogInput(body map[string]any) types.BlogInput {
	return types.BlogInput{
		Title:    validation.Value(body, "title"),
		Subtitle: validation.Value(body, "subtitle"),
		Text:     validation.Value(body, "text"),
	}
}

// Create stores a blog authored by the caller.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, loginRequired())
		return
	}

	blog, err := h.blogService.Create(r.Context(), claims.Subject, blogInput(bodyFromContext(r.Context())))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create blog failed", slog.Any("error", err))
		writeError(w, internal())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": msgBlogCreated,
		"id":      blog.ID,
	})
}

// List returns every blog that is not soft-deleted.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list blogs failed", slog.Any("error", err))
		writeError(w, internal())
		return
	}
	if blogs == nil {
		blogs = []types.Blog{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": blogs})
}

// Find returns one blog.
func (h *BlogHandler) Find(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	blog, err := h.blogService.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, "find blog failed", id, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"blog": blog})
}

// Update replaces the title, subtitle and text of a blog.
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, err := IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, loginRequired())
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.blogService.Update(r.Context(), claims.Subject, id, blogInput(bodyFromContext(r.Context()))); err != nil {
		h.writeLookupError(w, r, "update blog failed", id, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": msgBlogUpdated})
}

// Delete soft-deletes a blog.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, err := IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, loginRequired())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.blogService.Delete(r.Context(), claims.Subject, id); err != nil {
		h.writeLookupError(w, r, "delete blog failed", id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogHandler) writeLookupError(w http.ResponseWriter, r *http.Request, msg, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, notFound(msgBlogNotFound))
		return
	}
	h.logger.ErrorContext(r.Context(), msg, slog.String("id", id), slog.Any("error", err))
	writeError(w, internal())
}
