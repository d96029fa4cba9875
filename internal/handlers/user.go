package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bitacora-blog/apiserver/internal/auth"
	"github.com/bitacora-blog/apiserver/internal/metrics"
	"github.com/bitacora-blog/apiserver/internal/services"
	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/bitacora-blog/apiserver/internal/validation"
	"github.com/bitacora-blog/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides account and session endpoints.
type UserHandler struct {
	userService *services.UserService
	tokens      TokenIssuer
	recorder    AuthRecorder
	logger      *slog.Logger
}

// NewUserHandler constructs a UserHandler. recorder may be nil.
func NewUserHandler(userService *services.UserService, tokens TokenIssuer, recorder AuthRecorder, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
		recorder:    recorder,
		logger:      logger,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, handler *UserHandler, guard *Guard) {
	r.With(Pipeline(Validate(validation.UserCreate))).Post("/create", handler.Create)
	r.With(Pipeline(Validate(validation.Login))).Post("/login", handler.Login)
	r.With(Pipeline(guard.Authorize(types.NewRoleSet(types.RoleAdmin)))).Get("/list", handler.List)
	r.With(Pipeline(guard.Authorize(types.AnyRole()))).Get("/me", handler.Me)
	r.With(Pipeline(guard.Authorize(types.NewRoleSet(types.RoleAdmin)))).Delete("/delete/{id}", handler.Delete)
}

type createdUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Create registers a new account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	body := bodyFromContext(r.Context())

	role, err := types.ParseRole(validation.Value(body, "role"))
	if err != nil {
		writeError(w, validationFailed(validation.Errors{{Field: "role", Message: err.Error()}}))
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Name:     validation.Value(body, "name"),
		Lastname: validation.Value(body, "lastname"),
		Email:    validation.Value(body, "email"),
		Password: validation.Value(body, "password"),
		Role:     role,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create user failed", slog.Any("error", err))
		writeError(w, internal())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": msgUserCreated,
		"user":    createdUser{ID: user.ID, Name: user.Name},
	})
}

// Login exchanges credentials for a session token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	body := bodyFromContext(r.Context())

	user, err := h.userService.Authenticate(r.Context(), validation.Value(body, "email"), validation.Value(body, "password"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.record(metrics.LoginRejected)
			writeError(w, badCredentials())
			return
		}
		h.logger.ErrorContext(r.Context(), "authenticate failed", slog.Any("error", err))
		writeError(w, internal())
		return
	}

	token, err := h.tokens.Issue(auth.ClaimsFor(user))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "issue token failed", slog.String("user_id", user.ID), slog.Any("error", err))
		writeError(w, internal())
		return
	}

	h.record(metrics.LoginSucceeded)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msgLoggedIn,
		"token":   token,
	})
}

// List returns every account, including soft-deleted ones.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list users failed", slog.Any("error", err))
		writeError(w, internal())
		return
	}
	if users == nil {
		users = []types.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": users})
}

// Me returns the caller's account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, loginRequired())
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, invalidToken())
			return
		}
		h.logger.ErrorContext(r.Context(), "load user failed", slog.String("user_id", claims.Subject), slog.Any("error", err))
		writeError(w, internal())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Delete soft-deletes an account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, notFound(msgUserNotFound))
			return
		}
		h.logger.ErrorContext(r.Context(), "delete user failed", slog.String("id", id), slog.Any("error", err))
		writeError(w, internal())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordAuth(outcome)
	}
}
