package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/auth"
	"github.com/cantina-dev/cantina/internal/platform/httpx"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Handler serves the user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the user endpoints. /me is open so the frontend can
// probe the session; everything else is admin only. The router also exposes
// Me at the top level.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.Me)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser, auth.RequireAdmin)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.edit)
	})
}

// Me answers 204 for anonymous callers so the frontend can probe the
// session. Banned users still get their own row.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	user, err := h.service.Me(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter, err := Def.ParseFilter(values)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sort, err := Def.ParseSort(values)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp, err := h.service.List(r.Context(), filter, sort, shared.ParsePagination(values))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req EditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Edit(r.Context(), id, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())
	h.logger.InfoContext(r.Context(), "user privileges changed",
		slog.String("user_id", id.String()),
		slog.String("actor", actor.Username))
	w.WriteHeader(http.StatusOK)
}
