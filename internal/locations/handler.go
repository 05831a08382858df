package locations

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/auth"
	"github.com/cantina-dev/cantina/internal/platform/httpx"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Handler serves the location endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the location endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser, auth.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.edit)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	location, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, location)
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
	resp, err := h.service.List(r.Context(), filter, sort, shared.ParsePagination(values), auth.IsAdmin(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "location created", slog.String("location_id", id.String()))
	httpx.JSON(w, http.StatusCreated, CreateResponse{ID: id.String()})
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
	h.logger.InfoContext(r.Context(), "location edited", slog.String("location_id", id.String()))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "location deleted", slog.String("location_id", id.String()))
	w.WriteHeader(http.StatusOK)
}
