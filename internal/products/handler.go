package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/auth"
	"github.com/cantina-dev/cantina/internal/platform/httpx"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Handler serves the product endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	product, err := h.service.Get(r.Context(), id, auth.IsAdmin(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
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
	h.logMutation(r, "product created", id)
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
	h.logMutation(r, "product edited", id)
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
	h.logMutation(r, "product deleted", id)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) logMutation(r *http.Request, msg string, id uuid.UUID) {
	actor, _ := auth.UserFromContext(r.Context())
	h.logger.InfoContext(r.Context(), msg,
		slog.String("product_id", id.String()),
		slog.String("actor", actor.Username))
}
