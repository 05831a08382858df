package storage

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cantina-dev/cantina/internal/auth"
	"github.com/cantina-dev/cantina/internal/platform/httpx"
)

// Downloads are immutable (keys are uuids), a month of client caching is safe.
const downloadCacheControl = "public, max-age=2592000"

// maxUploadBytes caps one multipart upload.
const maxUploadBytes = 32 << 20

// UploadedFile maps an original filename onto its stored key.
type UploadedFile struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Handler serves the upload and download endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the storage endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/download/{name}", h.download)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser, auth.RequireAdmin)
		r.Post("/upload", h.upload)
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid multipart body")
		return
	}

	var stored []UploadedFile
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			key, err := h.service.Upload(r.Context(), kind, header.Filename, file, header.Size,
				header.Header.Get("Content-Type"))
			file.Close()
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			stored = append(stored, UploadedFile{Name: header.Filename, Key: key})
		}
	}

	h.logger.InfoContext(r.Context(), "files uploaded",
		slog.String("type", kind), slog.Int("count", len(stored)))
	httpx.JSON(w, http.StatusOK, stored)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	name := chi.URLParam(r, "name")

	object, contentType, err := h.service.Download(r.Context(), kind, name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer object.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", downloadCacheControl)
	if _, err := io.Copy(w, object); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted", slog.Any("error", err))
	}
}
