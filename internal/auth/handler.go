package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/httpx"
)

// uuid namespace for issuers whose subject is not itself a uuid.
var subjectNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

type exchanger interface {
	AuthURL(state, nonce string) string
	Exchange(ctx context.Context, code, nonce string) (*Claims, error)
}

// Handler serves the login, callback and logout endpoints.
type Handler struct {
	provider    exchanger
	sessions    *SessionStore
	repo        Repository
	frontendURL string
	logger      *slog.Logger
}

// NewHandler wires the auth endpoints.
func NewHandler(provider exchanger, sessions *SessionStore, repo Repository, frontendURL string, logger *slog.Logger) *Handler {
	return &Handler{
		provider:    provider,
		sessions:    sessions,
		repo:        repo,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// MountRoutes registers the auth endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.Login)
	r.Get("/login/callback", h.Callback)
	r.Get("/logout", h.Logout)
}

// Login starts the authorization code flow.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomHex(16)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	nonce, err := randomHex(16)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.sessions.StashState(r.Context(), state, nonce); err != nil {
		httpx.RespondError(w, err)
		return
	}
	http.Redirect(w, r, h.provider.AuthURL(state, nonce), http.StatusFound)
}

// Callback finishes the code flow, upserts the user and opens a session.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	nonce, err := h.sessions.PopState(ctx, state)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	claims, err := h.provider.Exchange(ctx, code, nonce)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	user := User{
		ID:             subjectID(claims.Subject),
		Email:          claims.Email,
		Name:           claims.Name,
		Username:       claims.PreferredUsername,
		LastAccessTime: time.Now().UTC(),
	}
	stored, err := h.repo.Upsert(ctx, user)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, err := h.sessions.Create(ctx, stored.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.sessions.SetCookie(w, token)
	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", stored.ID.String()))
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Logout destroys the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := h.sessions.ReadCookie(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// subjectID keeps uuid subjects as-is and derives a stable uuid otherwise.
func subjectID(sub string) uuid.UUID {
	if id, err := uuid.Parse(sub); err == nil {
		return id
	}
	return uuid.NewSHA1(subjectNamespace, []byte(sub))
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
