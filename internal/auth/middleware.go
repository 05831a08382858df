package auth

import (
	"net/http"

	"github.com/cantina-dev/cantina/internal/platform/httpx"
	"github.com/cantina-dev/cantina/internal/shared"
)

// CurrentUser resolves the session cookie and attaches the user to the
// request context. Requests without a valid session pass through anonymous.
func CurrentUser(sessions *SessionStore, repo Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.ReadCookie(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := repo.Find(r.Context(), id)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireUser rejects anonymous and banned callers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		if user.IsBanned {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone but active administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
