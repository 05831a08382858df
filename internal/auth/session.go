package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cantina-dev/cantina/internal/shared"
)

const (
	sessionPrefix = "session:"
	statePrefix   = "login-state:"
	stateTTL      = 10 * time.Minute
)

// SessionStore keeps opaque session tokens and short-lived login state in Redis.
type SessionStore struct {
	client *redis.Client
	cookie string
	ttl    time.Duration
	secure bool
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, cookie string, ttl time.Duration, secure bool) *SessionStore {
	return &SessionStore{client: client, cookie: cookie, ttl: ttl, secure: secure}
}

// Create mints a new session token for the user.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionPrefix+token, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store session: %w", err)
	}
	return token, nil
}

// Resolve maps a session token back to a user id.
func (s *SessionStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.client.Get(ctx, sessionPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth: resolve session: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return id, nil
}

// Delete discards a session token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionPrefix+token).Err()
}

// StashState records the state/nonce pair of an in-flight login.
func (s *SessionStore) StashState(ctx context.Context, state, nonce string) error {
	if err := s.client.Set(ctx, statePrefix+state, nonce, stateTTL).Err(); err != nil {
		return fmt.Errorf("auth: stash state: %w", err)
	}
	return nil
}

// PopState consumes the state and returns the nonce it was stashed with.
func (s *SessionStore) PopState(ctx context.Context, state string) (string, error) {
	nonce, err := s.client.GetDel(ctx, statePrefix+state).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("%w: unknown login state", shared.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("auth: pop state: %w", err)
	}
	return nonce, nil
}

// SetCookie writes the session cookie.
func (s *SessionStore) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie deletes the session cookie.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie extracts the session token from a request, "" when absent.
func (s *SessionStore) ReadCookie(r *http.Request) string {
	cookie, err := r.Cookie(s.cookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
