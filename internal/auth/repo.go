package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cantina-dev/cantina/internal/shared"
)

// Repository resolves and maintains user identities for the login flow.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (User, error)
	Upsert(ctx context.Context, user User) (User, error)
	TouchAccess(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a postgres backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT id, email, name, username, is_admin, is_banned, created_at, last_access_time FROM "user" WHERE id = $1`
	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Username, &u.IsAdmin, &u.IsBanned, &u.CreatedAt, &u.LastAccessTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: find user: %w", err)
	}
	return u, nil
}

// Upsert creates the user row on first login and refreshes the identity
// claims afterwards. Privilege flags are never touched here.
func (r *repository) Upsert(ctx context.Context, user User) (User, error) {
	query := `INSERT INTO "user" (id, email, name, username, is_admin, is_banned, created_at, last_access_time)
		VALUES ($1, $2, $3, $4, false, false, $5, $5)
		ON CONFLICT (id) DO UPDATE SET email = $2, name = $3, username = $4, last_access_time = $5
		RETURNING id, email, name, username, is_admin, is_banned, created_at, last_access_time`
	now := time.Now()
	var u User
	err := r.db.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.Username, now).
		Scan(&u.ID, &u.Email, &u.Name, &u.Username, &u.IsAdmin, &u.IsBanned, &u.CreatedAt, &u.LastAccessTime)
	if err != nil {
		return User{}, fmt.Errorf("auth: upsert user: %w", err)
	}
	return u, nil
}

func (r *repository) TouchAccess(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE "user" SET last_access_time = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("auth: touch access: %w", err)
	}
	return nil
}
