package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Repository is the persistence port of the user resource.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]User, uint64, error)
	SetPrivileges(ctx context.Context, id uuid.UUID, isAdmin, isBanned bool) error
	TouchAccess(ctx context.Context, id uuid.UUID) error
}

const userColumns = `id, email, name, username, is_admin, is_banned, created_at, last_access_time`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Find(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: find: %w", err)
	}
	return user, nil
}

func (r *pgRepository) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]User, uint64, error) {
	where, args := filter.SQL(1)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM "user"`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM "user"%s%s LIMIT $%d OFFSET $%d`,
		userColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) SetPrivileges(ctx context.Context, id uuid.UUID, isAdmin, isBanned bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE "user" SET is_admin = $2, is_banned = $3 WHERE id = $1`,
		id, isAdmin, isBanned)
	if err != nil {
		return fmt.Errorf("users: set privileges: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) TouchAccess(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE "user" SET last_access_time = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: touch access: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Username,
		&user.IsAdmin, &user.IsBanned, &user.CreatedAt, &user.LastAccessTime)
	return user, err
}
