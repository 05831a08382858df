package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Repository is the persistence port of the location resource.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Location, error)
	List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Location, uint64, error)
	Create(ctx context.Context, location Location) error
	Update(ctx context.Context, location Location) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const locationColumns = `id, name, category, disabled, created_at`

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Find(ctx context.Context, id uuid.UUID) (Location, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM location WHERE id = $1`, id)
	location, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, shared.ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("locations: find: %w", err)
	}
	return location, nil
}

func (r *pgRepository) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Location, uint64, error) {
	where, args := filter.SQL(1)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM location`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("locations: count: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM location%s%s LIMIT $%d OFFSET $%d`,
		locationColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("locations: list: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("locations: scan: %w", err)
		}
		out = append(out, location)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("locations: list: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) Create(ctx context.Context, location Location) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO location (id, name, category, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		location.ID, location.Name, location.Category, location.Disabled, location.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: location name %q already used", shared.ErrValidation, location.Name)
	}
	if err != nil {
		return fmt.Errorf("locations: create: %w", err)
	}
	return nil
}

func (r *pgRepository) Update(ctx context.Context, location Location) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE location SET name = $2, category = $3, disabled = $4 WHERE id = $1`,
		location.ID, location.Name, location.Category, location.Disabled)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: location name %q already used", shared.ErrValidation, location.Name)
	}
	if err != nil {
		return fmt.Errorf("locations: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM location WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("locations: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanLocation(row pgx.Row) (Location, error) {
	var location Location
	err := row.Scan(&location.ID, &location.Name, &location.Category, &location.Disabled, &location.CreatedAt)
	return location, err
}
