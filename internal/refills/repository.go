package refills

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

// Repository is the persistence port of the refill resource.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Refill, error)
	List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Refill, uint64, error)
	Create(ctx context.Context, refill Refill) error
	Update(ctx context.Context, refill Refill) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const refillColumns = `id, name, amount_euro, amount_credit, hidden, disabled, created_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Find(ctx context.Context, id uuid.UUID) (Refill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+refillColumns+` FROM refill WHERE id = $1`, id)
	refill, err := scanRefill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Refill{}, shared.ErrNotFound
	}
	if err != nil {
		return Refill{}, fmt.Errorf("refills: find: %w", err)
	}
	return refill, nil
}

func (r *pgRepository) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Refill, uint64, error) {
	where, args := filter.SQL(1)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM refill`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("refills: count: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM refill%s%s LIMIT $%d OFFSET $%d`,
		refillColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("refills: list: %w", err)
	}
	defer rows.Close()

	var out []Refill
	for rows.Next() {
		refill, err := scanRefill(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("refills: scan: %w", err)
		}
		out = append(out, refill)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("refills: list: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) Create(ctx context.Context, refill Refill) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refill (id, name, amount_euro, amount_credit, hidden, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		refill.ID, refill.Name, refill.AmountEuro, refill.AmountCredit,
		refill.Hidden, refill.Disabled, refill.CreatedAt)
	if err != nil {
		return fmt.Errorf("refills: create: %w", err)
	}
	return nil
}

func (r *pgRepository) Update(ctx context.Context, refill Refill) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE refill SET name = $2, amount_euro = $3, amount_credit = $4, hidden = $5, disabled = $6
		WHERE id = $1`,
		refill.ID, refill.Name, refill.AmountEuro, refill.AmountCredit, refill.Hidden, refill.Disabled)
	if err != nil {
		return fmt.Errorf("refills: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refill WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("refills: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanRefill(row pgx.Row) (Refill, error) {
	var refill Refill
	err := row.Scan(&refill.ID, &refill.Name, &refill.AmountEuro, &refill.AmountCredit,
		&refill.Hidden, &refill.Disabled, &refill.CreatedAt)
	return refill, err
}
