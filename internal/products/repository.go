package products

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

// Repository is the persistence port of the product resource.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Product, error)
	List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Product, uint64, error)
	Create(ctx context.Context, product Product) error
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const productColumns = `id, image, name, display_order, sell_price, sell_price_currency, unit,
	purchasable, hidden, disabled, max_quantity_per_order, created_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Find(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM product WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("products: find: %w", err)
	}
	return product, nil
}

func (r *pgRepository) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Product, uint64, error) {
	where, args := filter.SQL(1)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM product%s%s LIMIT $%d OFFSET $%d`,
		productColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("products: scan: %w", err)
		}
		out = append(out, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO product (
			id, image, name, display_order, sell_price, sell_price_currency, unit,
			purchasable, hidden, disabled, max_quantity_per_order, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Image, p.Name, p.DisplayOrder, p.SellPrice, p.SellPriceCurrency, p.Unit,
		p.Purchasable, p.Hidden, p.Disabled, p.MaxQuantityPerOrder, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("products: create: %w", err)
	}
	return nil
}

func (r *pgRepository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE product SET
			image = $2, name = $3, display_order = $4, sell_price = $5,
			sell_price_currency = $6, unit = $7, purchasable = $8, hidden = $9,
			disabled = $10, max_quantity_per_order = $11
		WHERE id = $1`,
		p.ID, p.Image, p.Name, p.DisplayOrder, p.SellPrice,
		p.SellPriceCurrency, p.Unit, p.Purchasable, p.Hidden,
		p.Disabled, p.MaxQuantityPerOrder)
	if err != nil {
		return fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Image, &p.Name, &p.DisplayOrder, &p.SellPrice, &p.SellPriceCurrency,
		&p.Unit, &p.Purchasable, &p.Hidden, &p.Disabled, &p.MaxQuantityPerOrder, &p.CreatedAt)
	return p, err
}
