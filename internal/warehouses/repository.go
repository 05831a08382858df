package warehouses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

// Repository is the persistence port of the warehouse resource, including the
// nested warehouse-product stock rows.
type Repository interface {
	Find(ctx context.Context, id uuid.UUID) (Warehouse, error)
	List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Warehouse, uint64, error)
	Create(ctx context.Context, warehouse Warehouse) error
	Update(ctx context.Context, warehouse Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error

	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
	FindStock(ctx context.Context, warehouseID, productID uuid.UUID) (WarehouseProduct, error)
	ListStock(ctx context.Context, warehouseID uuid.UUID, filter query.Filter, sort query.Sort, page shared.Pagination) ([]WarehouseProduct, uint64, error)
	CreateStock(ctx context.Context, stock WarehouseProduct) error
	UpdateStock(ctx context.Context, stock WarehouseProduct) error
	DeleteStock(ctx context.Context, warehouseID, productID uuid.UUID) error
}

const (
	warehouseColumns = `id, name, disabled, created_at`
	stockColumns     = `warehouse_id, product_id, quantity, created_at`
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Find(ctx context.Context, id uuid.UUID) (Warehouse, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouse WHERE id = $1`, id)
	var w Warehouse
	err := row.Scan(&w.ID, &w.Name, &w.Disabled, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Warehouse{}, shared.ErrNotFound
	}
	if err != nil {
		return Warehouse{}, fmt.Errorf("warehouses: find: %w", err)
	}
	return w, nil
}

func (r *pgRepository) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) ([]Warehouse, uint64, error) {
	where, args := filter.SQL(1)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM warehouse`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("warehouses: count: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM warehouse%s%s LIMIT $%d OFFSET $%d`,
		warehouseColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("warehouses: list: %w", err)
	}
	defer rows.Close()

	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Disabled, &w.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("warehouses: scan: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("warehouses: list: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) Create(ctx context.Context, w Warehouse) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO warehouse (id, name, disabled, created_at) VALUES ($1, $2, $3, $4)`,
		w.ID, w.Name, w.Disabled, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("warehouses: create: %w", err)
	}
	return nil
}

func (r *pgRepository) Update(ctx context.Context, w Warehouse) error {
	tag, err := r.pool.Exec(ctx, `UPDATE warehouse SET name = $2, disabled = $3 WHERE id = $1`,
		w.ID, w.Name, w.Disabled)
	if err != nil {
		return fmt.Errorf("warehouses: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warehouse WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("warehouses: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("warehouses: product exists: %w", err)
	}
	return exists, nil
}

func (r *pgRepository) FindStock(ctx context.Context, warehouseID, productID uuid.UUID) (WarehouseProduct, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM warehouse_product WHERE warehouse_id = $1 AND product_id = $2`,
		warehouseID, productID)
	var stock WarehouseProduct
	err := row.Scan(&stock.WarehouseID, &stock.ProductID, &stock.Quantity, &stock.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return WarehouseProduct{}, shared.ErrNotFound
	}
	if err != nil {
		return WarehouseProduct{}, fmt.Errorf("warehouses: find stock: %w", err)
	}
	return stock, nil
}

func (r *pgRepository) ListStock(ctx context.Context, warehouseID uuid.UUID, filter query.Filter, sort query.Sort, page shared.Pagination) ([]WarehouseProduct, uint64, error) {
	filtered, args := filter.SQL(2)
	where := " WHERE warehouse_id = $1"
	if filtered != "" {
		where += " AND" + strings.TrimPrefix(filtered, " WHERE")
	}
	args = append([]any{warehouseID}, args...)

	var total uint64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM warehouse_product`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("warehouses: count stock: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM warehouse_product%s%s LIMIT $%d OFFSET $%d`,
		stockColumns, where, sort.SQL(), len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, sql, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("warehouses: list stock: %w", err)
	}
	defer rows.Close()

	var out []WarehouseProduct
	for rows.Next() {
		var stock WarehouseProduct
		if err := rows.Scan(&stock.WarehouseID, &stock.ProductID, &stock.Quantity, &stock.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("warehouses: scan stock: %w", err)
		}
		out = append(out, stock)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("warehouses: list stock: %w", err)
	}
	return out, total, nil
}

func (r *pgRepository) CreateStock(ctx context.Context, stock WarehouseProduct) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO warehouse_product (warehouse_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4)`,
		stock.WarehouseID, stock.ProductID, stock.Quantity, stock.CreatedAt)
	if err != nil {
		return fmt.Errorf("warehouses: create stock: %w", err)
	}
	return nil
}

func (r *pgRepository) UpdateStock(ctx context.Context, stock WarehouseProduct) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE warehouse_product SET quantity = $3 WHERE warehouse_id = $1 AND product_id = $2`,
		stock.WarehouseID, stock.ProductID, stock.Quantity)
	if err != nil {
		return fmt.Errorf("warehouses: update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) DeleteStock(ctx context.Context, warehouseID, productID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM warehouse_product WHERE warehouse_id = $1 AND product_id = $2`,
		warehouseID, productID)
	if err != nil {
		return fmt.Errorf("warehouses: delete stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
