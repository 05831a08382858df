package warehouses

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

type stockKey struct {
	warehouse uuid.UUID
	product   uuid.UUID
}

type fakeRepo struct {
	warehouses map[uuid.UUID]Warehouse
	products   map[uuid.UUID]bool
	stock      map[stockKey]WarehouseProduct
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		warehouses: map[uuid.UUID]Warehouse{},
		products:   map[uuid.UUID]bool{},
		stock:      map[stockKey]WarehouseProduct{},
	}
}

func (f *fakeRepo) Find(_ context.Context, id uuid.UUID) (Warehouse, error) {
	warehouse, ok := f.warehouses[id]
	if !ok {
		return Warehouse{}, shared.ErrNotFound
	}
	return warehouse, nil
}

func (f *fakeRepo) List(_ context.Context, _ query.Filter, _ query.Sort, _ shared.Pagination) ([]Warehouse, uint64, error) {
	var out []Warehouse
	for _, warehouse := range f.warehouses {
		out = append(out, warehouse)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeRepo) Create(_ context.Context, warehouse Warehouse) error {
	f.warehouses[warehouse.ID] = warehouse
	return nil
}

func (f *fakeRepo) Update(_ context.Context, warehouse Warehouse) error {
	if _, ok := f.warehouses[warehouse.ID]; !ok {
		return shared.ErrNotFound
	}
	f.warehouses[warehouse.ID] = warehouse
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.warehouses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.warehouses, id)
	return nil
}

func (f *fakeRepo) ProductExists(_ context.Context, productID uuid.UUID) (bool, error) {
	return f.products[productID], nil
}

func (f *fakeRepo) FindStock(_ context.Context, warehouseID, productID uuid.UUID) (WarehouseProduct, error) {
	stock, ok := f.stock[stockKey{warehouseID, productID}]
	if !ok {
		return WarehouseProduct{}, shared.ErrNotFound
	}
	return stock, nil
}

func (f *fakeRepo) ListStock(_ context.Context, warehouseID uuid.UUID, _ query.Filter, _ query.Sort, _ shared.Pagination) ([]WarehouseProduct, uint64, error) {
	var out []WarehouseProduct
	for key, stock := range f.stock {
		if key.warehouse == warehouseID {
			out = append(out, stock)
		}
	}
	return out, uint64(len(out)), nil
}

func (f *fakeRepo) CreateStock(_ context.Context, stock WarehouseProduct) error {
	f.stock[stockKey{stock.WarehouseID, stock.ProductID}] = stock
	return nil
}

func (f *fakeRepo) UpdateStock(_ context.Context, stock WarehouseProduct) error {
	key := stockKey{stock.WarehouseID, stock.ProductID}
	existing, ok := f.stock[key]
	if !ok {
		return shared.ErrNotFound
	}
	existing.Quantity = stock.Quantity
	f.stock[key] = existing
	return nil
}

func (f *fakeRepo) DeleteStock(_ context.Context, warehouseID, productID uuid.UUID) error {
	key := stockKey{warehouseID, productID}
	if _, ok := f.stock[key]; !ok {
		return shared.ErrNotFound
	}
	delete(f.stock, key)
	return nil
}

func seedWarehouse(t *testing.T, repo *fakeRepo) uuid.UUID {
	t.Helper()
	id := uuid.New()
	repo.warehouses[id] = Warehouse{ID: id, Name: "cellar", CreatedAt: time.Now()}
	return id
}

func TestAddStockChecksBothSides(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	warehouseID := seedWarehouse(t, repo)
	productID := uuid.New()

	// Unknown product.
	err := svc.AddStock(ctx, warehouseID, productID, StockRequest{Quantity: 5})
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Unknown warehouse.
	repo.products[productID] = true
	err = svc.AddStock(ctx, uuid.New(), productID, StockRequest{Quantity: 5})
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.AddStock(ctx, warehouseID, productID, StockRequest{Quantity: 5}))
	stock, err := repo.FindStock(ctx, warehouseID, productID)
	require.NoError(t, err)
	require.EqualValues(t, 5, stock.Quantity)
}

func TestAddStockRejectsNegativeQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())

	warehouseID := seedWarehouse(t, repo)
	productID := uuid.New()
	repo.products[productID] = true

	err := svc.AddStock(context.Background(), warehouseID, productID, StockRequest{Quantity: -1})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetStockUpdatesQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	warehouseID := seedWarehouse(t, repo)
	productID := uuid.New()
	repo.products[productID] = true

	require.NoError(t, svc.AddStock(ctx, warehouseID, productID, StockRequest{Quantity: 5}))
	require.NoError(t, svc.SetStock(ctx, warehouseID, productID, StockRequest{Quantity: 0}))

	stock, err := repo.FindStock(ctx, warehouseID, productID)
	require.NoError(t, err)
	require.EqualValues(t, 0, stock.Quantity)
}

func TestListStockRequiresWarehouse(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, slog.Default())

	filter, err := ProductDef.ParseFilter(nil)
	require.NoError(t, err)

	_, err = svc.ListStock(context.Background(), uuid.New(), filter, query.Sort{}, shared.Pagination{PerPage: 20})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRemoveStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	warehouseID := seedWarehouse(t, repo)
	productID := uuid.New()
	repo.products[productID] = true

	require.NoError(t, svc.AddStock(ctx, warehouseID, productID, StockRequest{Quantity: 3}))
	require.NoError(t, svc.RemoveStock(ctx, warehouseID, productID))
	require.ErrorIs(t, svc.RemoveStock(ctx, warehouseID, productID), shared.ErrNotFound)
}
