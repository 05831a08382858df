package warehouses

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/cache"
	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

const (
	cachePrefix  = "warehouse"
	cacheListSet = "warehouses:keys"
)

// CreateRequest is the payload of POST /warehouse.
type CreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=32"`
	Disabled bool   `json:"disabled"`
}

// EditRequest is the payload of PUT /warehouse/{id}. Nil fields are untouched.
type EditRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	Disabled *bool   `json:"disabled,omitempty"`
}

// StockRequest is the payload of POST and PUT on /warehouse/{id}/product/{pid}.
type StockRequest struct {
	Quantity int64 `json:"quantity" validate:"gte=0"`
}

// CreateResponse returns the id of a freshly created warehouse.
type CreateResponse struct {
	ID string `json:"id"`
}

// ListResponse is the paginated warehouse envelope.
type ListResponse struct {
	CurrentPage uint64      `json:"current_page"`
	TotalPage   uint64      `json:"total_page"`
	Warehouses  []Warehouse `json:"warehouses"`
}

// StockListResponse is the paginated envelope of one warehouse's stock rows.
type StockListResponse struct {
	CurrentPage uint64             `json:"current_page"`
	TotalPage   uint64             `json:"total_page"`
	Products    []WarehouseProduct `json:"products"`
}

// Service holds warehouse business logic.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Get returns one warehouse.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Warehouse, error) {
	var warehouse Warehouse
	err := s.cache.FetchJSON(ctx, cache.Key(cachePrefix, id.String()), &warehouse, func(ctx context.Context) (interface{}, error) {
		return s.repo.Find(ctx, id)
	})
	return warehouse, err
}

// List returns a filtered, sorted page of warehouses. Non-admins never see
// disabled entries.
func (s *Service) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination, admin bool) (ListResponse, error) {
	if !admin {
		if err := filter.Set("disabled_eq", "false"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("disabled_neq")
	}

	key := fmt.Sprintf("warehouses:%s-%s-%d/%d", filter.Key(), sort.Key(), page.Page, page.PerPage)
	var resp ListResponse
	err := s.cache.FetchListJSON(ctx, cacheListSet, key, &resp, func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.repo.List(ctx, filter, sort, page)
		if err != nil {
			return nil, err
		}
		return ListResponse{
			CurrentPage: page.Page,
			TotalPage:   page.TotalPages(total),
			Warehouses:  rows,
		}, nil
	})
	return resp, err
}

// Create inserts a new warehouse.
func (s *Service) Create(ctx context.Context, req CreateRequest) (uuid.UUID, error) {
	if err := shared.Validate(req); err != nil {
		return uuid.Nil, err
	}
	warehouse := Warehouse{
		ID:        uuid.New(),
		Name:      req.Name,
		Disabled:  req.Disabled,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, warehouse); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ctx, warehouse.ID)
	return warehouse.ID, nil
}

// Edit applies a partial update.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	warehouse, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if req.Name != nil {
		warehouse.Name = *req.Name
	}
	if req.Disabled != nil {
		warehouse.Disabled = *req.Disabled
	}
	if err := s.repo.Update(ctx, warehouse); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the warehouse row, cascading its stock rows.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ListStock returns a page of one warehouse's stock rows. The warehouse must
// exist.
func (s *Service) ListStock(ctx context.Context, warehouseID uuid.UUID, filter query.Filter, sort query.Sort, page shared.Pagination) (StockListResponse, error) {
	if _, err := s.repo.Find(ctx, warehouseID); err != nil {
		return StockListResponse{}, err
	}
	rows, total, err := s.repo.ListStock(ctx, warehouseID, filter, sort, page)
	if err != nil {
		return StockListResponse{}, err
	}
	return StockListResponse{
		CurrentPage: page.Page,
		TotalPage:   page.TotalPages(total),
		Products:    rows,
	}, nil
}

// AddStock links a product to a warehouse. Both sides must exist.
func (s *Service) AddStock(ctx context.Context, warehouseID, productID uuid.UUID, req StockRequest) error {
	if err := s.checkStockRefs(ctx, warehouseID, productID, req); err != nil {
		return err
	}
	return s.repo.CreateStock(ctx, WarehouseProduct{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    req.Quantity,
		CreatedAt:   time.Now().UTC(),
	})
}

// SetStock updates the stocked quantity of an existing link.
func (s *Service) SetStock(ctx context.Context, warehouseID, productID uuid.UUID, req StockRequest) error {
	if err := s.checkStockRefs(ctx, warehouseID, productID, req); err != nil {
		return err
	}
	return s.repo.UpdateStock(ctx, WarehouseProduct{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    req.Quantity,
	})
}

// RemoveStock deletes a stock link.
func (s *Service) RemoveStock(ctx context.Context, warehouseID, productID uuid.UUID) error {
	return s.repo.DeleteStock(ctx, warehouseID, productID)
}

func (s *Service) checkStockRefs(ctx context.Context, warehouseID, productID uuid.UUID, req StockRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	if _, err := s.repo.Find(ctx, warehouseID); err != nil {
		return err
	}
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.Key(cachePrefix, id.String())); err != nil {
		s.logger.WarnContext(ctx, "warehouse cache invalidation failed", slog.Any("error", err))
	}
	if err := s.cache.InvalidateList(ctx, cacheListSet); err != nil {
		s.logger.WarnContext(ctx, "warehouse list cache invalidation failed", slog.Any("error", err))
	}
}
