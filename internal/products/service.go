package products

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
	cachePrefix  = "product"
	cacheListSet = "products:keys"
)

// Purger removes orphaned product images from object storage.
type Purger interface {
	PurgeObject(ctx context.Context, key string) error
}

// Service holds product business logic.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	purger Purger
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, c *cache.Cache, purger Purger, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, purger: purger, logger: logger}
}

// Get returns one product. Hidden products stay invisible to non-admins.
func (s *Service) Get(ctx context.Context, id uuid.UUID, admin bool) (Product, error) {
	var product Product
	err := s.cache.FetchJSON(ctx, cache.Key(cachePrefix, id.String()), &product, func(ctx context.Context) (interface{}, error) {
		return s.repo.Find(ctx, id)
	})
	if err != nil {
		return Product{}, err
	}
	if product.Hidden && !admin {
		return Product{}, shared.ErrNotFound
	}
	return product, nil
}

// List returns a filtered, sorted page of products. Non-admins only ever see
// purchasable, non-hidden entries whatever filters they send.
func (s *Service) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination, admin bool) (ListResponse, error) {
	if !admin {
		if err := filter.Set("purchasable_eq", "true"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("purchasable_neq")
		if err := filter.Set("hidden_eq", "false"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("hidden_neq")
	}

	key := fmt.Sprintf("products:%s-%s-%d/%d", filter.Key(), sort.Key(), page.Page, page.PerPage)
	var resp ListResponse
	err := s.cache.FetchListJSON(ctx, cacheListSet, key, &resp, func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.repo.List(ctx, filter, sort, page)
		if err != nil {
			return nil, err
		}
		return ListResponse{
			CurrentPage: page.Page,
			TotalPage:   page.TotalPages(total),
			Products:    rows,
		}, nil
	})
	return resp, err
}

// Create inserts a new product and returns its id.
func (s *Service) Create(ctx context.Context, req CreateRequest) (uuid.UUID, error) {
	if err := shared.Validate(req); err != nil {
		return uuid.Nil, err
	}
	product := Product{
		ID:                  uuid.New(),
		Image:               req.Image,
		Name:                req.Name,
		DisplayOrder:        req.DisplayOrder,
		SellPrice:           req.SellPrice,
		SellPriceCurrency:   req.SellPriceCurrency,
		Unit:                req.Unit,
		Purchasable:         req.Purchasable,
		Hidden:              req.Hidden,
		Disabled:            req.Disabled,
		MaxQuantityPerOrder: req.MaxQuantityPerOrder,
		CreatedAt:           time.Now().UTC(),
	}
	if err := validateProduct(product); err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ctx, product.ID)
	return product.ID, nil
}

// Edit applies a partial update. Replacing or unsetting the image schedules a
// purge of the previous object.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	product, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}

	var purgeKey string
	if req.UnsetImage {
		if product.Image != nil {
			purgeKey = *product.Image
		}
		product.Image = nil
	} else if req.Image != nil {
		if product.Image != nil && *product.Image != *req.Image {
			purgeKey = *product.Image
		}
		product.Image = req.Image
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.DisplayOrder != nil {
		product.DisplayOrder = *req.DisplayOrder
	}
	if req.SellPrice != nil {
		product.SellPrice = *req.SellPrice
	}
	if req.SellPriceCurrency != nil {
		product.SellPriceCurrency = *req.SellPriceCurrency
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Purchasable != nil {
		product.Purchasable = *req.Purchasable
	}
	if req.Hidden != nil {
		product.Hidden = *req.Hidden
	}
	if req.Disabled != nil {
		product.Disabled = *req.Disabled
	}
	if req.MaxQuantityPerOrder != nil {
		product.MaxQuantityPerOrder = req.MaxQuantityPerOrder
	}

	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.purge(ctx, purgeKey)
	return nil
}

// Delete removes the product row and purges its image.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if product.Image != nil {
		s.purge(ctx, *product.Image)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.Key(cachePrefix, id.String())); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed", slog.Any("error", err))
	}
	if err := s.cache.InvalidateList(ctx, cacheListSet); err != nil {
		s.logger.WarnContext(ctx, "product list cache invalidation failed", slog.Any("error", err))
	}
}

func (s *Service) purge(ctx context.Context, key string) {
	if key == "" || s.purger == nil {
		return
	}
	if err := s.purger.PurgeObject(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "image purge failed", slog.String("key", key), slog.Any("error", err))
	}
}
