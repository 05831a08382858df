package locations

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
	cachePrefix  = "location"
	cacheListSet = "locations:keys"
)

// CreateRequest is the payload of POST /location.
type CreateRequest struct {
	Name     string    `json:"name" validate:"required,min=1,max=32"`
	Category *Category `json:"category,omitempty"`
	Disabled bool      `json:"disabled"`
}

// EditRequest is the payload of PUT /location/{id}. Nil fields are untouched.
type EditRequest struct {
	Name     *string   `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	Category *Category `json:"category,omitempty"`
	Disabled *bool     `json:"disabled,omitempty"`
}

// CreateResponse returns the id of a freshly created location.
type CreateResponse struct {
	ID string `json:"id"`
}

// ListResponse is the paginated location envelope.
type ListResponse struct {
	CurrentPage uint64     `json:"current_page"`
	TotalPage   uint64     `json:"total_page"`
	Locations   []Location `json:"locations"`
}

// Service holds location business logic.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Get returns one location.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Location, error) {
	var location Location
	err := s.cache.FetchJSON(ctx, cache.Key(cachePrefix, id.String()), &location, func(ctx context.Context) (interface{}, error) {
		return s.repo.Find(ctx, id)
	})
	return location, err
}

// List returns a filtered, sorted page of locations. Non-admins never see
// disabled entries.
func (s *Service) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination, admin bool) (ListResponse, error) {
	if !admin {
		if err := filter.Set("disabled_eq", "false"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("disabled_neq")
	}

	key := fmt.Sprintf("locations:%s-%s-%d/%d", filter.Key(), sort.Key(), page.Page, page.PerPage)
	var resp ListResponse
	err := s.cache.FetchListJSON(ctx, cacheListSet, key, &resp, func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.repo.List(ctx, filter, sort, page)
		if err != nil {
			return nil, err
		}
		return ListResponse{
			CurrentPage: page.Page,
			TotalPage:   page.TotalPages(total),
			Locations:   rows,
		}, nil
	})
	return resp, err
}

// Create inserts a new location.
func (s *Service) Create(ctx context.Context, req CreateRequest) (uuid.UUID, error) {
	if err := shared.Validate(req); err != nil {
		return uuid.Nil, err
	}
	if req.Category != nil && !ValidCategory(*req.Category) {
		return uuid.Nil, fmt.Errorf("%w: unknown category %q", shared.ErrValidation, *req.Category)
	}
	location := Location{
		ID:        uuid.New(),
		Name:      req.Name,
		Category:  req.Category,
		Disabled:  req.Disabled,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ctx, location.ID)
	return location.ID, nil
}

// Edit applies a partial update.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	if req.Category != nil && !ValidCategory(*req.Category) {
		return fmt.Errorf("%w: unknown category %q", shared.ErrValidation, *req.Category)
	}
	location, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Category != nil {
		location.Category = req.Category
	}
	if req.Disabled != nil {
		location.Disabled = *req.Disabled
	}
	if err := s.repo.Update(ctx, location); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the location row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.Key(cachePrefix, id.String())); err != nil {
		s.logger.WarnContext(ctx, "location cache invalidation failed", slog.Any("error", err))
	}
	if err := s.cache.InvalidateList(ctx, cacheListSet); err != nil {
		s.logger.WarnContext(ctx, "location list cache invalidation failed", slog.Any("error", err))
	}
}
