package refills

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cantina-dev/cantina/internal/platform/cache"
	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

const (
	cachePrefix  = "refill"
	cacheListSet = "refills:keys"
)

// CreateRequest is the payload of POST /refill.
type CreateRequest struct {
	Name         *string         `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	AmountEuro   decimal.Decimal `json:"amount_euro"`
	AmountCredit decimal.Decimal `json:"amount_credit"`
	Hidden       bool            `json:"hidden"`
	Disabled     bool            `json:"disabled"`
}

// EditRequest is the payload of PUT /refill/{id}. Nil fields are untouched.
type EditRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	AmountEuro   *decimal.Decimal `json:"amount_euro,omitempty"`
	AmountCredit *decimal.Decimal `json:"amount_credit,omitempty"`
	Hidden       *bool            `json:"hidden,omitempty"`
	Disabled     *bool            `json:"disabled,omitempty"`
}

// CreateResponse returns the id of a freshly created refill.
type CreateResponse struct {
	ID string `json:"id"`
}

// ListResponse is the paginated refill envelope.
type ListResponse struct {
	CurrentPage uint64   `json:"current_page"`
	TotalPage   uint64   `json:"total_page"`
	Refills     []Refill `json:"refills"`
}

// Service holds refill business logic.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Get returns one refill. Hidden refills stay invisible to non-admins.
func (s *Service) Get(ctx context.Context, id uuid.UUID, admin bool) (Refill, error) {
	var refill Refill
	err := s.cache.FetchJSON(ctx, cache.Key(cachePrefix, id.String()), &refill, func(ctx context.Context) (interface{}, error) {
		return s.repo.Find(ctx, id)
	})
	if err != nil {
		return Refill{}, err
	}
	if refill.Hidden && !admin {
		return Refill{}, shared.ErrNotFound
	}
	return refill, nil
}

// List returns a filtered, sorted page of refills. Non-admins only ever see
// visible, enabled entries.
func (s *Service) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination, admin bool) (ListResponse, error) {
	if !admin {
		if err := filter.Set("hidden_eq", "false"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("hidden_neq")
		if err := filter.Set("disabled_eq", "false"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("disabled_neq")
	}

	key := fmt.Sprintf("refills:%s-%s-%d/%d", filter.Key(), sort.Key(), page.Page, page.PerPage)
	var resp ListResponse
	err := s.cache.FetchListJSON(ctx, cacheListSet, key, &resp, func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.repo.List(ctx, filter, sort, page)
		if err != nil {
			return nil, err
		}
		return ListResponse{
			CurrentPage: page.Page,
			TotalPage:   page.TotalPages(total),
			Refills:     rows,
		}, nil
	})
	return resp, err
}

// Create inserts a new refill. Hiding a refill also disables it, non-admins
// must never be offered a top-up they cannot see.
func (s *Service) Create(ctx context.Context, req CreateRequest) (uuid.UUID, error) {
	if err := shared.Validate(req); err != nil {
		return uuid.Nil, err
	}
	refill := Refill{
		ID:           uuid.New(),
		Name:         req.Name,
		AmountEuro:   req.AmountEuro,
		AmountCredit: req.AmountCredit,
		Hidden:       req.Hidden,
		Disabled:     req.Disabled || req.Hidden,
		CreatedAt:    time.Now().UTC(),
	}
	if err := validateRefill(refill); err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Create(ctx, refill); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ctx, refill.ID)
	return refill.ID, nil
}

// Edit applies a partial update, keeping the hidden-implies-disabled rule.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	refill, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if req.Name != nil {
		refill.Name = req.Name
	}
	if req.AmountEuro != nil {
		refill.AmountEuro = *req.AmountEuro
	}
	if req.AmountCredit != nil {
		refill.AmountCredit = *req.AmountCredit
	}
	if req.Hidden != nil {
		refill.Hidden = *req.Hidden
	}
	if req.Disabled != nil {
		refill.Disabled = *req.Disabled
	}
	if refill.Hidden {
		refill.Disabled = true
	}
	if err := validateRefill(refill); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, refill); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the refill row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func validateRefill(refill Refill) error {
	if refill.Name != nil && (*refill.Name == "" || len(*refill.Name) > 32) {
		return fmt.Errorf("%w: name must be 1 to 32 characters", shared.ErrValidation)
	}
	if !refill.AmountEuro.IsPositive() {
		return fmt.Errorf("%w: amount_euro must be positive", shared.ErrValidation)
	}
	if !refill.AmountCredit.IsPositive() {
		return fmt.Errorf("%w: amount_credit must be positive", shared.ErrValidation)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.Key(cachePrefix, id.String())); err != nil {
		s.logger.WarnContext(ctx, "refill cache invalidation failed", slog.Any("error", err))
	}
	if err := s.cache.InvalidateList(ctx, cacheListSet); err != nil {
		s.logger.WarnContext(ctx, "refill list cache invalidation failed", slog.Any("error", err))
	}
}
