package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/cache"
	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/products"
	"github.com/cantina-dev/cantina/internal/shared"
)

const (
	cachePrefix  = "recipe"
	cacheListSet = "recipes:keys"
)

// CreateRequest is the payload of POST /recipe.
type CreateRequest struct {
	Name            *string           `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	ResultProductID uuid.UUID         `json:"result_product_id" validate:"required"`
	Disabled        bool              `json:"disabled"`
	Ingredients     []IngredientInput `json:"ingredients"`
}

// EditRequest is the payload of PUT /recipe/{id}. Nil fields are untouched; a
// non-nil Ingredients list is reconciled against the stored rows.
type EditRequest struct {
	Name            *string            `json:"name,omitempty" validate:"omitempty,min=1,max=32"`
	ResultProductID *uuid.UUID         `json:"result_product_id,omitempty"`
	Disabled        *bool              `json:"disabled,omitempty"`
	Ingredients     *[]IngredientInput `json:"ingredients,omitempty"`
}

// CreateResponse returns the id of a freshly created recipe.
type CreateResponse struct {
	ID string `json:"id"`
}

// Response is one recipe with its ingredient rows.
type Response struct {
	Recipe
	Ingredients []Ingredient `json:"ingredients"`
}

// ListResponse is the paginated recipe envelope.
type ListResponse struct {
	CurrentPage uint64   `json:"current_page"`
	TotalPage   uint64   `json:"total_page"`
	Recipes     []Recipe `json:"recipes"`
}

// Service holds recipe business logic.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Get returns one recipe with its ingredients.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	var resp Response
	err := s.cache.FetchJSON(ctx, cache.Key(cachePrefix, id.String()), &resp, func(ctx context.Context) (interface{}, error) {
		recipe, err := s.repo.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		ingredients, err := s.repo.Ingredients(ctx, id)
		if err != nil {
			return nil, err
		}
		return Response{Recipe: recipe, Ingredients: ingredients}, nil
	})
	return resp, err
}

// List returns a filtered, sorted page of recipes. Non-admins never see
// disabled entries.
func (s *Service) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination, admin bool) (ListResponse, error) {
	if !admin {
		if err := filter.Set("disabled_eq", "false"); err != nil {
			return ListResponse{}, err
		}
		filter.Unset("disabled_neq")
	}

	key := fmt.Sprintf("recipes:%s-%s-%d/%d", filter.Key(), sort.Key(), page.Page, page.PerPage)
	var resp ListResponse
	err := s.cache.FetchListJSON(ctx, cacheListSet, key, &resp, func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.repo.List(ctx, filter, sort, page)
		if err != nil {
			return nil, err
		}
		return ListResponse{
			CurrentPage: page.Page,
			TotalPage:   page.TotalPages(total),
			Recipes:     rows,
		}, nil
	})
	return resp, err
}

// Create merges the submitted ingredient lines, validates every reference and
// inserts recipe plus ingredients in one transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest) (uuid.UUID, error) {
	if err := shared.Validate(req); err != nil {
		return uuid.Nil, err
	}
	merged := mergeIngredients(req.Ingredients)
	if err := s.validateIngredients(ctx, req.ResultProductID, merged); err != nil {
		return uuid.Nil, err
	}
	recipe := Recipe{
		ID:              uuid.New(),
		Name:            req.Name,
		ResultProductID: req.ResultProductID,
		Disabled:        req.Disabled,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, recipe, merged); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ctx, recipe.ID)
	return recipe.ID, nil
}

// Edit applies a partial update. A submitted ingredient list is merged,
// validated and reconciled against the stored rows, all changes land in one
// transaction so a failing line never leaves dangling references.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	if err := shared.Validate(req); err != nil {
		return err
	}
	recipe, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if req.Name != nil {
		recipe.Name = req.Name
	}
	if req.ResultProductID != nil {
		recipe.ResultProductID = *req.ResultProductID
	}
	if req.Disabled != nil {
		recipe.Disabled = *req.Disabled
	}

	var add, update []IngredientInput
	var remove []uuid.UUID
	if req.Ingredients != nil {
		merged := mergeIngredients(*req.Ingredients)
		if err := s.validateIngredients(ctx, recipe.ResultProductID, merged); err != nil {
			return err
		}
		existing, err := s.repo.Ingredients(ctx, id)
		if err != nil {
			return err
		}
		add, update, remove = diffIngredients(merged, existing)
	} else if err := s.validateResultProduct(ctx, recipe.ResultProductID); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, recipe, add, update, remove); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the recipe row and its ingredients.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// validateIngredients runs every referential check before any row is written.
func (s *Service) validateIngredients(ctx context.Context, resultProductID uuid.UUID, merged []IngredientInput) error {
	for _, line := range merged {
		if !line.Quantity.IsPositive() {
			return fmt.Errorf("%w: ingredient %s quantity must be positive", shared.ErrValidation, line.ProductID)
		}
		if line.ProductID == resultProductID {
			return fmt.Errorf("%w: ingredient %s is the recipe's own result product", shared.ErrValidation, line.ProductID)
		}
	}

	ids := make([]uuid.UUID, len(merged))
	for i, line := range merged {
		ids[i] = line.ProductID
	}
	missing, err := s.repo.MissingProducts(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: ingredient %s cannot be found", shared.ErrValidation, missing[0])
	}

	return s.validateResultProduct(ctx, resultProductID)
}

func (s *Service) validateResultProduct(ctx context.Context, resultProductID uuid.UUID) error {
	unit, err := s.repo.ProductUnit(ctx, resultProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: result product %s cannot be found", shared.ErrValidation, resultProductID)
		}
		return err
	}
	if unit != string(products.UnitUnit) {
		return fmt.Errorf("%w: result product must be counted in units", shared.ErrValidation)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.Key(cachePrefix, id.String())); err != nil {
		s.logger.WarnContext(ctx, "recipe cache invalidation failed", slog.Any("error", err))
	}
	if err := s.cache.InvalidateList(ctx, cacheListSet); err != nil {
		s.logger.WarnContext(ctx, "recipe list cache invalidation failed", slog.Any("error", err))
	}
}
