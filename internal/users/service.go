package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cantina-dev/cantina/internal/platform/cache"
	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

const (
	cachePrefix  = "user"
	cacheListSet = "users:keys"
)

// EditRequest toggles a user's privilege flags. Nil fields are untouched.
type EditRequest struct {
	IsAdmin  *bool `json:"is_admin,omitempty"`
	IsBanned *bool `json:"is_banned,omitempty"`
}

// ListResponse is the paginated user envelope.
type ListResponse struct {
	CurrentPage uint64 `json:"current_page"`
	TotalPage   uint64 `json:"total_page"`
	Users       []User `json:"users"`
}

// Service holds user business logic.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Me returns the caller's own row and refreshes its last access stamp.
// Banned users still see themselves.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := s.repo.Find(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.repo.TouchAccess(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "access stamp refresh failed", slog.Any("error", err))
	}
	return user, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	var user User
	err := s.cache.FetchJSON(ctx, cache.Key(cachePrefix, id.String()), &user, func(ctx context.Context) (interface{}, error) {
		return s.repo.Find(ctx, id)
	})
	return user, err
}

// List returns a filtered, sorted page of users.
func (s *Service) List(ctx context.Context, filter query.Filter, sort query.Sort, page shared.Pagination) (ListResponse, error) {
	key := fmt.Sprintf("users:%s-%s-%d/%d", filter.Key(), sort.Key(), page.Page, page.PerPage)
	var resp ListResponse
	err := s.cache.FetchListJSON(ctx, cacheListSet, key, &resp, func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.repo.List(ctx, filter, sort, page)
		if err != nil {
			return nil, err
		}
		return ListResponse{
			CurrentPage: page.Page,
			TotalPage:   page.TotalPages(total),
			Users:       rows,
		}, nil
	})
	return resp, err
}

// Edit toggles privilege flags. Banning a user always strips admin rights.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) error {
	user, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsBanned != nil {
		user.IsBanned = *req.IsBanned
	}
	if user.IsBanned {
		user.IsAdmin = false
	}
	if err := s.repo.SetPrivileges(ctx, id, user.IsAdmin, user.IsBanned); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.Key(cachePrefix, id.String())); err != nil {
		s.logger.WarnContext(ctx, "user cache invalidation failed", slog.Any("error", err))
	}
	if err := s.cache.InvalidateList(ctx, cacheListSet); err != nil {
		s.logger.WarnContext(ctx, "user list cache invalidation failed", slog.Any("error", err))
	}
}
