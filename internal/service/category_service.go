package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
)

type categoryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindDetailByID(ctx context.Context, id string) (*models.CategoryDetail, error)
	List(ctx context.Context) ([]models.CategoryDetail, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

// CategoryService provides category management. Authorization here is
// role-based (super only, enforced at the route), not contributor-based.
type CategoryService struct {
	repo      categoryRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo categoryRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CategoryService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Create inserts a new category owned by the calling user.
func (s *CategoryService) Create(ctx context.Context, createdBy string, req models.CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "category name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category name")
	}

	category := &models.Category{
		Name:      req.Name,
		CreatedBy: createdBy,
		IsActive:  true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}

	s.invalidate(ctx, category.ID)
	return category, nil
}

// Get returns a category with its creator populated, read through the cache.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.CategoryDetail, bool, error) {
	key := singleCategoryKey(id)
	var cached models.CategoryDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	if err := s.cache.Set(ctx, key, detail, 0); err != nil {
		s.logger.Warn("failed to cache category", zap.String("id", id), zap.Error(err))
	}
	return detail, false, nil
}

// List returns all categories, read through the cache.
func (s *CategoryService) List(ctx context.Context) ([]models.CategoryDetail, bool, error) {
	var cached []models.CategoryDetail
	if hit, err := s.cache.Get(ctx, cacheKeyAllCategories, &cached); err == nil && hit {
		return cached, true, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}

	if err := s.cache.Set(ctx, cacheKeyAllCategories, categories, 0); err != nil {
		s.logger.Warn("failed to cache categories", zap.Error(err))
	}
	return categories, false, nil
}

// Update applies a partial update to a category.
func (s *CategoryService) Update(ctx context.Context, id string, req models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}

	s.invalidate(ctx, id)
	return category, nil
}

// Delete removes a category. Documents referencing it keep a dangling
// reference; deletion does not cascade.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, cacheKeyAllCategories, singleCategoryKey(id)); err != nil {
		s.logger.Warn("category cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}
