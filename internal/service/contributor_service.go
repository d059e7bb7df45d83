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

type contributorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Contributor, error)
	FindByDocumentAndUser(ctx context.Context, documentID, userID string) (*models.Contributor, error)
	List(ctx context.Context, filter models.ContributorFilter) ([]models.Contributor, error)
	Create(ctx context.Context, contributor *models.Contributor) error
	UpdateAccess(ctx context.Context, id string, access models.Tier) error
	Delete(ctx context.Context, id string) error
}

type contributorDocumentResolver interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
}

// ContributorService manages access grants. Owner rows are created only by
// document creation; this service grants, adjusts and revokes editor and
// viewer rows.
type ContributorService struct {
	repo      contributorRepository
	documents contributorDocumentResolver
	access    *AccessService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContributorService constructs a ContributorService.
func NewContributorService(repo contributorRepository, documents contributorDocumentResolver, access *AccessService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ContributorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContributorService{
		repo:      repo,
		documents: documents,
		access:    access,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// Grant creates an editor or viewer contributor row. The caller must own
// the target document. A second grant for the same (document, user) pair is
// a conflict.
func (s *ContributorService) Grant(ctx context.Context, callerID string, req models.GrantContributorRequest) (*models.Contributor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contributor payload")
	}
	if req.UserID == nil && req.Email == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either user_id or email is required")
	}

	if _, err := s.documents.FindByID(ctx, req.DocumentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if _, err := s.access.Require(ctx, req.DocumentID, callerID, models.TierOwner); err != nil {
		return nil, err
	}

	if req.UserID != nil {
		if _, err := s.repo.FindByDocumentAndUser(ctx, req.DocumentID, *req.UserID); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "user is already a contributor on this document")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing contributor")
		}
	}

	contributor := &models.Contributor{
		DocumentID: req.DocumentID,
		UserID:     req.UserID,
		Email:      req.Email,
		EditAccess: req.EditAccess,
	}
	if err := s.repo.Create(ctx, contributor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create contributor")
	}

	s.invalidate(ctx, contributor)
	return contributor, nil
}

// Get returns a single contributor row, read through the cache.
func (s *ContributorService) Get(ctx context.Context, id string) (*models.Contributor, bool, error) {
	key := singleContributorKey(id)
	var cached models.Contributor
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	contributor, err := s.loadContributor(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, contributor, 0); err != nil {
		s.logger.Warn("failed to cache contributor", zap.String("id", id), zap.Error(err))
	}
	return contributor, false, nil
}

// List returns contributor rows, optionally filtered by email. Filtered
// listings use a discriminated cache key.
func (s *ContributorService) List(ctx context.Context, filter models.ContributorFilter) ([]models.Contributor, bool, error) {
	key := cacheKeyAllContributors
	if filter.Email != "" {
		key = contributorsByEmailKey(filter.Email)
	}

	var cached []models.Contributor
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	contributors, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contributors")
	}

	if err := s.cache.Set(ctx, key, contributors, 0); err != nil {
		s.logger.Warn("failed to cache contributors", zap.Error(err))
	}
	return contributors, false, nil
}

// Update changes the tier of an editor or viewer row. Only the document
// owner may do so; owner rows themselves are immutable.
func (s *ContributorService) Update(ctx context.Context, callerID, id string, req models.UpdateContributorRequest) (*models.Contributor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contributor payload")
	}

	contributor, err := s.loadContributor(ctx, id)
	if err != nil {
		return nil, err
	}
	if contributor.EditAccess == models.TierOwner {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "owner access cannot be changed")
	}

	if _, err := s.access.Require(ctx, contributor.DocumentID, callerID, models.TierOwner); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccess(ctx, id, req.EditAccess); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contributor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update contributor")
	}

	contributor.EditAccess = req.EditAccess
	s.invalidate(ctx, contributor)
	return contributor, nil
}

// Delete removes a contributor row. The row's own user may leave, and the
// document owner may revoke; an owner row is never deleted, which keeps the
// at-least-one-owner invariant.
func (s *ContributorService) Delete(ctx context.Context, callerID, id string) error {
	contributor, err := s.loadContributor(ctx, id)
	if err != nil {
		return err
	}
	if contributor.EditAccess == models.TierOwner {
		return appErrors.Clone(appErrors.ErrForbidden, "owner access cannot be revoked")
	}

	isSelf := contributor.UserID != nil && *contributor.UserID == callerID
	if !isSelf {
		if _, err := s.access.Require(ctx, contributor.DocumentID, callerID, models.TierOwner); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "contributor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete contributor")
	}

	s.invalidate(ctx, contributor)
	return nil
}

func (s *ContributorService) loadContributor(ctx context.Context, id string) (*models.Contributor, error) {
	contributor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contributor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contributor")
	}
	return contributor, nil
}

func (s *ContributorService) invalidate(ctx context.Context, contributor *models.Contributor) {
	// A grant or revocation changes which pages the affected user may list,
	// so the page listing keys are purged along with the contributor keys.
	keys := []string{cacheKeyAllContributors, singleContributorKey(contributor.ID), singleDocumentKey(contributor.DocumentID), cacheKeyAllPages}
	if contributor.UserID != nil {
		keys = append(keys, pagesByUserKey(*contributor.UserID))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("contributor cache invalidation failed", zap.String("id", contributor.ID), zap.Error(err))
	}
	if err := s.cache.InvalidatePattern(ctx, cacheKeyAllContributors+":email:*"); err != nil {
		s.logger.Warn("contributor cache invalidation failed", zap.Error(err))
	}
}
