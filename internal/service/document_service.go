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

type documentRepository interface {
	CreateWithOwner(ctx context.Context, doc *models.Document, owner *models.Contributor) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	FindDetailByID(ctx context.Context, id string) (*models.DocumentDetail, error)
	List(ctx context.Context) ([]models.DocumentDetail, error)
	ListByCreator(ctx context.Context, userID string) ([]models.DocumentDetail, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
}

type documentCategoryResolver interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type documentContributorLister interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.Contributor, error)
}

// DocumentService provides document management. Mutations authorize through
// the contributor relation; reads require contributor presence before the
// cache is ever consulted.
type DocumentService struct {
	repo         documentRepository
	categories   documentCategoryResolver
	contributors documentContributorLister
	access       *AccessService
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, categories documentCategoryResolver, contributors documentContributorLister, access *AccessService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DocumentService{
		repo:         repo,
		categories:   categories,
		contributors: contributors,
		access:       access,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
}

// Create persists a document and its owner contributor for the caller.
// Both rows land atomically, so the at-least-one-owner invariant holds from
// the moment the document exists.
func (s *DocumentService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}

	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve category")
	}

	doc := &models.Document{
		Name:            req.Name,
		Status:          models.DocumentStatusDraft,
		CategoryID:      &req.CategoryID,
		CreatedByUserID: claims.UserID,
	}
	if req.Status != nil {
		doc.Status = *req.Status
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Favourite != nil {
		doc.Favourite = *req.Favourite
	}

	owner := &models.Contributor{
		UserID: &claims.UserID,
		Email:  &claims.Email,
	}

	if err := s.repo.CreateWithOwner(ctx, doc, owner); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	s.invalidate(ctx, doc)
	s.invalidateContributors(ctx)
	return doc, nil
}

// Get returns a populated document with its contributor set. The caller
// must hold a contributor row at any tier; that check runs before the
// cache lookup so a hit can never skip the access decision.
func (s *DocumentService) Get(ctx context.Context, userID, id string) (*models.DocumentRead, bool, error) {
	if _, err := s.loadDocument(ctx, id); err != nil {
		return nil, false, err
	}
	if _, err := s.access.RequirePresence(ctx, id, userID); err != nil {
		return nil, false, err
	}

	key := singleDocumentKey(id)
	var cached models.DocumentRead
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	contributors, err := s.contributors.ListByDocument(ctx, id)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contributors")
	}

	read := &models.DocumentRead{DocumentDetail: *detail, Contributors: contributors}
	if err := s.cache.Set(ctx, key, read, 0); err != nil {
		s.logger.Warn("failed to cache document", zap.String("id", id), zap.Error(err))
	}
	return read, false, nil
}

// List returns all documents with creators and categories populated.
func (s *DocumentService) List(ctx context.Context) ([]models.DocumentDetail, bool, error) {
	var cached []models.DocumentDetail
	if hit, err := s.cache.Get(ctx, cacheKeyAllDocuments, &cached); err == nil && hit {
		return cached, true, nil
	}

	documents, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	if err := s.cache.Set(ctx, cacheKeyAllDocuments, documents, 0); err != nil {
		s.logger.Warn("failed to cache documents", zap.Error(err))
	}
	return documents, false, nil
}

// ListByUser returns documents the user created. Creator-only on purpose:
// holding an editor or viewer contributor row does not surface a document
// here.
func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.DocumentDetail, bool, error) {
	key := documentsByUserKey(userID)
	var cached []models.DocumentDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	documents, err := s.repo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents by user")
	}

	if err := s.cache.Set(ctx, key, documents, 0); err != nil {
		s.logger.Warn("failed to cache user documents", zap.String("user_id", userID), zap.Error(err))
	}
	return documents, false, nil
}

// Update applies a partial update. Requires tier 0 or 1 on the document.
func (s *DocumentService) Update(ctx context.Context, userID, id string, req models.UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.access.Require(ctx, id, userID, models.TierOwner, models.TierEditor); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category id")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve category")
		}
		doc.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		doc.Name = *req.Name
	}
	if req.Status != nil {
		doc.Status = *req.Status
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Favourite != nil {
		doc.Favourite = *req.Favourite
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}

	s.invalidate(ctx, doc)
	return doc, nil
}

// Delete hard deletes a document. Requires tier 0 exactly; pages and
// contributor rows are left behind, matching the store's observed behavior.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.access.Require(ctx, id, userID, models.TierOwner); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}

	s.invalidate(ctx, doc)
	return nil
}

func (s *DocumentService) loadDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func (s *DocumentService) invalidate(ctx context.Context, doc *models.Document) {
	keys := []string{cacheKeyAllDocuments, documentsByUserKey(doc.CreatedByUserID), singleDocumentKey(doc.ID)}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("document cache invalidation failed", zap.String("id", doc.ID), zap.Error(err))
	}
}

// Document creation writes an owner contributor row, so the contributor
// listing caches are stale too.
func (s *DocumentService) invalidateContributors(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cacheKeyAllContributors); err != nil {
		s.logger.Warn("contributor cache invalidation failed", zap.Error(err))
	}
	if err := s.cache.InvalidatePattern(ctx, cacheKeyAllContributors+":email:*"); err != nil {
		s.logger.Warn("contributor cache invalidation failed", zap.Error(err))
	}
}
