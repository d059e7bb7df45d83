package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
)

type pageRepository interface {
	FindByID(ctx context.Context, id string) (*models.Page, error)
	ListByDocumentIDs(ctx context.Context, documentIDs []string) ([]models.Page, error)
	Create(ctx context.Context, page *models.Page) error
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id string) error
	AppendEdit(ctx context.Context, edit *models.PageEdit) error
	ListEdits(ctx context.Context, pageID string) ([]models.PageEdit, error)
}

type pageDocumentResolver interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
}

type pageContributorResolver interface {
	FindByID(ctx context.Context, id string) (*models.Contributor, error)
	ListDocumentIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// PageServiceConfig tunes page hierarchy behaviour.
type PageServiceConfig struct {
	MaxNestingDepth int
}

// PageService manages the page hierarchy. A page's access control is never
// stored on the page; it is re-derived from the contributor row for the
// page's document on every operation.
type PageService struct {
	repo         pageRepository
	documents    pageDocumentResolver
	contributors pageContributorResolver
	access       *AccessService
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          PageServiceConfig
}

// NewPageService constructs a PageService.
func NewPageService(repo pageRepository, documents pageDocumentResolver, contributors pageContributorResolver, access *AccessService, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg PageServiceConfig) *PageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxNestingDepth <= 0 {
		cfg.MaxNestingDepth = 4
	}
	return &PageService{
		repo:         repo,
		documents:    documents,
		contributors: contributors,
		access:       access,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// Create persists a page. Requires tier 0 exactly on the target document,
// stricter than update. The creator's contributor id is stored on the page.
func (s *PageService) Create(ctx context.Context, userID string, req models.CreatePageRequest) (*models.Page, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid page payload")
	}

	if _, err := s.documents.FindByID(ctx, req.DocumentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	contributor, err := s.access.Require(ctx, req.DocumentID, userID, models.TierOwner)
	if err != nil {
		return nil, err
	}

	for _, parentID := range req.NestedUnder {
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "parent page not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent page")
		}
		if parent.DocumentID != req.DocumentID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "parent page belongs to a different document")
		}
	}

	page := &models.Page{
		Title:         req.Title,
		Content:       req.Content,
		DocumentID:    req.DocumentID,
		ContributorID: contributor.ID,
		NestedUnder:   pq.StringArray(req.NestedUnder),
	}
	if err := s.repo.Create(ctx, page); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create page")
	}

	s.invalidate(ctx, page.ID)
	return page, nil
}

// Get returns a page with its parent chain, document, creator contributor
// and edit trail populated. Contributor presence at any tier gates the
// read, and the check runs before the cache lookup.
func (s *PageService) Get(ctx context.Context, userID, id string) (*models.PageDetail, bool, error) {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.access.RequirePresence(ctx, page.DocumentID, userID); err != nil {
		return nil, false, err
	}

	key := singlePageKey(id)
	var cached models.PageDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	detail, err := s.populate(ctx, page)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, detail, 0); err != nil {
		s.logger.Warn("failed to cache page", zap.String("id", id), zap.Error(err))
	}
	return detail, false, nil
}

// List returns every page of every document the caller holds a contributor
// row on, at any tier. Visibility is the union over those documents.
func (s *PageService) List(ctx context.Context, userID string) ([]models.Page, bool, error) {
	key := pagesByUserKey(userID)
	var cached []models.Page
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	documentIDs, err := s.contributors.ListDocumentIDsByUser(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve contributed documents")
	}

	pages, err := s.repo.ListByDocumentIDs(ctx, documentIDs)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}

	if err := s.cache.Set(ctx, key, pages, 0); err != nil {
		s.logger.Warn("failed to cache pages", zap.String("user_id", userID), zap.Error(err))
	}
	return pages, false, nil
}

// Update applies a partial update. Requires tier 0 or 1 on the page's
// document and appends an edit attribution entry for the editor.
func (s *PageService) Update(ctx context.Context, userID, id string, req models.UpdatePageRequest) (*models.Page, error) {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return nil, err
	}

	contributor, err := s.access.Require(ctx, page.DocumentID, userID, models.TierOwner, models.TierEditor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Content != nil {
		page.Content = req.Content
	}
	if req.NestedUnder != nil {
		for _, parentID := range *req.NestedUnder {
			if parentID == id {
				return nil, appErrors.Clone(appErrors.ErrValidation, "page cannot be nested under itself")
			}
			parent, err := s.repo.FindByID(ctx, parentID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrValidation, "parent page not found")
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent page")
			}
			if parent.DocumentID != page.DocumentID {
				return nil, appErrors.Clone(appErrors.ErrValidation, "parent page belongs to a different document")
			}
		}
		page.NestedUnder = pq.StringArray(*req.NestedUnder)
	}

	if err := s.repo.Update(ctx, page); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update page")
	}

	if err := s.repo.AppendEdit(ctx, &models.PageEdit{PageID: page.ID, ContributorID: contributor.ID}); err != nil {
		s.logger.Warn("failed to record edit attribution", zap.String("page_id", page.ID), zap.Error(err))
	}

	s.invalidate(ctx, page.ID)
	return page, nil
}

// Delete hard deletes a page. Requires tier 0 exactly.
func (s *PageService) Delete(ctx context.Context, userID, id string) error {
	page, err := s.loadPage(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.access.Require(ctx, page.DocumentID, userID, models.TierOwner); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete page")
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *PageService) loadPage(ctx context.Context, id string) (*models.Page, error) {
	page, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}
	return page, nil
}

// populate builds the read shape: the parent chain up to the configured
// depth with cycle detection, plus document, creator contributor and edits.
func (s *PageService) populate(ctx context.Context, page *models.Page) (*models.PageDetail, error) {
	visited := map[string]struct{}{page.ID: {}}
	detail, err := s.populateParents(ctx, page, s.cfg.MaxNestingDepth, visited)
	if err != nil {
		return nil, err
	}

	if doc, err := s.documents.FindByID(ctx, page.DocumentID); err == nil {
		detail.Document = doc
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}

	if contributor, err := s.contributors.FindByID(ctx, page.ContributorID); err == nil {
		detail.Contributor = contributor
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contributor")
	}

	edits, err := s.repo.ListEdits(ctx, page.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edit trail")
	}
	detail.Edits = edits

	return detail, nil
}

func (s *PageService) populateParents(ctx context.Context, page *models.Page, depth int, visited map[string]struct{}) (*models.PageDetail, error) {
	detail := &models.PageDetail{Page: *page}
	if depth <= 0 {
		return detail, nil
	}

	for _, parentID := range page.NestedUnder {
		if _, seen := visited[parentID]; seen {
			s.logger.Warn("cycle detected in page nesting", zap.String("page_id", page.ID), zap.String("parent_id", parentID))
			continue
		}
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent page")
		}
		visited[parentID] = struct{}{}
		parentDetail, err := s.populateParents(ctx, parent, depth-1, visited)
		if err != nil {
			return nil, err
		}
		detail.Parents = append(detail.Parents, parentDetail)
	}

	return detail, nil
}

// invalidate purges the single-page key, the aggregate key, and every
// per-user discriminated listing; union visibility means any contributor's
// listing may be stale.
func (s *PageService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, cacheKeyAllPages, singlePageKey(id)); err != nil {
		s.logger.Warn("page cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
	if err := s.cache.InvalidatePattern(ctx, cacheKeyAllPages+":user:*"); err != nil {
		s.logger.Warn("page cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}
