package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
)

type contributorRepoStub struct {
	rows    map[string]models.Contributor
	deleted []string
	nextID  int
}

func newContributorRepoStub(rows ...models.Contributor) *contributorRepoStub {
	s := &contributorRepoStub{rows: make(map[string]models.Contributor)}
	for _, row := range rows {
		s.rows[row.ID] = row
	}
	return s
}

func (s *contributorRepoStub) FindByID(ctx context.Context, id string) (*models.Contributor, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (s *contributorRepoStub) FindByDocumentAndUser(ctx context.Context, documentID, userID string) (*models.Contributor, error) {
	for _, row := range s.rows {
		if row.DocumentID == documentID && row.UserID != nil && *row.UserID == userID {
			r := row
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *contributorRepoStub) List(ctx context.Context, filter models.ContributorFilter) ([]models.Contributor, error) {
	var rows []models.Contributor
	for _, row := range s.rows {
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *contributorRepoStub) Create(ctx context.Context, contributor *models.Contributor) error {
	if contributor.ID == "" {
		s.nextID++
		contributor.ID = "c-new"
	}
	s.rows[contributor.ID] = *contributor
	return nil
}

func (s *contributorRepoStub) UpdateAccess(ctx context.Context, id string, access models.Tier) error {
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.EditAccess = access
	s.rows[id] = row
	return nil
}

func (s *contributorRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rows, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type singleDocResolver struct {
	id string
}

func (s singleDocResolver) FindByID(ctx context.Context, id string) (*models.Document, error) {
	if id != s.id {
		return nil, sql.ErrNoRows
	}
	return &models.Document{ID: id}, nil
}

func contributorRow(id, documentID, userID string, tier models.Tier) models.Contributor {
	uid := userID
	return models.Contributor{ID: id, DocumentID: documentID, UserID: &uid, EditAccess: tier}
}

func newTestContributorService(repo *contributorRepoStub) (*ContributorService, *stubCacheRepo) {
	cache, cacheRepo := newTestCache()
	svc := NewContributorService(repo, singleDocResolver{id: "doc-1"}, NewAccessService(repo, nil), cache, nil, nil)
	return svc, cacheRepo
}

func strPtr(s string) *string { return &s }

func TestContributorServiceGrantRequiresOwner(t *testing.T) {
	repo := newContributorRepoStub(contributorRow("c-1", "doc-1", "editor-1", models.TierEditor))
	svc, _ := newTestContributorService(repo)

	_, err := svc.Grant(context.Background(), "editor-1", models.GrantContributorRequest{
		DocumentID: "doc-1",
		UserID:     strPtr("user-3"),
		EditAccess: models.TierViewer,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestContributorServiceGrantDuplicateConflict(t *testing.T) {
	repo := newContributorRepoStub(
		contributorRow("c-1", "doc-1", "owner-1", models.TierOwner),
		contributorRow("c-2", "doc-1", "editor-1", models.TierEditor),
	)
	svc, _ := newTestContributorService(repo)

	_, err := svc.Grant(context.Background(), "owner-1", models.GrantContributorRequest{
		DocumentID: "doc-1",
		UserID:     strPtr("editor-1"),
		EditAccess: models.TierViewer,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestContributorServiceGrantByOwner(t *testing.T) {
	repo := newContributorRepoStub(contributorRow("c-1", "doc-1", "owner-1", models.TierOwner))
	svc, cacheRepo := newTestContributorService(repo)
	cacheRepo.seed(t, "allContributors", []string{"stale"})
	cacheRepo.seed(t, "allContributors:email:x", []string{"stale"})

	contributor, err := svc.Grant(context.Background(), "owner-1", models.GrantContributorRequest{
		DocumentID: "doc-1",
		UserID:     strPtr("user-3"),
		EditAccess: models.TierViewer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierViewer, contributor.EditAccess)
	assert.NotContains(t, cacheRepo.data, "allContributors")
	assert.NotContains(t, cacheRepo.data, "allContributors:email:x")
}

func TestContributorServiceGrantUnknownDocument(t *testing.T) {
	repo := newContributorRepoStub()
	svc, _ := newTestContributorService(repo)

	_, err := svc.Grant(context.Background(), "owner-1", models.GrantContributorRequest{
		DocumentID: "doc-missing",
		UserID:     strPtr("user-3"),
		EditAccess: models.TierViewer,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContributorServiceGrantNeedsUserOrEmail(t *testing.T) {
	repo := newContributorRepoStub(contributorRow("c-1", "doc-1", "owner-1", models.TierOwner))
	svc, _ := newTestContributorService(repo)

	_, err := svc.Grant(context.Background(), "owner-1", models.GrantContributorRequest{
		DocumentID: "doc-1",
		EditAccess: models.TierViewer,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContributorServiceUpdateOwnerRowImmutable(t *testing.T) {
	repo := newContributorRepoStub(contributorRow("c-1", "doc-1", "owner-1", models.TierOwner))
	svc, _ := newTestContributorService(repo)

	_, err := svc.Update(context.Background(), "owner-1", "c-1", models.UpdateContributorRequest{EditAccess: models.TierEditor})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestContributorServiceUpdateByOwner(t *testing.T) {
	repo := newContributorRepoStub(
		contributorRow("c-1", "doc-1", "owner-1", models.TierOwner),
		contributorRow("c-2", "doc-1", "viewer-1", models.TierViewer),
	)
	svc, _ := newTestContributorService(repo)

	contributor, err := svc.Update(context.Background(), "owner-1", "c-2", models.UpdateContributorRequest{EditAccess: models.TierEditor})
	require.NoError(t, err)
	assert.Equal(t, models.TierEditor, contributor.EditAccess)
	assert.Equal(t, models.TierEditor, repo.rows["c-2"].EditAccess)
}

func TestContributorServiceDeleteOwnerRowForbidden(t *testing.T) {
	repo := newContributorRepoStub(contributorRow("c-1", "doc-1", "owner-1", models.TierOwner))
	svc, _ := newTestContributorService(repo)

	err := svc.Delete(context.Background(), "owner-1", "c-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestContributorServiceSelfLeave(t *testing.T) {
	repo := newContributorRepoStub(
		contributorRow("c-1", "doc-1", "owner-1", models.TierOwner),
		contributorRow("c-2", "doc-1", "viewer-1", models.TierViewer),
	)
	svc, _ := newTestContributorService(repo)

	require.NoError(t, svc.Delete(context.Background(), "viewer-1", "c-2"))
	assert.Equal(t, []string{"c-2"}, repo.deleted)
}

func TestContributorServiceDeleteByStrangerForbidden(t *testing.T) {
	repo := newContributorRepoStub(
		contributorRow("c-1", "doc-1", "owner-1", models.TierOwner),
		contributorRow("c-2", "doc-1", "viewer-1", models.TierViewer),
	)
	svc, _ := newTestContributorService(repo)

	err := svc.Delete(context.Background(), "stranger", "c-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestContributorServiceGrantPurgesPageListing(t *testing.T) {
	repo := newContributorRepoStub(contributorRow("c-owner", "doc-1", "owner-1", models.TierOwner))
	svc, cacheRepo := newTestContributorService(repo)
	cacheRepo.seed(t, "allPages", []string{"stale"})
	cacheRepo.seed(t, "allPages:user:user-2", []string{"stale"})

	_, err := svc.Grant(context.Background(), "owner-1", models.GrantContributorRequest{
		DocumentID: "doc-1",
		UserID:     strPtr("user-2"),
		EditAccess: models.TierViewer,
	})
	require.NoError(t, err)
	assert.NotContains(t, cacheRepo.data, "allPages")
	assert.NotContains(t, cacheRepo.data, "allPages:user:user-2")
}

func TestContributorServiceRevokePurgesPageListing(t *testing.T) {
	contributors := newContributorRepoStub(
		contributorRow("c-owner", "doc-1", "owner-1", models.TierOwner),
		contributorRow("c-viewer", "doc-1", "viewer-1", models.TierViewer),
	)
	pages := newPageRepoStub(models.Page{ID: "p-1", DocumentID: "doc-1"})
	cache, cacheRepo := newTestCache()
	access := NewAccessService(contributors, nil)
	contributorSvc := NewContributorService(contributors, singleDocResolver{id: "doc-1"}, access, cache, nil, nil)
	pageSvc := NewPageService(pages, singleDocResolver{id: "doc-1"}, contributors, access, cache, nil, nil, PageServiceConfig{MaxNestingDepth: 4})

	listed, _, err := pageSvc.List(context.Background(), "viewer-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Contains(t, cacheRepo.data, "allPages:user:viewer-1")

	require.NoError(t, contributorSvc.Delete(context.Background(), "owner-1", "c-viewer"))
	assert.NotContains(t, cacheRepo.data, "allPages:user:viewer-1")

	listed, hit, err := pageSvc.List(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, listed)
}
