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

// accessRepoStub maps "documentID|userID" to a contributor row.
type accessRepoStub struct {
	rows map[string]models.Contributor
	err  error
}

func (s *accessRepoStub) FindByDocumentAndUser(ctx context.Context, documentID, userID string) (*models.Contributor, error) {
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.rows[documentID+"|"+userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func accessStubWith(documentID, userID string, tier models.Tier) *accessRepoStub {
	uid := userID
	return &accessRepoStub{rows: map[string]models.Contributor{
		documentID + "|" + userID: {ID: "c-1", DocumentID: documentID, UserID: &uid, EditAccess: tier},
	}}
}

func TestAccessServiceMissingRowIsForbidden(t *testing.T) {
	access := NewAccessService(&accessRepoStub{}, nil)

	_, err := access.Require(context.Background(), "doc-1", "user-1", models.TierOwner)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAccessServiceInsufficientTierIsForbidden(t *testing.T) {
	access := NewAccessService(accessStubWith("doc-1", "user-1", models.TierViewer), nil)

	_, err := access.Require(context.Background(), "doc-1", "user-1", models.TierOwner, models.TierEditor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAccessServiceExactTierPasses(t *testing.T) {
	access := NewAccessService(accessStubWith("doc-1", "user-1", models.TierOwner), nil)

	contributor, err := access.Require(context.Background(), "doc-1", "user-1", models.TierOwner)
	require.NoError(t, err)
	assert.Equal(t, models.TierOwner, contributor.EditAccess)
}

func TestAccessServicePresenceAcceptsAnyTier(t *testing.T) {
	access := NewAccessService(accessStubWith("doc-1", "user-1", models.TierViewer), nil)

	contributor, err := access.RequirePresence(context.Background(), "doc-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TierViewer, contributor.EditAccess)
}

func TestAccessServiceMissingRowAndWrongTierAreIndistinguishable(t *testing.T) {
	missing := NewAccessService(&accessRepoStub{}, nil)
	wrongTier := NewAccessService(accessStubWith("doc-1", "user-1", models.TierViewer), nil)

	_, errMissing := missing.Require(context.Background(), "doc-1", "user-1", models.TierOwner)
	_, errTier := wrongTier.Require(context.Background(), "doc-1", "user-1", models.TierOwner)

	require.Error(t, errMissing)
	require.Error(t, errTier)
	assert.Equal(t, appErrors.FromError(errMissing).Status, appErrors.FromError(errTier).Status)
	assert.Equal(t, appErrors.FromError(errMissing).Code, appErrors.FromError(errTier).Code)
}
