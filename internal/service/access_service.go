package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
)

type accessContributorRepository interface {
	FindByDocumentAndUser(ctx context.Context, documentID, userID string) (*models.Contributor, error)
}

// AccessService resolves a caller's tier on a document from the contributor
// relation. Every document and page operation authorizes through it; the
// per-operation tier sets are exact-match, not a partial order.
type AccessService struct {
	contributors accessContributorRepository
	logger       *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(contributors accessContributorRepository, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{contributors: contributors, logger: logger}
}

// Resolve returns the contributor row binding the user to the document.
// A missing row comes back as ErrForbidden: deliberately indistinguishable
// from an insufficient tier so existence is not leaked.
func (s *AccessService) Resolve(ctx context.Context, documentID, userID string) (*models.Contributor, error) {
	contributor, err := s.contributors.FindByDocumentAndUser(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this document")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve access")
	}
	return contributor, nil
}

// Require resolves the caller's contributor row and checks its tier against
// the allowed set. Both a missing row and an insufficient tier yield
// ErrForbidden.
func (s *AccessService) Require(ctx context.Context, documentID, userID string, allowed ...models.Tier) (*models.Contributor, error) {
	contributor, err := s.Resolve(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	for _, tier := range allowed {
		if contributor.EditAccess == tier {
			return contributor, nil
		}
	}
	s.logger.Debug("tier not in allowed set",
		zap.String("document_id", documentID),
		zap.String("user_id", userID),
		zap.Int("tier", int(contributor.EditAccess)),
	)
	return nil, appErrors.Clone(appErrors.ErrForbidden, "insufficient access to this document")
}

// RequirePresence resolves the caller's contributor row at any tier.
// Presence alone gates reads.
func (s *AccessService) RequirePresence(ctx context.Context, documentID, userID string) (*models.Contributor, error) {
	return s.Resolve(ctx, documentID, userID)
}
