package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/middleware"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/service"
)

type docRepoFake struct {
	docs map[string]models.Document
}

func (f *docRepoFake) CreateWithOwner(ctx context.Context, doc *models.Document, owner *models.Contributor) error {
	if doc.ID == "" {
		doc.ID = "doc-1"
	}
	owner.EditAccess = models.TierOwner
	f.docs[doc.ID] = *doc
	return nil
}

func (f *docRepoFake) FindByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &doc, nil
}

func (f *docRepoFake) FindDetailByID(ctx context.Context, id string) (*models.DocumentDetail, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.DocumentDetail{Document: doc}, nil
}

func (f *docRepoFake) List(ctx context.Context) ([]models.DocumentDetail, error) {
	var details []models.DocumentDetail
	for _, doc := range f.docs {
		details = append(details, models.DocumentDetail{Document: doc})
	}
	return details, nil
}

func (f *docRepoFake) ListByCreator(ctx context.Context, userID string) ([]models.DocumentDetail, error) {
	return nil, nil
}

func (f *docRepoFake) Update(ctx context.Context, doc *models.Document) error {
	f.docs[doc.ID] = *doc
	return nil
}

func (f *docRepoFake) Delete(ctx context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.docs, id)
	return nil
}

type docCategoryFake struct{}

func (docCategoryFake) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if id != "cat-1" {
		return nil, sql.ErrNoRows
	}
	return &models.Category{ID: id}, nil
}

type docContributorFake struct {
	tiers map[string]models.Tier
}

func (f docContributorFake) FindByDocumentAndUser(ctx context.Context, documentID, userID string) (*models.Contributor, error) {
	tier, ok := f.tiers[documentID+"|"+userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	uid := userID
	return &models.Contributor{ID: "c-1", DocumentID: documentID, UserID: &uid, EditAccess: tier}, nil
}

func (f docContributorFake) ListByDocument(ctx context.Context, documentID string) ([]models.Contributor, error) {
	return nil, nil
}

func newDocumentTestHandler(docs map[string]models.Document, tiers map[string]models.Tier) *DocumentHandler {
	repo := &docRepoFake{docs: docs}
	contributors := docContributorFake{tiers: tiers}
	svc := service.NewDocumentService(
		repo,
		docCategoryFake{},
		contributors,
		service.NewAccessService(contributors, nil),
		service.NewCacheService(nil, nil, 0, nil, false),
		nil,
		nil,
	)
	return NewDocumentHandler(svc)
}

func docTestContext(t *testing.T, method, path, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestDocumentHandlerCreate(t *testing.T) {
	handler := newDocumentTestHandler(map[string]models.Document{}, nil)
	claims := &models.JWTClaims{UserID: "user-1", Email: "pat@example.com", Role: models.RoleStandard}

	c, w := docTestContext(t, http.MethodPost, "/document/add", `{"document_name":"Runbook","category":"cat-1"}`, claims)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Runbook", envelope.Data.Name)
	assert.Equal(t, "user-1", envelope.Data.CreatedByUserID)
}

func TestDocumentHandlerCreateInvalidBody(t *testing.T) {
	handler := newDocumentTestHandler(map[string]models.Document{}, nil)
	claims := &models.JWTClaims{UserID: "user-1"}

	c, w := docTestContext(t, http.MethodPost, "/document/add", `{"document_name":`, claims)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerGetForbiddenForStranger(t *testing.T) {
	handler := newDocumentTestHandler(
		map[string]models.Document{"doc-1": {ID: "doc-1", Name: "Runbook"}},
		map[string]models.Tier{},
	)
	claims := &models.JWTClaims{UserID: "stranger"}

	c, w := docTestContext(t, http.MethodGet, "/document/get/doc-1", "", claims)
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}
	handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentHandlerGetAsContributor(t *testing.T) {
	handler := newDocumentTestHandler(
		map[string]models.Document{"doc-1": {ID: "doc-1", Name: "Runbook"}},
		map[string]models.Tier{"doc-1|user-1": models.TierViewer},
	)
	claims := &models.JWTClaims{UserID: "user-1"}

	c, w := docTestContext(t, http.MethodGet, "/document/get/doc-1", "", claims)
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDocumentHandlerDeleteEditorForbidden(t *testing.T) {
	handler := newDocumentTestHandler(
		map[string]models.Document{"doc-1": {ID: "doc-1"}},
		map[string]models.Tier{"doc-1|user-2": models.TierEditor},
	)
	claims := &models.JWTClaims{UserID: "user-2"}

	c, w := docTestContext(t, http.MethodDelete, "/document/delete/doc-1", "", claims)
	c.Params = gin.Params{{Key: "id", Value: "doc-1"}}
	handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentHandlerMissingClaimsUnauthorized(t *testing.T) {
	handler := newDocumentTestHandler(map[string]models.Document{}, nil)

	c, w := docTestContext(t, http.MethodPost, "/document/add", `{"document_name":"Runbook","category":"cat-1"}`, nil)
	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
