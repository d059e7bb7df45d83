package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/handler"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/service"
)

type routeUserRepo struct {
	byEmail map[string]*models.User
}

func (r *routeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *routeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *routeUserRepo) Create(_ context.Context, user *models.User) error {
	r.byEmail[user.Email] = user
	return nil
}

type routeCategoryRepo struct{}

func (routeCategoryRepo) FindByID(context.Context, string) (*models.Category, error) {
	return nil, sql.ErrNoRows
}

func (routeCategoryRepo) FindByName(context.Context, string) (*models.Category, error) {
	return nil, sql.ErrNoRows
}

func (routeCategoryRepo) FindDetailByID(_ context.Context, id string) (*models.CategoryDetail, error) {
	return &models.CategoryDetail{Category: models.Category{ID: id, Name: "general"}}, nil
}

func (routeCategoryRepo) List(context.Context) ([]models.CategoryDetail, error) {
	return []models.CategoryDetail{{Category: models.Category{ID: "cat-1", Name: "general"}}}, nil
}

func (routeCategoryRepo) Create(context.Context, *models.Category) error { return nil }
func (routeCategoryRepo) Update(context.Context, *models.Category) error { return nil }
func (routeCategoryRepo) Delete(context.Context, string) error           { return nil }

func newRouteTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &routeUserRepo{byEmail: map[string]*models.User{
		"standard@example.com": {ID: "u-std", Name: "Standard", Email: "standard@example.com", PasswordHash: string(hash), Role: models.RoleStandard},
		"super@example.com":    {ID: "u-sup", Name: "Super", Email: "super@example.com", PasswordHash: string(hash), Role: models.RoleSuper},
	}}

	authSvc := service.NewAuthService(users, nil, nil, service.AuthConfig{
		TokenSecret: "route-test-secret",
		TokenExpiry: time.Hour,
	})
	cacheSvc := service.NewCacheService(nil, nil, 0, nil, false)
	categorySvc := service.NewCategoryService(routeCategoryRepo{}, cacheSvc, nil, nil)

	r := gin.New()
	registerRoutes(r.Group("/api"), authSvc, routeHandlers{
		auth:        handler.NewAuthHandler(authSvc),
		user:        handler.NewUserHandler(nil),
		category:    handler.NewCategoryHandler(categorySvc),
		document:    handler.NewDocumentHandler(nil),
		contributor: handler.NewContributorHandler(nil),
		page:        handler.NewPageHandler(nil),
	})
	return r
}

func routeLoginToken(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"password1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func routeGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCategoryReadsRejectStandardRole(t *testing.T) {
	r := newRouteTestRouter(t)
	token := routeLoginToken(t, r, "standard@example.com")

	assert.Equal(t, http.StatusForbidden, routeGet(r, "/api/get_category", token).Code)
	assert.Equal(t, http.StatusForbidden, routeGet(r, "/api/get_category/cat-1", token).Code)
}

func TestCategoryReadsAllowSuperRole(t *testing.T) {
	r := newRouteTestRouter(t)
	token := routeLoginToken(t, r, "super@example.com")

	rec := routeGet(r, "/api/get_category", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []models.CategoryDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "cat-1", envelope.Data[0].ID)

	assert.Equal(t, http.StatusOK, routeGet(r, "/api/get_category/cat-1", token).Code)
}

func TestCategoryReadsRejectMissingToken(t *testing.T) {
	r := newRouteTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, routeGet(r, "/api/get_category", "").Code)
}
