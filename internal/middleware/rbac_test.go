package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
)

func rbacTestRouter(handler gin.HandlerFunc, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/things/:id", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	r := rbacTestRouter(RequireRoles(models.RoleSuper), &models.JWTClaims{UserID: "user-1", Role: models.RoleSuper})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/things/abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	r := rbacTestRouter(RequireRoles(models.RoleSuper), &models.JWTClaims{UserID: "user-1", Role: models.RoleStandard})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/things/abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSelfMatchesPathParam(t *testing.T) {
	r := rbacTestRouter(RBAC("SELF"), &models.JWTClaims{UserID: "user-1", Role: models.RoleStandard})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/things/user-1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPut, "/things/user-2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACMissingClaimsUnauthorized(t *testing.T) {
	r := rbacTestRouter(RequireRoles(models.RoleSuper), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/things/abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
