package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/middleware"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// sourceMeta reports whether a read was served from cache.
func sourceMeta(hit bool) map[string]interface{} {
	source := "database"
	if hit {
		source = "cache"
	}
	return map[string]interface{}{"source": source}
}
