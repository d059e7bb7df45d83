package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/service"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
	"github.com/prathampatel001/KnowledgeBase-v1/pkg/response"
)

// CategoryHandler exposes category CRUD endpoints.
type CategoryHandler struct {
	service *service.CategoryService
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// Create godoc
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body models.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /add_category [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	category, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// List godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /get_category [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil, sourceMeta(hit))
}

// Get godoc
// @Summary Get category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /get_category/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, hit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil, sourceMeta(hit))
}

// Update godoc
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body models.UpdateCategoryRequest true "Category payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /update_category/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	category, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /remove_category/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
