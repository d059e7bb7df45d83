package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/service"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
	"github.com/prathampatel001/KnowledgeBase-v1/pkg/response"
)

// PageHandler exposes page CRUD endpoints.
type PageHandler struct {
	service *service.PageService
}

// NewPageHandler constructs a page handler.
func NewPageHandler(svc *service.PageService) *PageHandler {
	return &PageHandler{service: svc}
}

// Create godoc
// @Summary Create page
// @Description Creates a page under a document; caller must be the document owner
// @Tags Pages
// @Accept json
// @Produce json
// @Param payload body models.CreatePageRequest true "Page payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pages [post]
func (h *PageHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	page, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, page)
}

// List godoc
// @Summary List visible pages
// @Description All pages of every document the caller contributes to, at any tier
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages [get]
func (h *PageHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pages, hit, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pages, nil, sourceMeta(hit))
}

// Get godoc
// @Summary Get page
// @Description Page with its parent chain, document, creator and edit trail; caller must contribute to the page's document
// @Tags Pages
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/{id} [get]
func (h *PageHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, hit, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil, sourceMeta(hit))
}

// Update godoc
// @Summary Update page
// @Description Partial update; caller must hold owner or editor access on the page's document
// @Tags Pages
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param payload body models.UpdatePageRequest true "Page payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/{id} [put]
func (h *PageHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	page, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Delete godoc
// @Summary Delete page
// @Description Hard delete; caller must be the document owner
// @Tags Pages
// @Produce json
// @Param id path string true "Page ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/{id} [delete]
func (h *PageHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
