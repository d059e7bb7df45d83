package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/service"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
	"github.com/prathampatel001/KnowledgeBase-v1/pkg/response"
)

// DocumentHandler exposes document CRUD endpoints.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler constructs a document handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Create godoc
// @Summary Create document
// @Description Creates a document and installs the caller as its owner contributor
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body models.CreateDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /document/add [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /document/get [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil, sourceMeta(hit))
}

// ListByUser godoc
// @Summary List documents created by the caller
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /document/getbyuser [get]
func (h *DocumentHandler) ListByUser(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docs, hit, err := h.service.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil, sourceMeta(hit))
}

// Get godoc
// @Summary Get document
// @Description Single document with creator, category and contributors; caller must be a contributor
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /document/get/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	doc, hit, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil, sourceMeta(hit))
}

// Update godoc
// @Summary Update document
// @Description Partial update; caller must hold owner or editor access
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body models.UpdateDocumentRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /document/update/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	doc, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete document
// @Description Hard delete; caller must be the document owner
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /document/delete/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
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
