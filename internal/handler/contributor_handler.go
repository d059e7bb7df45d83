package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prathampatel001/KnowledgeBase-v1/internal/models"
	"github.com/prathampatel001/KnowledgeBase-v1/internal/service"
	appErrors "github.com/prathampatel001/KnowledgeBase-v1/pkg/errors"
	"github.com/prathampatel001/KnowledgeBase-v1/pkg/response"
)

// ContributorHandler exposes contributor grant management endpoints.
type ContributorHandler struct {
	service *service.ContributorService
}

// NewContributorHandler constructs a contributor handler.
func NewContributorHandler(svc *service.ContributorService) *ContributorHandler {
	return &ContributorHandler{service: svc}
}

// Grant godoc
// @Summary Grant document access
// @Description Grants editor or viewer access on a document; caller must be the document owner
// @Tags Contributors
// @Accept json
// @Produce json
// @Param payload body models.GrantContributorRequest true "Grant payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /contributor [post]
func (h *ContributorHandler) Grant(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.GrantContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	contributor, err := h.service.Grant(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, contributor)
}

// List godoc
// @Summary List contributors
// @Tags Contributors
// @Produce json
// @Param email query string false "Filter by email, case-insensitive"
// @Success 200 {object} response.Envelope
// @Router /contributor [get]
func (h *ContributorHandler) List(c *gin.Context) {
	filter := models.ContributorFilter{Email: strings.TrimSpace(c.Query("email"))}

	contributors, hit, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contributors, nil, sourceMeta(hit))
}

// Get godoc
// @Summary Get contributor
// @Tags Contributors
// @Produce json
// @Param id path string true "Contributor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contributor/{id} [get]
func (h *ContributorHandler) Get(c *gin.Context) {
	contributor, hit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contributor, nil, sourceMeta(hit))
}

// Update godoc
// @Summary Change contributor access
// @Description Changes a grant between editor and viewer; the owner row is immutable
// @Tags Contributors
// @Accept json
// @Produce json
// @Param id path string true "Contributor ID"
// @Param payload body models.UpdateContributorRequest true "Access payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contributor/{id} [put]
func (h *ContributorHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	contributor, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contributor, nil)
}

// Delete godoc
// @Summary Revoke contributor access
// @Description The row's own user may leave; otherwise the document owner may revoke
// @Tags Contributors
// @Produce json
// @Param id path string true "Contributor ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /contributor/{id} [delete]
func (h *ContributorHandler) Delete(c *gin.Context) {
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
