package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// MaterialHandler wires HTTP endpoints to the material service.
type MaterialHandler struct {
	service *service.MaterialService
}

// NewMaterialHandler creates a new handler.
func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: svc}
}

func materialFilterFromQuery(c *gin.Context, publicOnly bool) models.MaterialFilter {
	return models.MaterialFilter{
		Subject:    c.Query("subject"),
		GradeLevel: c.Query("grade_level"),
		Type:       c.Query("type"),
		Search:     c.Query("search"),
		PublicOnly: publicOnly,
		Page:       queryInt(c, "page", 1),
		PerPage:    queryInt(c, "per_page", 20),
	}
}

// List godoc
// @Summary List materials
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param subject query string false "Filter by subject"
// @Param grade_level query string false "Filter by grade level"
// @Param type query string false "Filter by material type"
// @Param search query string false "Search title, description or author"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	materials, pagination, err := h.service.List(c.Request.Context(), materialFilterFromQuery(c, false))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// ListPublic godoc
// @Summary Public material catalog
// @Description List public materials only
// @Tags Materials
// @Produce json
// @Param subject query string false "Filter by subject"
// @Param grade_level query string false "Filter by grade level"
// @Param type query string false "Filter by material type"
// @Param search query string false "Search title, description or author"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/materials [get]
func (h *MaterialHandler) ListPublic(c *gin.Context) {
	materials, pagination, err := h.service.List(c.Request.Context(), materialFilterFromQuery(c, true))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// Get godoc
// @Summary Get material
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	material, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// GetPublic godoc
// @Summary Public material detail
// @Description Fetch one public material and count the view
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/materials/{id} [get]
func (h *MaterialHandler) GetPublic(c *gin.Context) {
	material, err := h.service.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// FilterOptions godoc
// @Summary Material filter options
// @Description Distinct subjects, grade levels and types
// @Tags Materials
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/materials/filters [get]
func (h *MaterialHandler) FilterOptions(c *gin.Context) {
	options, err := h.service.FilterOptions(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Create godoc
// @Summary Publish material
// @Tags Materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateMaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}

	material, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Material created successfully", material)
}

// Update godoc
// @Summary Update material
// @Tags Materials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Param payload body models.UpdateMaterialRequest true "Material payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials/{id} [put]
func (h *MaterialHandler) Update(c *gin.Context) {
	var req models.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid material payload"))
		return
	}

	material, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Material updated successfully", material)
}

// Delete godoc
// @Summary Delete material
// @Tags Materials
// @Produce json
// @Security BearerAuth
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Material deleted successfully", nil)
}
