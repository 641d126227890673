package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	"github.com/jlindhorst/studiprogress-api/internal/service"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/response"
)

// CatalogHandler exposes institution, program, module and course endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type createHochschuleRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListHochschulen godoc
// @Summary List institutions
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hochschulen [get]
func (h *CatalogHandler) ListHochschulen(c *gin.Context) {
	hochschulen, err := h.catalog.ListHochschulen(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hochschulen, nil)
}

// CreateHochschule godoc
// @Summary Create or resolve an institution by name
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body createHochschuleRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /hochschulen [post]
func (h *CatalogHandler) CreateHochschule(c *gin.Context) {
	var req createHochschuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hochschule, err := h.catalog.FindOrCreateHochschule(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hochschule)
}

// ListStudiengaenge godoc
// @Summary List programs of study
// @Tags Catalog
// @Produce json
// @Param hochschuleId query string false "Filter by institution"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /studiengaenge [get]
func (h *CatalogHandler) ListStudiengaenge(c *gin.Context) {
	studiengaenge, err := h.catalog.ListStudiengaenge(c.Request.Context(), c.Query("hochschuleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, studiengaenge, nil)
}

// CreateStudiengang godoc
// @Summary Create or resolve a program of study
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateStudiengangRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /studiengaenge [post]
func (h *CatalogHandler) CreateStudiengang(c *gin.Context) {
	var req service.CreateStudiengangRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	studiengang, err := h.catalog.FindOrCreateStudiengang(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, studiengang)
}

// ListModule godoc
// @Summary List modules
// @Tags Catalog
// @Produce json
// @Param studiengangId query string false "Filter by program"
// @Param search query string false "Search by name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /module [get]
func (h *CatalogHandler) ListModule(c *gin.Context) {
	var filter models.ModulFilter
	filter.StudiengangID = c.Query("studiengangId")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	module, pagination, err := h.catalog.ListModule(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, pagination)
}

// CreateModul godoc
// @Summary Create a module with its courses
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateModulRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /module [post]
func (h *CatalogHandler) CreateModul(c *gin.Context) {
	var req service.CreateModulRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	modul, err := h.catalog.CreateModul(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, modul)
}

// GetModul godoc
// @Summary Get a module
// @Tags Catalog
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /module/{id} [get]
func (h *CatalogHandler) GetModul(c *gin.Context) {
	modul, err := h.catalog.GetModul(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modul, nil)
}

// ListKurse godoc
// @Summary List courses of a module
// @Tags Catalog
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /module/{id}/kurse [get]
func (h *CatalogHandler) ListKurse(c *gin.Context) {
	kurse, err := h.catalog.ListKurse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, kurse, nil)
}

// AddKurs godoc
// @Summary Add a course to a module
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body service.CreateKursRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /module/{id}/kurse [post]
func (h *CatalogHandler) AddKurs(c *gin.Context) {
	var req service.CreateKursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if _, err := h.catalog.GetModul(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.catalog.AddKurs(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}
