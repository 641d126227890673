package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jlindhorst/studiprogress-api/internal/middleware"
	"github.com/jlindhorst/studiprogress-api/internal/service"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/response"
)

// DashboardHandler exposes the dashboard aggregate endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get godoc
// @Summary Get the study-progress dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, err := h.dashboard.Get(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
