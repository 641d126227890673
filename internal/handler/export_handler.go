package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jlindhorst/studiprogress-api/internal/middleware"
	"github.com/jlindhorst/studiprogress-api/internal/service"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/response"
)

// ExportHandler exposes transcript export endpoints.
type ExportHandler struct {
	export *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Transcript godoc
// @Summary Export the transcript as CSV or PDF
// @Tags Export
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /export/transcript [get]
func (h *ExportHandler) Transcript(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.export.Transcript(c.Request.Context(), claims.StudentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
