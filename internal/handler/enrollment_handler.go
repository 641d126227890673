package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jlindhorst/studiprogress-api/internal/models"
	"github.com/jlindhorst/studiprogress-api/internal/service"
	appErrors "github.com/jlindhorst/studiprogress-api/pkg/errors"
	"github.com/jlindhorst/studiprogress-api/pkg/response"
)

// EnrollmentHandler exposes enrollment and attempt endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param modulId query string false "Filter by module"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter
	filter.StudentID = c.Query("studentId")
	filter.ModulID = c.Query("modulId")
	filter.Status = models.EnrollmentStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Create godoc
// @Summary Enroll the student in a module
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Detail godoc
// @Summary Get enrollment detail with slots and attempts
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Detail(c *gin.Context) {
	detail, err := h.enrollments.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete an enrollment with its attempts
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204
// @Security BearerAuth
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddAttempt godoc
// @Summary Add an examination attempt to a specific slot
// @Tags Attempts
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.CreateAttemptRequest true "Attempt payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/attempts [post]
func (h *EnrollmentHandler) AddAttempt(c *gin.Context) {
	var req service.CreateAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attempt, err := h.enrollments.AddAttempt(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attempt)
}

// AddAttemptAuto godoc
// @Summary Add a graded attempt to the next open slot
// @Tags Attempts
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.AutoAttemptRequest true "Attempt payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/attempts/auto [post]
func (h *EnrollmentHandler) AddAttemptAuto(c *gin.Context) {
	var req service.AutoAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attempt, err := h.enrollments.AddAttemptAuto(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attempt)
}

// RecordGrade godoc
// @Summary Record the grade on a pending attempt
// @Tags Attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param payload body service.GradeAttemptRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attempts/{id}/grade [put]
func (h *EnrollmentHandler) RecordGrade(c *gin.Context) {
	var req service.GradeAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attempt, err := h.enrollments.RecordGrade(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attempt, nil)
}
