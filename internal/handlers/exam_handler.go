package handlers

import (
	"net/http"
	"time"

	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/services"
	"github.com/edupulse/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// StartExam samples a fresh question set and opens an attempt
// @Summary Start exam
// @Tags exams
// @Accept json
// @Produce json
// @Param request body services.StartExamRequest true "Sampling filters"
// @Success 201 {object} services.StartExamResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/start [post]
func (h *ExamHandler) StartExam(c *gin.Context) {
	h.LogRequest(c, "Starting exam")

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req services.StartExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.examService.Start(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SubmitExam grades and finalizes an attempt
// @Summary Submit exam
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param request body services.SubmitExamRequest true "Submitted answers"
// @Success 200 {object} services.SubmitExamResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/submit/{id} [post]
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Submitting exam", "attempt_id", id)

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req services.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.examService.Submit(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListAttempts lists the caller's own attempts
// @Summary List own attempts
// @Tags exams
// @Produce json
// @Success 200 {object} services.AttemptListResponse
// @Router /exams/attempts [get]
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filters := h.parseAttemptFilters(c)

	resp, err := h.examService.ListAttempts(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAttempt returns one attempt with its review when submitted
// @Summary Get attempt
// @Tags exams
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/attempts/{id} [get]
func (h *ExamHandler) GetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	resp, err := h.examService.GetAttempt(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminListAttempts lists attempts across all users
// @Summary List attempts (staff)
// @Tags exams
// @Produce json
// @Success 200 {object} services.AttemptListResponse
// @Failure 403 {object} ErrorResponse
// @Router /exams/admin/attempts [get]
func (h *ExamHandler) AdminListAttempts(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filters := h.parseAttemptFilters(c)
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	resp, err := h.examService.AdminListAttempts(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminGetAttempt returns any user's attempt for staff review
// @Summary Get attempt (staff)
// @Tags exams
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/admin/attempts/{id} [get]
func (h *ExamHandler) AdminGetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	resp, err := h.examService.AdminGetAttempt(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ExamHandler) parseAttemptFilters(c *gin.Context) repositories.AttemptFilters {
	filters := repositories.AttemptFilters{
		Limit:     h.parseIntQuery(c, "limit", 20),
		Offset:    h.parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if topic := c.Query("topic"); topic != "" {
		filters.Topic = &topic
	}
	if submittedStr := c.Query("submitted"); submittedStr != "" {
		submitted := submittedStr == "true"
		filters.Submitted = &submitted
	}
	if fromStr := c.Query("date_from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filters.DateFrom = &from
		}
	}
	if toStr := c.Query("date_to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			filters.DateTo = &to
		}
	}

	return filters
}
