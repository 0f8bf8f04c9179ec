package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/services"
	"github.com/edupulse/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService     services.QuestionService
	importExportService services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExportService services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:         NewBaseHandler(logger),
		questionService:     questionService,
		importExportService: importExportService,
	}
}

// CreateQuestion creates a new question
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param question body models.Question true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	created, err := h.questionService.Create(c.Request.Context(), &question, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ReplaceQuestion replaces a question document wholesale
// @Summary Replace question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param question body models.Question true "Full replacement document"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) ReplaceQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Replacing question", "question_id", id)

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	replaced, err := h.questionService.Replace(c.Request.Context(), id, &question, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, replaced)
}

// DeleteQuestion removes a question
// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// ListQuestions lists questions with filters and pagination
// @Summary List questions
// @Tags questions
// @Produce json
// @Success 200 {object} services.QuestionListResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filters := h.parseQuestionFilters(c)

	resp, err := h.questionService.List(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuestionCounts returns per-type and per-difficulty bank counts
// @Summary Question counts
// @Tags questions
// @Produce json
// @Success 200 {object} repositories.QuestionCounts
// @Router /questions/counts [get]
func (h *QuestionHandler) GetQuestionCounts(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filters := h.parseQuestionFilters(c)
	filters.Limit = 0
	filters.Offset = 0

	counts, err := h.questionService.Counts(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// ImportQuestions bulk-loads questions from an uploaded csv or xlsx file
// @Summary Import questions
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Question file (.csv or .xlsx)"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /questions/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Importing questions", "filename", fileHeader.Filename)

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.importExportService.ImportQuestions(c.Request.Context(), file, fileHeader.Filename, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportQuestions downloads the filtered question bank as csv or xlsx
// @Summary Export questions
// @Tags questions
// @Produce application/octet-stream
// @Param format query string false "csv or xlsx (default xlsx)"
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Router /questions/export [get]
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filters := h.parseQuestionFilters(c)
	format := c.DefaultQuery("format", "xlsx")

	h.LogRequest(c, "Exporting questions", "format", format)

	data, err := h.importExportService.ExportQuestions(c.Request.Context(), filters, format, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("questions-%s.%s", time.Now().Format("20060102-150405"), format)
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{
		Limit:     h.parseIntQuery(c, "limit", 20),
		Offset:    h.parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		questionType := models.QuestionType(typeStr)
		filters.Type = &questionType
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if topic := c.Query("topic"); topic != "" {
		filters.Topic = &topic
	}
	if board := c.Query("board"); board != "" {
		filters.Board = &board
	}
	if class := c.Query("class"); class != "" {
		filters.Class = &class
	}
	if stageStr := c.Query("stage"); stageStr != "" {
		stage := h.parseIntQuery(c, "stage", 0)
		filters.Stage = &stage
	}
	if difficultyStr := c.Query("difficulty"); difficultyStr != "" {
		difficulty := models.DifficultyLevel(difficultyStr)
		filters.Difficulty = &difficulty
	}
	if levelStr := c.Query("level"); levelStr != "" {
		level := models.KnowledgeLevel(levelStr)
		filters.Level = &level
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	return filters
}
