package handlers

import (
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/services"
	"github.com/edupulse/exam-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	examHandler     *ExamHandler
	questionHandler *QuestionHandler

	repo        repositories.Repository
	authClient  *casdoorsdk.Client
	userService services.UserService
	logger      utils.Logger
}

func NewHandlerManager(
	examService services.ExamService,
	questionService services.QuestionService,
	importExportService services.ImportExportService,
	userService services.UserService,
	repo repositories.Repository,
	authClient *casdoorsdk.Client,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler:     NewExamHandler(examService, logger),
		questionHandler: NewQuestionHandler(questionService, importExportService, logger),
		repo:            repo,
		authClient:      authClient,
		userService:     userService,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.authClient, hm.userService, hm.logger))
	{
		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.POST("/start", hm.examHandler.StartExam)
			exams.POST("/submit/:id", hm.examHandler.SubmitExam)
			exams.GET("/attempts", hm.examHandler.ListAttempts)
			exams.GET("/attempts/:id", hm.examHandler.GetAttempt)

			// Staff views across all users
			admin := exams.Group("/admin", RequireRoles(models.RoleTeacher, models.RoleAdmin))
			{
				admin.GET("/attempts", hm.examHandler.AdminListAttempts)
				admin.GET("/attempts/:id", hm.examHandler.AdminGetAttempt)
			}
		}

		// Question bank routes, staff only
		questions := v1.Group("/questions", RequireRoles(models.RoleTeacher, models.RoleAdmin))
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/counts", hm.questionHandler.GetQuestionCounts)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("/export", hm.questionHandler.ExportQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.ReplaceQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": "exam-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exam-service",
	})
}
