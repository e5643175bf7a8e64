package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

type HandlerManager struct {
	quizHandler     *QuizHandler
	scenarioHandler *ScenarioHandler
	progressHandler *ProgressHandler
	questionHandler *QuestionHandler
}

func NewHandlerManager(
	quizService services.QuizService,
	scoreService *services.ScoreService,
	scenarioService services.ScenarioService,
	progressService services.ProgressService,
	questionService services.QuestionService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:     NewQuizHandler(quizService, scoreService, progressService, logger),
		scenarioHandler: NewScenarioHandler(scenarioService, progressService, logger),
		progressHandler: NewProgressHandler(progressService, logger),
		questionHandler: NewQuestionHandler(questionService, importExport, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Quiz session routes
		quiz := v1.Group("/quiz")
		{
			quiz.POST("/start", hm.quizHandler.StartQuiz)
			quiz.POST("/answer", hm.quizHandler.SubmitAnswer)
			quiz.POST("/next", hm.quizHandler.NextQuestion)
			quiz.POST("/pause", hm.quizHandler.PauseQuiz)
			quiz.POST("/resume", hm.quizHandler.ResumeQuiz)
			quiz.POST("/retry-incorrect", hm.quizHandler.RetryIncorrect)
			quiz.POST("/resume-session", hm.quizHandler.ResumeSavedSession)
			quiz.DELETE("", hm.quizHandler.ResetQuiz)
			quiz.GET("/state", hm.quizHandler.GetState)
			quiz.GET("/score", hm.quizHandler.GetScore)
		}

		// Scenario routes
		scenarios := v1.Group("/scenarios")
		{
			scenarios.GET("", hm.scenarioHandler.ListScenarios)
			scenarios.GET("/:id", hm.scenarioHandler.GetScenario)
			scenarios.POST("/:id/start", hm.scenarioHandler.StartScenario)
		}

		// Scenario attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.GET("", hm.scenarioHandler.ListAttempts)
			attempts.POST("/:attempt_id/phases", hm.scenarioHandler.SubmitPhase)
			attempts.POST("/:attempt_id/complete", hm.scenarioHandler.CompleteScenario)
			attempts.POST("/:attempt_id/abandon", hm.scenarioHandler.AbandonScenario)
			attempts.GET("/:attempt_id/analysis", hm.scenarioHandler.GetScoreAnalysis)
		}

		// Progress routes
		progress := v1.Group("/progress")
		{
			progress.GET("", hm.progressHandler.GetProgress)
			progress.GET("/domains", hm.progressHandler.GetDomainRollups)
			progress.GET("/readiness", hm.progressHandler.GetExamReadiness)
			progress.GET("/study-plan", hm.progressHandler.GetStudyPlan)
		}

		// Question catalog routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/batch", hm.questionHandler.CreateQuestionsBatch)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/counts", hm.questionHandler.CountByDomain)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("/export", hm.questionHandler.ExportQuestions)
		}
	}
}
