package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/services"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	importExport    services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		importExport:    importExport,
	}
}

// CreateQuestion creates a new catalog question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.questionService.CreateQuestion(c.Request.Context(), &question); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// CreateQuestionsBatch creates several questions atomically
func (h *QuestionHandler) CreateQuestionsBatch(c *gin.Context) {
	var questions []*models.Question
	if err := c.ShouldBindJSON(&questions); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating question batch", "count", len(questions))

	if err := h.questionService.CreateQuestionBatch(c.Request.Context(), questions); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(questions)})
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
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
	question.ID = id

	if err := h.questionService.UpdateQuestion(c.Request.Context(), &question); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "question deleted"})
}

// ListQuestions filters the catalog by domain, difficulty, type, and tag
// query parameters.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := repositories.QuestionFilters{
		Tags: c.QueryArray("tag"),
	}
	for _, domain := range c.QueryArray("domain") {
		filters.Domains = append(filters.Domains, models.Domain(domain))
	}
	for _, difficulty := range c.QueryArray("difficulty") {
		filters.Difficulties = append(filters.Difficulties, models.DifficultyLevel(difficulty))
	}
	for _, questionType := range c.QueryArray("type") {
		filters.Types = append(filters.Types, models.QuestionType(questionType))
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = offset
	}

	questions, total, err := h.questionService.ListQuestions(c.Request.Context(), filters)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
	})
}

func (h *QuestionHandler) CountByDomain(c *gin.Context) {
	counts, err := h.questionService.CountByDomain(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

// ImportQuestions ingests a CSV or Excel upload into the catalog.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing questions", "filename", header.Filename)

	summary, err := h.importExport.ImportQuestionsFromFile(c.Request.Context(), file, header.Filename)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportQuestions streams the filtered catalog as CSV or Excel.
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	req := models.ExportRequest{
		IncludeTips: c.Query("include_tips") != "false",
	}
	for _, domain := range c.QueryArray("domain") {
		req.Domains = append(req.Domains, models.Domain(domain))
	}
	for _, difficulty := range c.QueryArray("difficulty") {
		req.Difficulties = append(req.Difficulties, models.DifficultyLevel(difficulty))
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		data, err := h.importExport.ExportQuestionsToCSV(c.Request.Context(), req)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.importExport.ExportQuestionsToExcel(c.Request.Context(), req)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
	}
}
