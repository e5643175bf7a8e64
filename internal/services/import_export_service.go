package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/netplus-prep/assessment-service/internal/models"
	"github.com/netplus-prep/assessment-service/internal/repositories"
	"github.com/netplus-prep/assessment-service/internal/utils"
)

// maxOptionColumns bounds the option_a..option_f import columns.
const maxOptionColumns = 6

var optionColumnNames = []string{"option_a", "option_b", "option_c", "option_d", "option_e", "option_f"}

// ImportExportService moves question catalogs in and out of CSV and Excel
// workbooks.
type ImportExportService interface {
	ImportQuestionsFromFile(ctx context.Context, reader io.Reader, filename string) (*models.ImportSummary, error)
	ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*models.ImportSummary, error)
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*models.ImportSummary, error)

	ExportQuestionsToCSV(ctx context.Context, req models.ExportRequest) ([]byte, error)
	ExportQuestionsToExcel(ctx context.Context, req models.ExportRequest) ([]byte, error)
}

type importExportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	content   *utils.QuestionValidator
	questions QuestionService
}

func NewImportExportService(repo repositories.Repository, questions QuestionService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		content:   utils.NewQuestionValidator(),
		questions: questions,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, reader io.Reader, filename string) (*models.ImportSummary, error) {
	s.logger.Info("Starting file import", "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, reader)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, reader)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*models.ImportSummary, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, NewValidationError("file", "CSV must have header row and at least one data row", len(records))
	}

	return s.importRows(ctx, records[0], records[1:])
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*models.ImportSummary, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "Excel must have header row and at least one data row", len(rows))
	}

	return s.importRows(ctx, rows[0], rows[1:])
}

func (s *importExportService) importRows(ctx context.Context, headers []string, rows [][]string) (*models.ImportSummary, error) {
	started := time.Now()

	headerMap := make(map[string]int)
	for i, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	requiredColumns := []string{"question_type", "exam_domain", "question_text", "correct_answers"}
	for _, col := range requiredColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows)}
	var questions []*models.Question

	for rowIndex, record := range rows {
		question, rowErrors := s.parseRow(record, headerMap, rowIndex+2)
		if len(rowErrors) > 0 {
			summary.Errors = append(summary.Errors, rowErrors...)
			summary.ErrorCount++
		} else if question != nil {
			questions = append(questions, question)
			summary.SuccessCount++
		}
		summary.ProcessedRows++
	}

	if len(questions) > 0 {
		if err := s.questions.CreateQuestionBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
		for _, question := range questions {
			summary.CreatedQuestions = append(summary.CreatedQuestions, question.ID)
		}
	}

	summary.ProcessingTime = time.Since(started)

	s.logger.Info("Import completed",
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	return summary, nil
}

// ===== EXPORT OPERATIONS =====

var exportHeaders = []string{
	"Question Type", "Exam Domain", "Difficulty", "Question Text",
	"Option A", "Option B", "Option C", "Option D", "Option E", "Option F",
	"Correct Answers", "Tags", "Explanation", "Exam Tip",
}

func (s *importExportService) ExportQuestionsToCSV(ctx context.Context, req models.ExportRequest) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range questions {
		if err := writer.Write(s.questionToRow(&questions[i], req.IncludeTips)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, req models.ExportRequest) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Questions"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex := range questions {
		row := s.questionToRow(&questions[rowIndex], req.IncludeTips)
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== HELPER FUNCTIONS =====

func (s *importExportService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []models.ImportValidationError) {
	var errs []models.ImportValidationError

	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}

	questionTypeStr := strings.ToLower(getColumn("question_type"))
	questionType := models.QuestionType(questionTypeStr)
	switch questionType {
	case models.SingleChoice, models.MultiSelect, models.TrueFalse:
	default:
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "question_type", Message: "unsupported question type", Value: questionTypeStr,
		})
		return nil, errs
	}

	domain := models.Domain(getColumn("exam_domain"))
	if _, ok := models.DomainNames[domain]; !ok {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "exam_domain", Message: "unknown exam domain", Value: string(domain),
		})
		return nil, errs
	}

	questionText := getColumn("question_text")
	if questionText == "" {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "question_text", Message: "required field", Value: questionText,
		})
		return nil, errs
	}

	difficulty := models.DifficultyMedium
	switch strings.ToLower(getColumn("difficulty")) {
	case "easy":
		difficulty = models.DifficultyEasy
	case "hard":
		difficulty = models.DifficultyHard
	}

	var options []models.Option
	for i, colName := range optionColumnNames {
		text := getColumn(colName)
		if text == "" {
			continue
		}
		options = append(options, models.Option{
			ID:   string(rune('a' + i)),
			Text: text,
		})
	}
	if len(options) < 2 {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "options", Message: "must have at least 2 options", Value: "",
		})
		return nil, errs
	}

	// Correct answers arrive as letters, e.g. "A" or "A,C".
	correctCount := 0
	for _, part := range strings.Split(strings.ToUpper(getColumn("correct_answers")), ",") {
		part = strings.TrimSpace(part)
		if len(part) != 1 || part[0] < 'A' || part[0] >= 'A'+maxOptionColumns {
			continue
		}
		index := int(part[0] - 'A')
		if index < len(options) {
			options[index].IsCorrect = true
			correctCount++
		}
	}
	if correctCount == 0 {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "correct_answers", Message: "must specify at least one correct answer letter", Value: getColumn("correct_answers"),
		})
		return nil, errs
	}

	var tags []string
	if tagsStr := getColumn("tags"); tagsStr != "" {
		for _, tag := range strings.Split(tagsStr, ",") {
			tags = append(tags, strings.TrimSpace(tag))
		}
	}

	question := &models.Question{
		Type:        questionType,
		Domain:      domain,
		DomainName:  models.DomainNames[domain],
		Difficulty:  difficulty,
		Question:    questionText,
		Options:     options,
		Explanation: getColumn("explanation"),
		ExamTip:     getColumn("exam_tip"),
		Tags:        tags,
	}

	if err := s.content.ValidateQuestion(question); err != nil {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "question", Message: err.Error(), Value: questionText,
		})
		return nil, errs
	}

	return question, nil
}

func (s *importExportService) questionsForExport(ctx context.Context, req models.ExportRequest) ([]models.Question, error) {
	questions, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{
		Domains:      req.Domains,
		Difficulties: req.Difficulties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for export: %w", err)
	}
	return questions, nil
}

func (s *importExportService) questionToRow(question *models.Question, includeTips bool) []string {
	row := make([]string, len(exportHeaders))
	row[0] = string(question.Type)
	row[1] = string(question.Domain)
	row[2] = string(question.Difficulty)
	row[3] = question.Question

	var correctLetters []string
	for i, option := range question.Options {
		if i >= maxOptionColumns {
			break
		}
		row[4+i] = option.Text
		if option.IsCorrect {
			correctLetters = append(correctLetters, string(rune('A'+i)))
		}
	}
	row[10] = strings.Join(correctLetters, ",")
	row[11] = strings.Join(question.Tags, ",")
	row[12] = question.Explanation
	if includeTips {
		row[13] = question.ExamTip
	}
	return row
}
