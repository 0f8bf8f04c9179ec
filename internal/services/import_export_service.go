package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edupulse/exam-service/internal/cache"
	"github.com/edupulse/exam-service/internal/events"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// importColumns is the canonical column order for both import and export.
// Content is the raw JSON payload for the row's declared type.
var importColumns = []string{
	"type", "subject", "topic", "board", "class", "stage",
	"difficulty", "level", "tags", "content",
}

type importExportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     cache.CacheService
	publisher events.EventPublisher
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cacheService cache.CacheService, publisher events.EventPublisher) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
		publisher: publisher,
	}
}

// ===== IMPORT =====

func (s *importExportService) ImportQuestions(ctx context.Context, reader io.Reader, filename string, actor Actor) (*ImportResult, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, 0, "question", "import", "requires teacher or admin role")
	}

	s.logger.Info("Starting question import", "filename", filename, "actor", actor.ID)

	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		rows, err = readCSVRows(reader)
	case ".xlsx":
		rows, err = readExcelRows(reader)
	default:
		return nil, NewValidationError("file", "unsupported file format, expected .csv or .xlsx", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, ErrImportEmptyFile
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range importColumns {
		if col == "board" || col == "class" || col == "tags" {
			continue // optional columns
		}
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}

	for rowIndex, row := range rows[1:] {
		rowNum := rowIndex + 2
		question, rowErr := s.parseRow(row, headerMap, rowNum, actor.ID)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			result.ErrorCount++
			continue
		}

		if err := s.repo.Question().Create(ctx, question); err != nil {
			result.Errors = append(result.Errors, ImportRowError{
				Row: rowNum, Column: "", Message: fmt.Sprintf("failed to save: %v", err),
			})
			result.ErrorCount++
			continue
		}
		result.SuccessCount++
	}

	if result.SuccessCount > 0 {
		if err := s.cache.DeletePattern(ctx, questionCachePrefix+"*"); err != nil {
			s.logger.Warn("Question cache invalidation failed", "error", err)
		}
		if s.publisher != nil {
			event := events.NewQuestionsImportedEvent(actor.ID, filename, result.SuccessCount, result.ErrorCount)
			if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
				s.logger.Error("Failed to publish import event", "error", err)
			}
		}
	}

	s.logger.Info("Question import completed",
		"filename", filename,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

func (s *importExportService) parseRow(row []string, headerMap map[string]int, rowNum int, creatorID string) (*models.Question, *ImportRowError) {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	stage, err := strconv.Atoi(getColumn("stage"))
	if err != nil {
		return nil, &ImportRowError{Row: rowNum, Column: "stage", Message: "must be an integer", Value: getColumn("stage")}
	}

	var tags datatypes.JSON
	if tagsStr := getColumn("tags"); tagsStr != "" {
		parts := strings.Split(tagsStr, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		tags, _ = json.Marshal(parts)
	}

	question := &models.Question{
		Type:       models.QuestionType(strings.ToLower(getColumn("type"))),
		Subject:    getColumn("subject"),
		Topic:      getColumn("topic"),
		Board:      getColumn("board"),
		Class:      getColumn("class"),
		Stage:      stage,
		Difficulty: models.DifficultyLevel(strings.ToLower(getColumn("difficulty"))),
		Level:      models.KnowledgeLevel(strings.ToLower(getColumn("level"))),
		Tags:       tags,
		Content:    datatypes.JSON(getColumn("content")),
		CreatedBy:  creatorID,
	}

	if err := s.validator.Validate(question); err != nil {
		return nil, &ImportRowError{Row: rowNum, Column: "", Message: err.Error()}
	}
	if err := s.validator.Question().ValidateAndNormalize(question); err != nil {
		return nil, &ImportRowError{Row: rowNum, Column: "content", Message: err.Error()}
	}

	return question, nil
}

// ===== EXPORT =====

func (s *importExportService) ExportQuestions(ctx context.Context, filters repositories.QuestionFilters, format string, actor Actor) ([]byte, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, 0, "question", "export", "requires teacher or admin role")
	}

	// Export is unpaginated by design; the filters bound the set instead
	filters.Limit = 0
	filters.Offset = 0

	questions, _, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for export: %w", err)
	}

	switch strings.ToLower(format) {
	case "csv":
		return exportCSV(questions)
	case "", "xlsx":
		return exportExcel(questions)
	default:
		return nil, NewValidationError("format", "unsupported export format, expected csv or xlsx", format)
	}
}

func exportCSV(questions []*models.Question) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(importColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, q := range questions {
		if err := writer.Write(questionToRow(q)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func exportExcel(questions []*models.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Questions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range importColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, q := range questions {
		for colIndex, value := range questionToRow(q) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func questionToRow(q *models.Question) []string {
	return []string{
		string(q.Type),
		q.Subject,
		q.Topic,
		q.Board,
		q.Class,
		strconv.Itoa(q.Stage),
		string(q.Difficulty),
		string(q.Level),
		strings.Join(q.TagList(), ","),
		string(q.Content),
	}
}

// ===== FILE READERS =====

func readCSVRows(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func readExcelRows(reader io.Reader) ([][]string, error) {
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
	return rows, nil
}
