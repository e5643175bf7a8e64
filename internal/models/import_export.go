package models

import "time"

// ImportSummary reports the outcome of a question bank import.
type ImportSummary struct {
	TotalRows        int                     `json:"total_rows"`
	ProcessedRows    int                     `json:"processed_rows"`
	SuccessCount     int                     `json:"success_count"`
	ErrorCount       int                     `json:"error_count"`
	CreatedQuestions []string                `json:"created_questions"`
	Errors           []ImportValidationError `json:"errors"`
	ProcessingTime   time.Duration           `json:"processing_time"`
}

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// ExportRequest narrows which part of the question catalog is exported.
type ExportRequest struct {
	Domains      []Domain          `json:"domains"`
	Difficulties []DifficultyLevel `json:"difficulties"`
	IncludeTips  bool              `json:"include_tips"`
}
