package models

import (
	"time"
)

// Export job status constants
const (
	ExportStatusPending   = "pending"
	ExportStatusRunning   = "running"
	ExportStatusSucceeded = "succeeded"
	ExportStatusFailed    = "failed"
)

// Export format constants
const (
	ExportFormatPDF = "pdf"
)

// ExportJob tracks one asynchronous render of a paper to a document
type ExportJob struct {
	ID         string     `json:"id"`
	PaperID    string     `json:"paper_id"`
	PaperName  string     `json:"paper_name"`
	Format     string     `json:"format"`
	Status     string     `json:"status"`
	StorageKey string     `json:"storage_key,omitempty"`
	URL        string     `json:"url,omitempty"`
	FileSize   int64      `json:"file_size,omitempty"`
	PageCount  int        `json:"page_count,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// IsFinished reports whether the job reached a terminal status
func (j ExportJob) IsFinished() bool {
	return j.Status == ExportStatusSucceeded || j.Status == ExportStatusFailed
}
