package domain

import "fmt"

type FileStatus string

const (
	FileSucceeded FileStatus = "succeeded"
	FileFailed    FileStatus = "failed"
)

// FileReport is the outcome of one assigned file within a run.
type FileReport struct {
	File             string     `json:"file"`
	Status           FileStatus `json:"status"`
	DocumentsWritten int        `json:"documents_written"`
	Error            string     `json:"error,omitempty"`
}

type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunResult aggregates one rebuild run. Error is set only when the run was
// aborted before any file could be processed (store connection failure).
type RunResult struct {
	WorkerID       string       `json:"worker_id"`
	Files          []FileReport `json:"files"`
	OverallStatus  RunStatus    `json:"overall_status"`
	ElapsedSeconds float64      `json:"elapsed_seconds"`
	Error          string       `json:"error,omitempty"`
}

func (r RunResult) Succeeded() bool {
	return r.OverallStatus == RunSucceeded
}

// DocumentsWritten sums the documents written across all file reports.
func (r RunResult) DocumentsWritten() int {
	total := 0
	for _, f := range r.Files {
		total += f.DocumentsWritten
	}
	return total
}

// Summary renders the human-readable completion message reported to the
// trigger caller and to the master. It carries the underlying error text but
// never a stack trace.
func (r RunResult) Summary() string {
	if r.Succeeded() {
		return fmt.Sprintf(
			"Data rebuild completed successfully. Worker: %s (%d files, %d documents written)",
			r.WorkerID, len(r.Files), r.DocumentsWritten(),
		)
	}
	if r.Error != "" {
		return fmt.Sprintf("Data rebuild failed. Worker: %s (%s)", r.WorkerID, r.Error)
	}

	failed := 0
	firstErr := ""
	for _, f := range r.Files {
		if f.Status != FileFailed {
			continue
		}
		failed++
		if firstErr == "" {
			firstErr = f.Error
		}
	}
	return fmt.Sprintf(
		"Data rebuild failed. Worker: %s (%d of %d files failed; first error: %s)",
		r.WorkerID, failed, len(r.Files), firstErr,
	)
}
