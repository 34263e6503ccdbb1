package models

import (
	"time"
)

// AnalysisReport represents the outcome of one submit-and-analyze invocation
type AnalysisReport struct {
	OperationID string
	ServerURL   string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Files submitted, per origin
	FilesSubmitted int
	ByOrigin       map[Origin]int
	BytesSubmitted int64

	// Response is nil when the request never completed
	Response *AnalysisResponse

	// Err is the failure for non-success statuses
	Err error

	Status ReportStatus

	// Hidden is closed once the progress indicator has been hidden
	Hidden <-chan struct{}
}

// ReportStatus represents the overall result
type ReportStatus string

const (
	// StatusSuccess indicates comparisons were received and rendered
	StatusSuccess ReportStatus = "success"
	// StatusServerError indicates the server answered with an error field
	StatusServerError ReportStatus = "server_error"
	// StatusFailed indicates a transport or decoding failure
	StatusFailed ReportStatus = "failed"
	// StatusNoInput indicates nothing was selected
	StatusNoInput ReportStatus = "no_input"
)

// ExitCode returns the process exit code for the status
func (s ReportStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusServerError:
		return 1
	case StatusFailed:
		return 2
	case StatusNoInput:
		return 3
	default:
		return 2
	}
}

// WaitHidden blocks until the progress indicator is hidden.
// It returns immediately when nothing was shown.
func (r *AnalysisReport) WaitHidden() {
	if r == nil || r.Hidden == nil {
		return
	}
	<-r.Hidden
}
