package resumes

import "errors"

var (
	// ErrNotFound indicates no resume matched the lookup.
	ErrNotFound = errors.New("resume not found")
	// ErrInvalidInput indicates missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
)

// PipelineError wraps a step failure with the user-facing status string.
type PipelineError struct {
	Status string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return e.Status
	}
	return e.Status + ": " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Pipeline step status strings shown to the user. These match what the web
// client displays and must not change.
const (
	StatusUploadFailed  = "Failed to upload file"
	StatusConvertFailed = "Failed to convert PDF to image"
	StatusImageFailed   = "Failed to upload image"
	StatusAnalyzeFailed = "Failed to analyze resume"
)
