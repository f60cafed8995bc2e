package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for resume feedback.
type Client interface {
	Feedback(ctx context.Context, input FeedbackInput) (json.RawMessage, error)
}

// FeedbackInput captures the inputs needed to review a resume against a job.
type FeedbackInput struct {
	ResumeText     string
	JobTitle       string
	JobDescription string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Feedback returns ErrNotImplemented.
func (PlaceholderClient) Feedback(ctx context.Context, input FeedbackInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
