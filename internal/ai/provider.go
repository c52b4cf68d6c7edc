package ai

import (
	"context"
)

// Summarizer produces a free-form explanation of a log with an LLM
type Summarizer interface {
	// Name returns the provider name (e.g., "gemini")
	Name() string

	// Summarize asks the model for the main error cause and suggestions
	Summarize(ctx context.Context, req *SummaryRequest) (*SummaryResponse, error)

	// Close cleans up provider resources
	Close() error
}
