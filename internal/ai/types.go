package ai

import (
	"time"

	"github.com/yildizm/mclogsum/internal/common"
)

// SummaryRequest asks a summarizer to explain one log
type SummaryRequest struct {
	// Log is the raw log text
	Log string `json:"log"`

	// Fields are the extracted environment fields, added as prompt context
	Fields common.Fields `json:"fields,omitempty"`

	// Diagnosis is the rule-based result, added as prompt context
	Diagnosis *common.Diagnosis `json:"diagnosis,omitempty"`

	// ProxyTarget overrides the configured endpoint for this request
	ProxyTarget string `json:"proxy,omitempty"`

	// RequestID for request tracking
	RequestID string `json:"request_id,omitempty"`
}

// SummaryResponse is the summarizer's answer
type SummaryResponse struct {
	// Text is the generated explanation
	Text string `json:"text"`

	// Model indicates which model was used
	Model string `json:"model"`

	// Provider that produced the answer
	Provider string `json:"provider"`

	// RequestID matches the original request
	RequestID string `json:"request_id,omitempty"`

	// Duration of the upstream call
	Duration time.Duration `json:"duration"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int `json:"max_retries"`

	// InitialDelay is the initial delay between retries
	InitialDelay time.Duration `json:"initial_delay"`

	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration `json:"max_delay"`
}

// Backoff returns the delay before retry attempt n, starting at 1
func (r RetryConfig) Backoff(attempt int) time.Duration {
	delay := r.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if r.MaxDelay > 0 && delay >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	return delay
}
