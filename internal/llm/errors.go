package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotInitialized is returned when a completion is requested
	// before InitClient has constructed the API client.
	ErrClientNotInitialized = errors.New("LLM client not initialized")

	// ErrNoChoices is returned when the API answers without any choice.
	ErrNoChoices = errors.New("no choices returned")
)

// ValidationError reports an invalid field in a Request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks that a request carries at least one message and that
// every message uses a known role.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return &ValidationError{Field: "messages", Reason: "at least one message is required"}
	}
	for i, msg := range r.Messages {
		if !msg.Role.Valid() {
			return &ValidationError{
				Field:  fmt.Sprintf("messages[%d].role", i),
				Reason: fmt.Sprintf("unknown role %q", msg.Role),
			}
		}
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return &ValidationError{Field: "temperature", Reason: "must be between 0 and 2"}
	}
	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return &ValidationError{Field: "maxTokens", Reason: "must be positive"}
	}
	return nil
}
