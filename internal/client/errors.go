package client

import "fmt"

// NotFoundError reports an id the pipeline does not know. Polling an id
// that returns it can never succeed.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// APIError is a well-formed error response from the pipeline. Message is
// the backend's own wording and is surfaced to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("pipeline returned status %d", e.StatusCode)
}
