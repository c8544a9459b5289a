package store

import "fmt"

// APIError is a failed interaction with the backing store's API.
// Status is the HTTP status code; Code and Message carry the store's own
// error payload when present.
type APIError struct {
	Service string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s api error: status %d (%s): %s", e.Service, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error: status %d: %s", e.Service, e.Status, e.Message)
}

// Retryable reports whether the failure is transient. Rate limiting and
// server-side errors are worth retrying; everything else is a caller or
// configuration problem.
func (e *APIError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
