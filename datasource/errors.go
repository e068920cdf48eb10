package datasource

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream marks transport failures and non-success responses from a weather API
	ErrUpstream = errors.New("upstream weather API failure")

	// ErrMalformedResponse marks a response that decoded but lacks expected fields
	ErrMalformedResponse = errors.New("malformed forecast response")

	// ErrMissingCredential is returned by LoadConfig when a required secret is unset
	ErrMissingCredential = errors.New("missing credential")
)

// APIError is a non-success HTTP response from a weather API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error (status %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrUpstream) match API errors
func (e *APIError) Unwrap() error {
	return ErrUpstream
}
