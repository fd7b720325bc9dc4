package provider

import (
	"errors"
	"fmt"
)

// Error codes reported by providers
const (
	CodeNotFound       = "NOT_FOUND"
	CodeTransport      = "TRANSPORT"
	CodeHTTPStatus     = "HTTP_STATUS"
	CodeDecode         = "DECODE"
	CodeInvalidRequest = "INVALID_REQUEST"
)

// ErrNotFound matches any ProviderError carrying CodeNotFound.
var ErrNotFound = errors.New("not found")

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int   // HTTP status for CodeHTTPStatus
	Attempts   int   // attempts made before giving up, for CodeTransport
	Err        error // underlying cause
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) succeed for not-found provider errors.
func (e *ProviderError) Is(target error) bool {
	return target == ErrNotFound && e.Code == CodeNotFound
}

// NotFound builds the quiet "no result" error.
func NotFound(providerName, message string) *ProviderError {
	return &ProviderError{Provider: providerName, Code: CodeNotFound, Message: message}
}

// IsNotFound reports whether err means the provider answered but had no match.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	return hasCode(err, CodeTransport)
}

// IsHTTP reports whether err is a non-2xx response.
func IsHTTP(err error) bool {
	return hasCode(err, CodeHTTPStatus)
}

func hasCode(err error, code string) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
