package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeHTTPStatus ErrorType = "http_status"
	ErrorTypeExhausted  ErrorType = "exhausted"
	ErrorTypeAborted    ErrorType = "aborted"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeUnknown    ErrorType = "unknown"
)

var (
	// ErrFetchExhausted is returned once the bounded retry budget for a URL is spent.
	ErrFetchExhausted = errors.New("all fetch attempts failed")
	// ErrCrawlAborted stops the whole crawl; no export follows.
	ErrCrawlAborted = errors.New("crawl aborted")
	// ErrFilesDirectory means the download directory could not be created.
	ErrFilesDirectory = errors.New("files directory unavailable")
	// ErrUnexpectedStatus marks any non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
)

// Error represents a typed pipeline error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error wrapping a sentinel or cause
func New(errType ErrorType, code int, err error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Err:     err,
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeHTTPStatus:
		return true
	default:
		return false
	}
}
