package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapsToSentinel(t *testing.T) {
	err := New(ErrorTypeExhausted, 503, ErrFetchExhausted, "gave up on %s", "http://example.test")
	wrapped := fmt.Errorf("page 3: %w", err)

	assert.True(t, errors.Is(wrapped, ErrFetchExhausted))
	assert.False(t, errors.Is(wrapped, ErrCrawlAborted))
	var typed *Error
	assert.True(t, errors.As(wrapped, &typed))
	assert.Equal(t, 503, typed.Code)
	assert.Equal(t, "exhausted error (code 503): gave up on http://example.test", err.Error())
}

func TestErrorWithoutCode(t *testing.T) {
	err := New(ErrorTypeNetwork, 0, nil, "connection refused")
	assert.Equal(t, "network error: connection refused", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeHTTPStatus))
	assert.False(t, IsRetryable(ErrorTypeParsing))
	assert.False(t, IsRetryable(ErrorTypeExhausted))
}
