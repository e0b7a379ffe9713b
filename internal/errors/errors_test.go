package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeValidation, "test error message")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "test error message", err.Message)
	assert.NoError(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeDatabase, "failed to connect to %s", "database")

	assert.Equal(t, ErrTypeDatabase, err.Type)
	assert.Equal(t, "failed to connect to database", err.Message)
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, ErrTypeSQLExecution, "bounded query failed")

	assert.Equal(t, ErrTypeSQLExecution, wrappedErr.Type)
	assert.Equal(t, "bounded query failed", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrapf(
		originalErr,
		ErrTypeSchemaLoad,
		"failed to introspect %s:%d",
		"localhost",
		5432,
	)

	assert.Equal(t, ErrTypeSchemaLoad, wrappedErr.Type)
	assert.Equal(t, "failed to introspect localhost:5432", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrTypeSQLRejected,
				Message: "statement contains disallowed keyword",
			},
			expected: "sql_rejected: statement contains disallowed keyword",
		},
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTypeDatabase,
				Message: "query failed",
				Cause:   errors.New("connection timeout"),
			},
			expected: "database: query failed (caused by: connection timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	originalErr := errors.New("root cause")
	wrapped := Wrap(originalErr, ErrTypeLLMBackend, "backend call failed")

	assert.Equal(t, originalErr, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, originalErr))
}

func TestIsType(t *testing.T) {
	err := New(ErrTypeSQLRejected, "rejected")

	assert.True(t, IsType(err, ErrTypeSQLRejected))
	assert.False(t, IsType(err, ErrTypeSQLExecution))
	assert.False(t, IsType(errors.New("plain"), ErrTypeSQLRejected))
}

func TestIsTypeWrappedInStandardError(t *testing.T) {
	inner := New(ErrTypeSchemaLoad, "metadata query failed")
	outer := fmt.Errorf("describing schema: %w", inner)

	assert.True(t, IsType(outer, ErrTypeSchemaLoad))
	assert.Equal(t, ErrTypeSchemaLoad, GetType(outer))
}

func TestGetTypeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("plain error")))
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrTypeConfig, "bad value").
		WithSuggestion("check the config file")

	assert.Len(t, err.Suggestions, 1)
	assert.Equal(t, "check the config file", err.Suggestions[0])
}
