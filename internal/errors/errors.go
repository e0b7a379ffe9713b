package errors

import (
	"errors"
	"fmt"
)

// ErrorType identifies which pipeline stage produced an error. The HTTP
// layer maps these to status codes, so values are stable wire strings.
type ErrorType string

const (
	ErrTypeSchemaLoad    ErrorType = "schema_load"
	ErrTypeSQLGeneration ErrorType = "sql_generation"
	ErrTypeSQLRejected   ErrorType = "sql_rejected"
	ErrTypeSQLExecution  ErrorType = "sql_execution"
	ErrTypeAnswerFormat  ErrorType = "answer_format"
	ErrTypeLLMBackend    ErrorType = "llm_backend"
	ErrTypeDatabase      ErrorType = "database"
	ErrTypeValidation    ErrorType = "validation"
	ErrTypeConfig        ErrorType = "config"
	ErrTypeInternal      ErrorType = "internal"
)

// Error carries a stage type, a message, an optional cause, and optional
// user-facing suggestions.
type Error struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion appends a hint shown to the caller alongside the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New builds an error for the given stage
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf builds an error for the given stage with a formatted message
func Newf(errType ErrorType, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches stage context to an underlying error
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message, Cause: err}
}

// Wrapf attaches stage context with a formatted message
func Wrapf(err error, errType ErrorType, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...), Cause: err}
}

// IsType reports whether err (or anything it wraps) carries the given type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType extracts the stage type, defaulting to internal for plain errors
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// NewConfigError builds a config error naming the offending field
func NewConfigError(message, field string) *Error {
	err := New(ErrTypeConfig, message)
	if field != "" {
		err.Message = fmt.Sprintf("%s (field: %s)", message, field)
	}

	return err.
		WithSuggestion("Check the STORELENS_* environment variables").
		WithSuggestion("Run with --help to see the available flags")
}
