// Package errors provides the structured error type used across ks-email-parser
// and the collector that batch runs use to record per-email failures without
// stopping the run.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// ParserError is a structured error type with context.
type ParserError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Email       string
	Locale      string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Email != "" {
		email := "email:" + e.Email
		if e.Locale != "" {
			email += "/" + e.Locale
		}
		parts = append(parts, email)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ParserError) Is(target error) bool {
	var t *ParserError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ParserError) WithContext(key string, value interface{}) *ParserError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithEmail adds the email identity the error belongs to.
func (e *ParserError) WithEmail(name, locale string) *ParserError {
	e.Email = name
	e.Locale = locale

	return e
}

// WithFile adds file location information.
func (e *ParserError) WithFile(filePath string) *ParserError {
	e.FilePath = filePath

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *ParserError {
	return &ParserError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string) *ParserError {
	return &ParserError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *ParserError {
	return &ParserError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ParserError {
	return &ParserError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ParserError {
	return &ParserError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Common error codes.
const (
	ErrCodeMissingSubject             = "ERR_MISSING_SUBJECT"
	ErrCodeMissingTemplatePlaceholder = "ERR_MISSING_TEMPLATE_PLACEHOLDER"
	ErrCodeTemplateNotFound           = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeInvalidDocument            = "ERR_INVALID_DOCUMENT"
	ErrCodeMissingPatternParam        = "ERR_MISSING_PATTERN_PARAM"
	ErrCodeInvalidPath                = "ERR_INVALID_PATH"
	ErrCodePathTraversal              = "ERR_PATH_TRAVERSAL"
	ErrCodeFileNotFound               = "ERR_FILE_NOT_FOUND"
	ErrCodeConfigInvalid              = "ERR_CONFIG_INVALID"
	ErrCodePlaceholdersInvalid        = "ERR_PLACEHOLDERS_INVALID"
	ErrCodeWriteFailed                = "ERR_WRITE_FAILED"
)

// Sentinels for errors.Is comparisons. Matching uses Type and Code only, so
// errors carrying names or email context still match.
var (
	ErrMissingSubject             = NewRenderError(ErrCodeMissingSubject, "missing subject")
	ErrMissingTemplatePlaceholder = NewRenderError(ErrCodeMissingTemplatePlaceholder, "missing template placeholder")
	ErrTemplateNotFound           = NewRenderError(ErrCodeTemplateNotFound, "template not found")
	ErrMissingPatternParam        = NewConfigError(ErrCodeMissingPatternParam, "missing pattern parameter")
	ErrPlaceholdersInvalid        = NewValidationError(ErrCodePlaceholdersInvalid, "placeholders are inconsistent")
)

// MissingSubject returns the error raised when an email has no subject line.
func MissingSubject() *ParserError {
	return NewRenderError(ErrCodeMissingSubject, "email has no subject")
}

// MissingTemplatePlaceholder returns the error raised in strict mode when a
// template token has no placeholder value.
func MissingTemplatePlaceholder(name string) *ParserError {
	return NewRenderError(ErrCodeMissingTemplatePlaceholder,
		fmt.Sprintf("template placeholder %q has no value", name)).
		WithContext("placeholder", name)
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var te *ParserError
	if errors.As(err, &te) {
		return te.Recoverable
	}

	return false
}

// IsRenderError checks if an error is render-related.
func IsRenderError(err error) bool {
	var te *ParserError
	if errors.As(err, &te) {
		return te.Type == ErrorTypeRender
	}

	return false
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error with appropriate logging.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var te *ParserError
	if !errors.As(err, &te) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", te.Type, "code", te.Code}
	if te.Email != "" {
		fields = append(fields, "email", te.Email, "locale", te.Locale)
	}
	if te.FilePath != "" {
		fields = append(fields, "file", te.FilePath)
	}

	switch te.Type {
	case ErrorTypeRender, ErrorTypeValidation:
		h.logger.Warn(ctx, err, "Email could not be processed", fields...)
	default:
		h.logger.Error(ctx, err, "Error occurred", fields...)
	}
}
