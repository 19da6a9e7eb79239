package errors

import (
	"errors"
	"os"
)

// Wrap wraps an error with additional context, creating a ParserError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *ParserError {
	if err == nil {
		return nil
	}

	// Keep the identity of an inner ParserError so callers can still log it
	var pe *ParserError
	if errors.As(err, &pe) {
		var ctx map[string]interface{}
		if len(pe.Context) > 0 {
			ctx = make(map[string]interface{}, len(pe.Context))
			for k, v := range pe.Context {
				ctx[k] = v
			}
		}
		return &ParserError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       pe,
			Context:     ctx,
			Email:       pe.Email,
			Locale:      pe.Locale,
			FilePath:    pe.FilePath,
			Recoverable: pe.Recoverable,
		}
	}

	return &ParserError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeRender,
	}
}

// WrapIO wraps a filesystem error, mapping missing files to ErrCodeFileNotFound
func WrapIO(err error, message, path string) *ParserError {
	if err == nil {
		return nil
	}
	code := ErrCodeWriteFailed
	if errors.Is(err, os.ErrNotExist) {
		code = ErrCodeFileNotFound
	}
	return Wrap(err, ErrorTypeIO, code, message).WithFile(path)
}

// WrapRender wraps an error as a render error with email context
func WrapRender(err error, code, message, email, locale string) *ParserError {
	pe := Wrap(err, ErrorTypeRender, code, message)
	if pe != nil {
		pe.WithEmail(email, locale)
	}
	return pe
}

// IsNotFound reports whether err is a missing-file error, structured or not
func IsNotFound(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	var pe *ParserError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeFileNotFound
	}
	return false
}

// ExtractContext returns the context map of the outermost ParserError
func ExtractContext(err error) map[string]interface{} {
	var pe *ParserError
	if errors.As(err, &pe) {
		return pe.Context
	}
	return nil
}
