package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeExtraction = "EXTRACTION_ERROR"
	CodeStorage    = "STORAGE_ERROR"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrExtraction   = errors.New("extraction failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// extractionCause joins ErrExtraction with the underlying cause so both match errors.Is.
type extractionCause struct {
	err error
}

func (c extractionCause) Error() string {
	if c.err == nil {
		return ErrExtraction.Error()
	}
	return c.err.Error()
}

func (c extractionCause) Unwrap() []error {
	if c.err == nil {
		return []error{ErrExtraction}
	}
	return []error{ErrExtraction, c.err}
}

// NewExtractionError reports a backend-level failure for a single document.
func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(CodeExtraction, message, extractionCause{err: cause})
}

// IsExtractionError reports whether err aborted a single (document, backend) run.
func IsExtractionError(err error) bool {
	return errors.Is(err, ErrExtraction)
}
