package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes failures the way callers need to react to them.
type ErrorType string

const (
	// ErrorTypeExtraction means the CV text could not be interpreted into a
	// structured record at all.
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeGeneration means an AI completion exhausted its retry budget.
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeClassification is resolved internally and should not escape
	// the classifier; it exists so the resolution can still be logged.
	ErrorTypeClassification ErrorType = "classification"
	ErrorTypeRetrieval      ErrorType = "retrieval"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeIO             ErrorType = "io"
)

// AppError is a structured application error carrying the failure
// category so the immediate caller can decide what degrades.
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewExtractionError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeExtraction, code, message, cause)
}

func NewGenerationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeGeneration, code, message, cause)
}

func NewClassificationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeClassification, code, message, cause)
}

func NewRetrievalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeRetrieval, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

// IsType reports whether err (or anything it wraps) is an AppError of
// the given type.
func IsType(err error, typ ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == typ
	}
	return false
}

// Common error codes.
const (
	ErrCodeAIServiceFailed   = "AI_SERVICE_FAILED"
	ErrCodeAIResponseInvalid = "AI_RESPONSE_INVALID"
	ErrCodeAITimeout         = "AI_TIMEOUT"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeEmbeddingFailed   = "EMBEDDING_FAILED"
	ErrCodeVectorSearch      = "VECTOR_SEARCH_FAILED"
	ErrCodeAlreadyRouted     = "ROUTING_ALREADY_RESOLVED"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
	ErrCodeFileNotReadable   = "FILE_NOT_READABLE"
)
