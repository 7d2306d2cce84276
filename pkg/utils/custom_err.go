package utils

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidInquiryType  = errors.New("invalid inquiry type")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionClosed       = errors.New("session closed")
	ErrGenerationFailure   = errors.New("inquiry generation failed")
	ErrGenerationInFlight  = errors.New("inquiry generation already in progress")
	ErrGenerationStale     = errors.New("inquiry generation superseded by newer input")
	ErrSubmissionFailure   = errors.New("inquiry submission failed")
	ErrSubmissionInFlight  = errors.New("inquiry submission already in progress")
	ErrDuplicateSubmission = errors.New("inquiry already submitted for this session")
	ErrDatabaseError       = errors.New("database error")
)

// ValidationError blocks a wizard transition. It is always recoverable by
// correcting the named field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
