// Package errors defines the error taxonomy shared by the evaluation core
// and the surfaces built on top of it.
//
// Data problems (a malformed quantity, too few usable points) are carried as
// typed values so callers can degrade gracefully; misuse of the arithmetic
// API (incompatible qualifiers, division by zero) is returned as an error to
// the caller.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParse            ErrorType = "PARSE"
	ErrTypeQualifier        ErrorType = "QUALIFIER"
	ErrTypeDivision         ErrorType = "DIVISION"
	ErrTypeAlignment        ErrorType = "ALIGNMENT"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeNegativeWeight   ErrorType = "NEGATIVE_WEIGHT"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeConfig           ErrorType = "CONFIG"
	ErrTypeExport           ErrorType = "EXPORT"
)

// Sentinels for errors.Is. An *AppError matches the sentinel of its type.
var (
	ErrParse                   = &AppError{Type: ErrTypeParse, Message: "malformed quantity"}
	ErrIncompatibleQualifier   = &AppError{Type: ErrTypeQualifier, Message: "incompatible qualifiers"}
	ErrDivisionByZero          = &AppError{Type: ErrTypeDivision, Message: "division by zero"}
	ErrAlignmentNonTermination = &AppError{Type: ErrTypeAlignment, Message: "alignment iteration cap reached"}
	ErrInsufficientData        = &AppError{Type: ErrTypeInsufficientData, Message: "insufficient data for averaging"}
	ErrNegativeWeight          = &AppError{Type: ErrTypeNegativeWeight, Message: "negative weight"}
	ErrValidation              = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrConfig                  = &AppError{Type: ErrTypeConfig, Message: "invalid configuration"}
	ErrExport                  = &AppError{Type: ErrTypeExport, Message: "export failed"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParseError reports text that does not describe a quantity.
func NewParseError(message string, text string) *AppError {
	return NewAppError(ErrTypeParse, message, nil).WithContext("text", text)
}

// NewQualifierError reports an arithmetic combination of incompatible limits.
func NewQualifierError(op, left, right string) *AppError {
	return NewAppError(ErrTypeQualifier, fmt.Sprintf("cannot %s %s and %s", op, left, right), nil).
		WithContext("left", left).
		WithContext("right", right)
}

// NewDivisionByZeroError reports a division by a zero-valued quantity.
func NewDivisionByZeroError() *AppError {
	return NewAppError(ErrTypeDivision, "division by a zero-valued quantity", nil)
}

// NewAlignmentError reports that the alignment search stopped at its cap.
func NewAlignmentError(iterations int) *AppError {
	return NewAppError(ErrTypeAlignment, fmt.Sprintf("search stopped after %d iterations", iterations), nil).
		WithContext("iterations", iterations)
}

// NewInsufficientDataError reports a group with fewer than two usable points.
func NewInsufficientDataError(usable int) *AppError {
	return NewAppError(ErrTypeInsufficientData, fmt.Sprintf("%d usable point(s), need at least 2", usable), nil).
		WithContext("usable", usable)
}

// NewNegativeWeightError reports a weight requested for a point whose
// uncertainty cannot produce a positive one.
func NewNegativeWeightError(id string, sigma float64) *AppError {
	return NewAppError(ErrTypeNegativeWeight, fmt.Sprintf("point %q has uncertainty %g", id, sigma), nil).
		WithContext("point", id)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewExportError creates a report export error
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}
