package services

import (
	"errors"
	"fmt"

	apperrors "github.com/edupulse/exam-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionAccessDenied   = errors.New("access denied to question")
	ErrQuestionInvalidType    = errors.New("invalid question type")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")
	ErrNoQuestionsAvailable   = errors.New("no questions match the requested filters")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAccessDenied     = errors.New("access denied to attempt")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptNotSubmitted     = errors.New("attempt not submitted yet")

	// Import/export errors
	ErrImportEmptyFile   = errors.New("import file contains no question rows")
	ErrImportUnsupported = errors.New("unsupported import file format")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrNoQuestionsAvailable) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrQuestionAccessDenied) ||
		errors.Is(err, ErrAttemptAccessDenied) ||
		errors.Is(err, ErrInsufficientPermissions)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsPermission checks if error carries per-resource permission details
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAttemptAlreadySubmitted)
}
