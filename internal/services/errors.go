package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

// Re-export validation error types so handlers only import services
type ValidationErrors = validator.ValidationErrors
type ValidationError = validator.ValidationError

// ===== SENTINEL ERRORS =====

var (
	// Generic
	ErrUnauthorized            = errors.New("unauthorized access")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrValidationFailed        = errors.New("validation failed")

	// Users
	ErrUserNotFound      = errors.New("user not found")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrProfileMismatch   = errors.New("profile does not match user role")

	// Content
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz is not published")

	// Academic
	ErrProgressNotFound   = errors.New("progress record not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrClassNotFound      = errors.New("class not found")
)

// ===== PERMISSION ERROR =====

// PermissionError carries enough context for the HTTP layer to build a 403
// and for the log line to explain who was denied what.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== STATE TRANSITION ERROR =====

// StateTransitionError reports an illegal task status change. It maps to 409.
type StateTransitionError struct {
	TaskID uint
	From   models.TaskStatus
	To     models.TaskStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("task %d cannot move from %s to %s", e.TaskID, e.From, e.To)
}

func NewStateTransitionError(taskID uint, from, to models.TaskStatus) *StateTransitionError {
	return &StateTransitionError{TaskID: taskID, From: from, To: to}
}

// IsPermissionError reports whether err is a permission denial.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
