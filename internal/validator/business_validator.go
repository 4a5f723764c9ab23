package validator

import (
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/school-service/internal/models"
)

// BusinessValidator implements domain rules that struct tags cannot express.
type BusinessValidator struct {
	validate *validatorv10.Validate
}

func NewBusinessValidator(validate *validatorv10.Validate) *BusinessValidator {
	return &BusinessValidator{validate: validate}
}

// ValidateProgressUpdate checks the completion percentage range before any
// storage access happens.
func (bv *BusinessValidator) ValidateProgressUpdate(req *ProgressUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	if req.CompletionPercentage < 0 || req.CompletionPercentage > 100 {
		errors = append(errors, *NewValidationError(
			"completion_percentage", "must be between 0 and 100", req.CompletionPercentage))
	}

	return errors
}

// ValidateUserCreate checks that the submitted profile matches the role.
func (bv *BusinessValidator) ValidateUserCreate(req *UserCreateRequest) ValidationErrors {
	var errors ValidationErrors

	switch req.Role {
	case models.RoleStudent:
		if req.StudentProfile == nil {
			errors = append(errors, *NewValidationError("student_profile", "is required for role student", nil))
		}
	case models.RoleTeacher, models.RolePrincipal, models.RoleDeveloper:
		// Profiles optional for staff roles
	}

	if req.StudentProfile != nil && req.Role != models.RoleStudent {
		errors = append(errors, *NewValidationError("student_profile", "does not match role", req.Role))
	}
	if req.TeacherProfile != nil && req.Role != models.RoleTeacher {
		errors = append(errors, *NewValidationError("teacher_profile", "does not match role", req.Role))
	}
	if req.PrincipalProfile != nil && req.Role != models.RolePrincipal {
		errors = append(errors, *NewValidationError("principal_profile", "does not match role", req.Role))
	}
	if req.DeveloperProfile != nil && req.Role != models.RoleDeveloper {
		errors = append(errors, *NewValidationError("developer_profile", "does not match role", req.Role))
	}

	return errors
}

// ValidateTaskCreate enforces task scheduling rules.
func (bv *BusinessValidator) ValidateTaskCreate(req *TaskCreateRequest) ValidationErrors {
	var errors ValidationErrors

	if !req.DueDate.IsZero() && req.DueDate.Before(time.Now()) {
		errors = append(errors, *NewValidationError("due_date", "must be in the future", req.DueDate))
	}

	return errors
}

// ValidateAssignmentCreate enforces assignment scheduling rules.
func (bv *BusinessValidator) ValidateAssignmentCreate(req *AssignmentCreateRequest) ValidationErrors {
	var errors ValidationErrors

	if !req.DueDate.IsZero() && req.DueDate.Before(time.Now()) {
		errors = append(errors, *NewValidationError("due_date", "must be in the future", req.DueDate))
	}

	return errors
}

// ValidateQuizResult checks result consistency.
func (bv *BusinessValidator) ValidateQuizResult(req *QuizResultRequest) ValidationErrors {
	var errors ValidationErrors

	if req.Score > req.MaxScore {
		errors = append(errors, *NewValidationError("score", "cannot exceed max_score", req.Score))
	}

	return errors
}
