package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/authz"
	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type assignmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewAssignmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) AssignmentService {
	return &assignmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, callerID uint) (*AssignmentResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateAssignmentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionCreate, authz.ResourceAssignment) {
		return nil, NewPermissionError(callerID, 0, "assignment", "create", "assignments are created by teachers")
	}

	if _, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	chapter, err := s.repo.Chapter().GetByID(ctx, nil, req.ChapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}
	if chapter.SubjectID != req.SubjectID {
		return nil, validator.ValidationErrors{
			*validator.NewValidationError("chapter_id", "chapter does not belong to subject", req.ChapterID),
		}
	}

	assignment := &models.Assignment{
		Title:       req.Title,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		ChapterID:   req.ChapterID,
		DueDate:     req.DueDate,
		CreatedBy:   callerID,
	}
	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		return nil, err
	}

	s.publishCreated(ctx, assignment)
	s.logger.Info("Assignment created", "assignment_id", assignment.ID, "caller_id", callerID)

	return s.toAssignmentResponse(assignment, caller), nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint, callerID uint) (*AssignmentResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if err := s.checkReadScope(ctx, caller, assignment); err != nil {
		return nil, err
	}

	return s.toAssignmentResponse(assignment, caller), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, callerID uint) (*AssignmentResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	// Only the creating teacher or an administrator reshapes an assignment.
	if assignment.CreatedBy != callerID && !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceClassAssignment) {
		return nil, NewPermissionError(callerID, id, "assignment", "update", "not the assignment creator")
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = req.Description
	}
	if req.DueDate != nil {
		assignment.DueDate = *req.DueDate
	}

	if err := s.repo.Assignment().Update(ctx, nil, assignment); err != nil {
		return nil, err
	}
	return s.toAssignmentResponse(assignment, caller), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, callerID uint) error {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if assignment.CreatedBy != callerID && !authz.Can(caller.Role, authz.ActionDelete, authz.ResourceClassAssignment) {
		return NewPermissionError(callerID, id, "assignment", "delete", "not the assignment creator")
	}

	if err := s.repo.Assignment().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info("Assignment deleted", "assignment_id", id, "caller_id", callerID)
	return nil
}

func (s *assignmentService) List(ctx context.Context, filters repositories.AssignmentFilters, callerID uint) (*AssignmentListResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	var assignments []*models.Assignment
	var total int64

	if authz.Can(caller.Role, authz.ActionRead, authz.ResourceAssignment) {
		assignments, total, err = s.repo.Assignment().List(ctx, nil, filters)
		if err != nil {
			return nil, err
		}
	} else if authz.CanOwn(caller.Role, authz.ActionRead, authz.ResourceAssignment) {
		// Students see the assignments routed to their classes.
		assignments, err = s.repo.Assignment().GetByStudent(ctx, nil, callerID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				// No profile yet means no class, which means no assignments.
				assignments = nil
			} else {
				return nil, err
			}
		}
		total = int64(len(assignments))
	} else {
		return nil, NewPermissionError(callerID, 0, "assignment", "read", "role cannot read assignments")
	}

	resp := &AssignmentListResponse{
		Assignments: make([]*AssignmentResponse, 0, len(assignments)),
		Total:       total,
		Size:        len(assignments),
	}
	if filters.Limit > 0 {
		resp.Page = filters.Offset/filters.Limit + 1
	}
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, s.toAssignmentResponse(a, caller))
	}
	return resp, nil
}

// ===== CLASSES =====

func (s *assignmentService) CreateClass(ctx context.Context, req *CreateClassRequest, callerID uint) (*models.Class, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionCreate, authz.ResourceClassAssignment) {
		return nil, NewPermissionError(callerID, 0, "class", "create", "classes are managed by principals and developers")
	}

	class := &models.Class{
		Name:         req.Name,
		Grade:        req.Grade,
		Section:      req.Section,
		AcademicYear: req.AcademicYear,
	}
	if err := s.repo.Class().Create(ctx, nil, class); err != nil {
		return nil, err
	}

	s.logger.Info("Class created", "class_id", class.ID, "caller_id", callerID)
	return class, nil
}

func (s *assignmentService) ListClasses(ctx context.Context, limit, offset int, callerID uint) ([]*models.Class, int64, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, 0, err
	}
	return s.repo.Class().List(ctx, nil, limit, offset)
}

func (s *assignmentService) AssignToClass(ctx context.Context, req *AssignClassRequest, callerID uint) (*models.ClassAssignment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionCreate, authz.ResourceClassAssignment) {
		return nil, NewPermissionError(callerID, req.ClassID, "class_assignment", "create", "routing assignments is a principal operation")
	}

	if _, err := s.repo.Assignment().GetByID(ctx, nil, req.AssignmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Class().GetByID(ctx, nil, req.ClassID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	link := &models.ClassAssignment{
		AssignmentID: req.AssignmentID,
		ClassID:      req.ClassID,
		AssignedBy:   callerID,
		AssignedAt:   time.Now(),
	}
	if err := s.repo.Class().AssignToClass(ctx, nil, link); err != nil {
		return nil, err
	}

	s.logger.Info("Assignment routed to class",
		"assignment_id", req.AssignmentID,
		"class_id", req.ClassID,
		"caller_id", callerID)
	return link, nil
}

func (s *assignmentService) UnassignFromClass(ctx context.Context, linkID uint, callerID uint) error {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(caller.Role, authz.ActionDelete, authz.ResourceClassAssignment) {
		return NewPermissionError(callerID, linkID, "class_assignment", "delete", "routing assignments is a principal operation")
	}

	if err := s.repo.Class().UnassignFromClass(ctx, nil, linkID); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("class assignment %d: %w", linkID, ErrAssignmentNotFound)
		}
		return err
	}
	return nil
}

func (s *assignmentService) GetClassAssignments(ctx context.Context, classID uint, callerID uint) ([]*models.ClassAssignment, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionRead, authz.ResourceClassAssignment) &&
		!authz.Can(caller.Role, authz.ActionRead, authz.ResourceAssignment) {
		return nil, NewPermissionError(callerID, classID, "class_assignment", "read", "class rosters are staff only")
	}

	return s.repo.Class().GetClassAssignments(ctx, nil, classID)
}

func (s *assignmentService) checkReadScope(ctx context.Context, caller *models.User, assignment *models.Assignment) error {
	if authz.Can(caller.Role, authz.ActionRead, authz.ResourceAssignment) {
		return nil
	}
	if !authz.CanOwn(caller.Role, authz.ActionRead, authz.ResourceAssignment) {
		return NewPermissionError(caller.ID, assignment.ID, "assignment", "read", "role cannot read assignments")
	}

	visible, err := s.repo.Assignment().GetByStudent(ctx, nil, caller.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(caller.ID, assignment.ID, "assignment", "read", "not assigned to caller's class")
		}
		return err
	}
	for _, a := range visible {
		if a.ID == assignment.ID {
			return nil
		}
	}
	return NewPermissionError(caller.ID, assignment.ID, "assignment", "read", "not assigned to caller's class")
}

func (s *assignmentService) toAssignmentResponse(assignment *models.Assignment, caller *models.User) *AssignmentResponse {
	canManage := assignment.CreatedBy == caller.ID ||
		authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceClassAssignment)
	return &AssignmentResponse{
		Assignment: assignment,
		CanEdit:    canManage,
		CanDelete:  canManage,
	}
}

func (s *assignmentService) publishCreated(ctx context.Context, assignment *models.Assignment) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.EventAssignmentCreated, events.AssignmentCreatedEvent{
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		SubjectID:    assignment.SubjectID,
		ChapterID:    assignment.ChapterID,
		CreatedBy:    assignment.CreatedBy,
		DueDate:      assignment.DueDate,
	})
	if err != nil {
		s.logger.Error("Failed to publish assignment created event", "error", err, "assignment_id", assignment.ID)
	}
}
