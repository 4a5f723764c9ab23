package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/authz"
	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

// taskTransitions lists the permitted status changes. Completed and cancelled
// are terminal.
var taskTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskPending:    {models.TaskInProgress, models.TaskCompleted, models.TaskCancelled},
	models.TaskInProgress: {models.TaskCompleted, models.TaskCancelled},
}

func transitionAllowed(from, to models.TaskStatus) bool {
	for _, s := range taskTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type taskService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewTaskService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) TaskService {
	return &taskService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest, callerID uint) (*TaskResponse, error) {
	s.logger.Info("Creating task", "caller_id", callerID, "assigned_to", req.AssignedTo)

	if errs := s.validator.GetBusinessValidator().ValidateTaskCreate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionCreate, authz.ResourceTask) {
		return nil, NewPermissionError(callerID, 0, "task", "create", "only principals assign tasks")
	}

	assignee, err := s.repo.User().GetByID(ctx, nil, req.AssignedTo)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check assignee: %w", err)
	}
	if !assignee.IsActive {
		return nil, ErrUserInactive
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      models.TaskPending,
		DueDate:     req.DueDate,
		CreatedBy:   callerID,
	}
	if err := s.repo.Task().Create(ctx, nil, task); err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, task)
	s.logger.Info("Task created", "task_id", task.ID, "assigned_to", task.AssignedTo)

	return s.toTaskResponse(task, caller), nil
}

func (s *taskService) GetByID(ctx context.Context, id uint, callerID uint) (*TaskResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Task().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := s.checkReadScope(caller, task); err != nil {
		return nil, err
	}

	return s.toTaskResponse(task, caller), nil
}

// UpdateStatus applies a status transition. The task is re-read under a row
// lock inside the transaction so two concurrent transitions cannot both
// validate against the same stale status.
func (s *taskService) UpdateStatus(ctx context.Context, id uint, newStatus models.TaskStatus, callerID uint) (*TaskResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	var task *models.Task
	var oldStatus models.TaskStatus

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var txErr error
		task, txErr = txRepo.Task().GetForUpdate(ctx, nil, id)
		if txErr != nil {
			if repositories.IsNotFoundError(txErr) {
				return ErrTaskNotFound
			}
			return txErr
		}

		if permErr := s.checkTransitionPermission(caller, task, newStatus); permErr != nil {
			return permErr
		}

		oldStatus = task.Status
		if oldStatus == newStatus {
			return nil
		}
		if !transitionAllowed(oldStatus, newStatus) {
			return NewStateTransitionError(task.ID, oldStatus, newStatus)
		}

		task.Status = newStatus
		return txRepo.Task().Update(ctx, nil, task)
	})
	if err != nil {
		return nil, err
	}

	if oldStatus != task.Status {
		s.publishStatusChanged(ctx, task, oldStatus, callerID)
		s.logger.Info("Task status changed",
			"task_id", task.ID,
			"from", oldStatus,
			"to", task.Status,
			"caller_id", callerID)
	}

	return s.toTaskResponse(task, caller), nil
}

func (s *taskService) Delete(ctx context.Context, id uint, callerID uint) error {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(caller.Role, authz.ActionDelete, authz.ResourceTask) {
		return NewPermissionError(callerID, id, "task", "delete", "only principals and developers remove tasks")
	}

	if err := s.repo.Task().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		return err
	}

	s.logger.Info("Task deleted", "task_id", id, "caller_id", callerID)
	return nil
}

func (s *taskService) List(ctx context.Context, filters repositories.TaskFilters, callerID uint) (*TaskListResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	// Non-staff callers only ever see their own tasks, whatever the filter says.
	if !authz.Can(caller.Role, authz.ActionRead, authz.ResourceTask) {
		if !authz.CanOwn(caller.Role, authz.ActionRead, authz.ResourceTask) {
			return nil, NewPermissionError(callerID, 0, "task", "read", "role cannot read tasks")
		}
		filters.AssignedTo = &caller.ID
	}

	tasks, total, err := s.repo.Task().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	resp := &TaskListResponse{
		Tasks: make([]*TaskResponse, 0, len(tasks)),
		Total: total,
		Size:  len(tasks),
	}
	if filters.Limit > 0 {
		resp.Page = filters.Offset/filters.Limit + 1
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, s.toTaskResponse(t, caller))
	}
	return resp, nil
}

func (s *taskService) GetMyTasks(ctx context.Context, filters repositories.TaskFilters, callerID uint) ([]*TaskResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOwn(caller.Role, authz.ActionRead, authz.ResourceTask) {
		return nil, NewPermissionError(callerID, 0, "task", "read", "role cannot read tasks")
	}

	tasks, err := s.repo.Task().GetByAssignee(ctx, nil, callerID, filters)
	if err != nil {
		return nil, err
	}

	out := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.toTaskResponse(t, caller))
	}
	return out, nil
}

func (s *taskService) GetStats(ctx context.Context, assigneeID uint, callerID uint) (*repositories.TaskStats, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionRead, authz.ResourceTask) && assigneeID != callerID {
		return nil, NewPermissionError(callerID, assigneeID, "task", "read", "not own task statistics")
	}

	return s.repo.Task().GetStats(ctx, nil, assigneeID)
}

func (s *taskService) checkReadScope(caller *models.User, task *models.Task) error {
	if authz.Can(caller.Role, authz.ActionRead, authz.ResourceTask) {
		return nil
	}
	if authz.CanOwn(caller.Role, authz.ActionRead, authz.ResourceTask) && task.AssignedTo == caller.ID {
		return nil
	}
	return NewPermissionError(caller.ID, task.ID, "task", "read", "not assigned to caller")
}

func (s *taskService) checkTransitionPermission(caller *models.User, task *models.Task, newStatus models.TaskStatus) error {
	// Cancellation is reserved for roles holding the cancel action; the
	// assignee's update right does not cover it.
	if newStatus == models.TaskCancelled {
		if authz.Can(caller.Role, authz.ActionCancel, authz.ResourceTask) {
			return nil
		}
		return NewPermissionError(caller.ID, task.ID, "task", "cancel", "only principals cancel tasks")
	}
	if authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceTask) {
		return nil
	}
	if authz.CanOwn(caller.Role, authz.ActionUpdate, authz.ResourceTask) && task.AssignedTo == caller.ID {
		return nil
	}
	return NewPermissionError(caller.ID, task.ID, "task", "update", "not assigned to caller")
}

func (s *taskService) toTaskResponse(task *models.Task, caller *models.User) *TaskResponse {
	canUpdate := !task.Status.IsTerminal() &&
		(authz.Can(caller.Role, authz.ActionCancel, authz.ResourceTask) ||
			(authz.CanOwn(caller.Role, authz.ActionUpdate, authz.ResourceTask) && task.AssignedTo == caller.ID))
	return &TaskResponse{
		Task:            task,
		CanUpdateStatus: canUpdate,
		CanDelete:       authz.Can(caller.Role, authz.ActionDelete, authz.ResourceTask),
	}
}

func (s *taskService) publishAssigned(ctx context.Context, task *models.Task) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.EventTaskAssigned, events.TaskAssignedEvent{
		TaskID:     task.ID,
		Title:      task.Title,
		AssignedTo: task.AssignedTo,
		AssignedBy: task.CreatedBy,
		DueDate:    task.DueDate,
	})
	if err != nil {
		s.logger.Error("Failed to publish task assigned event", "error", err, "task_id", task.ID)
	}
}

func (s *taskService) publishStatusChanged(ctx context.Context, task *models.Task, from models.TaskStatus, changedBy uint) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.EventTaskStatusChanged, events.TaskStatusChangedEvent{
		TaskID:    task.ID,
		From:      from,
		To:        task.Status,
		ChangedBy: changedBy,
	})
	if err != nil {
		s.logger.Error("Failed to publish task status event", "error", err, "task_id", task.ID)
	}
}
