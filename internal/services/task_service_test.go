package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

// Fixture IDs: 1 student, 3 assignee teacher, 4 principal, 5 another teacher,
// 6 developer. Task 100 is assigned to teacher 3.
func newTaskFixture(status models.TaskStatus) (*mockRepository, *events.MockEventPublisher, TaskService) {
	repo := &mockRepository{
		user: newMockUserRepo(
			testUser(1, models.RoleStudent),
			testUser(3, models.RoleTeacher),
			testUser(4, models.RolePrincipal),
			testUser(5, models.RoleTeacher),
			testUser(6, models.RoleDeveloper),
		),
		task: newMockTaskRepo(&models.Task{
			ID:         100,
			Title:      "Prepare midterm review",
			AssignedTo: 3,
			Status:     status,
			DueDate:    time.Now().Add(72 * time.Hour),
			CreatedBy:  4,
		}),
	}
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewTaskService(repo, nil, testLogger(), validator.New(), publisher)
	return repo, publisher, svc
}

func TestUpdateStatus_Transitions(t *testing.T) {
	// Cancellations run as the principal; other transitions as the assignee.
	tests := []struct {
		name     string
		from     models.TaskStatus
		to       models.TaskStatus
		callerID uint
		wantErr  bool
	}{
		{name: "pending to in_progress", from: models.TaskPending, to: models.TaskInProgress, callerID: 3},
		{name: "pending to completed", from: models.TaskPending, to: models.TaskCompleted, callerID: 3},
		{name: "pending to cancelled", from: models.TaskPending, to: models.TaskCancelled, callerID: 4},
		{name: "in_progress to completed", from: models.TaskInProgress, to: models.TaskCompleted, callerID: 3},
		{name: "in_progress to cancelled", from: models.TaskInProgress, to: models.TaskCancelled, callerID: 4},
		{name: "completed to in_progress", from: models.TaskCompleted, to: models.TaskInProgress, callerID: 3, wantErr: true},
		{name: "completed to pending", from: models.TaskCompleted, to: models.TaskPending, callerID: 3, wantErr: true},
		{name: "cancelled to completed", from: models.TaskCancelled, to: models.TaskCompleted, callerID: 3, wantErr: true},
		{name: "in_progress to pending", from: models.TaskInProgress, to: models.TaskPending, callerID: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newTaskFixture(tt.from)

			resp, err := svc.UpdateStatus(context.Background(), 100, tt.to, tt.callerID)
			if tt.wantErr {
				var ste *StateTransitionError
				if !errors.As(err, &ste) {
					t.Fatalf("error = %v, want StateTransitionError", err)
				}
				if ste.From != tt.from || ste.To != tt.to {
					t.Errorf("transition error %s -> %s, want %s -> %s", ste.From, ste.To, tt.from, tt.to)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() error = %v", err)
			}
			if resp.Status != tt.to {
				t.Errorf("status = %q, want %q", resp.Status, tt.to)
			}
		})
	}
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	_, publisher, svc := newTaskFixture(models.TaskInProgress)

	resp, err := svc.UpdateStatus(context.Background(), 100, models.TaskInProgress, 3)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if resp.Status != models.TaskInProgress {
		t.Errorf("status = %q, want %q", resp.Status, models.TaskInProgress)
	}
	if got := publisher.GetPublishedEvents(); len(got) != 0 {
		t.Errorf("published %d events for an unchanged status, want 0", len(got))
	}
}

func TestUpdateStatus_PublishesStatusChanged(t *testing.T) {
	_, publisher, svc := newTaskFixture(models.TaskPending)

	if _, err := svc.UpdateStatus(context.Background(), 100, models.TaskInProgress, 3); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if published[0].Type != events.EventTaskStatusChanged {
		t.Errorf("event type = %q, want %q", published[0].Type, events.EventTaskStatusChanged)
	}
	if published[0].Source != events.EventSource {
		t.Errorf("event source = %q, want %q", published[0].Source, events.EventSource)
	}
}

func TestUpdateStatus_Permissions(t *testing.T) {
	tests := []struct {
		name     string
		callerID uint
		to       models.TaskStatus
		wantPerm bool
	}{
		{name: "assignee advances own task", callerID: 3, to: models.TaskInProgress},
		{name: "other teacher denied", callerID: 5, to: models.TaskInProgress, wantPerm: true},
		{name: "student denied", callerID: 1, to: models.TaskInProgress, wantPerm: true},
		{name: "principal cancels any task", callerID: 4, to: models.TaskCancelled},
		{name: "principal cannot advance someone's task", callerID: 4, to: models.TaskInProgress, wantPerm: true},
		{name: "assignee cannot cancel own task", callerID: 3, to: models.TaskCancelled, wantPerm: true},
		{name: "student cannot cancel", callerID: 1, to: models.TaskCancelled, wantPerm: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newTaskFixture(models.TaskPending)

			_, err := svc.UpdateStatus(context.Background(), 100, tt.to, tt.callerID)
			if tt.wantPerm && !IsPermissionError(err) {
				t.Errorf("error = %v, want permission error", err)
			}
			if !tt.wantPerm && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
		})
	}
}

func TestUpdateStatus_TaskNotFound(t *testing.T) {
	_, _, svc := newTaskFixture(models.TaskPending)

	_, err := svc.UpdateStatus(context.Background(), 999, models.TaskInProgress, 3)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("error = %v, want ErrTaskNotFound", err)
	}
}

func TestCreateTask(t *testing.T) {
	_, publisher, svc := newTaskFixture(models.TaskPending)

	resp, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:      "Submit grade sheets",
		AssignedTo: 3,
		DueDate:    time.Now().Add(48 * time.Hour),
	}, 4)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Status != models.TaskPending {
		t.Errorf("status = %q, want %q", resp.Status, models.TaskPending)
	}
	if resp.CreatedBy != 4 {
		t.Errorf("created_by = %d, want 4", resp.CreatedBy)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventTaskAssigned {
		t.Errorf("expected one %q event, got %v", events.EventTaskAssigned, published)
	}
}

func TestCreateTask_Denied(t *testing.T) {
	due := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name     string
		req      *CreateTaskRequest
		callerID uint
		check    func(error) bool
	}{
		{
			name:     "teacher cannot create",
			req:      &CreateTaskRequest{Title: "t", AssignedTo: 3, DueDate: due},
			callerID: 3,
			check:    IsPermissionError,
		},
		{
			name:     "student cannot create",
			req:      &CreateTaskRequest{Title: "t", AssignedTo: 3, DueDate: due},
			callerID: 1,
			check:    IsPermissionError,
		},
		{
			name:     "unknown assignee",
			req:      &CreateTaskRequest{Title: "t", AssignedTo: 999, DueDate: due},
			callerID: 4,
			check:    func(err error) bool { return errors.Is(err, ErrUserNotFound) },
		},
		{
			name:     "past due date",
			req:      &CreateTaskRequest{Title: "t", AssignedTo: 3, DueDate: time.Now().Add(-time.Hour)},
			callerID: 4,
			check: func(err error) bool {
				var verrs ValidationErrors
				return errors.As(err, &verrs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newTaskFixture(models.TaskPending)
			_, err := svc.Create(context.Background(), tt.req, tt.callerID)
			if !tt.check(err) {
				t.Errorf("error = %v, want a different failure", err)
			}
		})
	}
}

func TestCreateTask_InactiveAssignee(t *testing.T) {
	repo, _, svc := newTaskFixture(models.TaskPending)
	inactive := testUser(9, models.RoleTeacher)
	inactive.IsActive = false
	repo.user.(*mockUserRepo).users[9] = inactive

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:      "t",
		AssignedTo: 9,
		DueDate:    time.Now().Add(48 * time.Hour),
	}, 4)
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("error = %v, want ErrUserInactive", err)
	}
}

func TestDeleteTask(t *testing.T) {
	_, _, svc := newTaskFixture(models.TaskPending)

	if err := svc.Delete(context.Background(), 100, 3); !IsPermissionError(err) {
		t.Errorf("teacher delete error = %v, want permission error", err)
	}
	if err := svc.Delete(context.Background(), 100, 4); err != nil {
		t.Errorf("principal delete error = %v, want nil", err)
	}
	if err := svc.Delete(context.Background(), 100, 4); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second delete error = %v, want ErrTaskNotFound", err)
	}
}

func TestListTasks_OwnScopeForced(t *testing.T) {
	repo, _, svc := newTaskFixture(models.TaskPending)
	// A task assigned to someone else; own-scope callers must not see it.
	repo.task.(*mockTaskRepo).tasks[101] = &models.Task{
		ID: 101, Title: "other", AssignedTo: 5, Status: models.TaskPending,
		DueDate: time.Now().Add(time.Hour), CreatedBy: 4,
	}

	resp, err := svc.List(context.Background(), repositories.TaskFilters{}, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, task := range resp.Tasks {
		if task.AssignedTo != 3 {
			t.Errorf("own-scope list leaked task %d assigned to %d", task.ID, task.AssignedTo)
		}
	}

	asPrincipal, err := svc.List(context.Background(), repositories.TaskFilters{}, 4)
	if err != nil {
		t.Fatalf("List() as principal error = %v", err)
	}
	if asPrincipal.Total != 2 {
		t.Errorf("principal sees %d tasks, want 2", asPrincipal.Total)
	}
}

func TestGetTaskByID_ReadScope(t *testing.T) {
	tests := []struct {
		name     string
		callerID uint
		wantPerm bool
	}{
		{name: "assignee", callerID: 3},
		{name: "principal", callerID: 4},
		{name: "other teacher", callerID: 5, wantPerm: true},
		{name: "student", callerID: 1, wantPerm: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newTaskFixture(models.TaskPending)
			_, err := svc.GetByID(context.Background(), 100, tt.callerID)
			if tt.wantPerm && !IsPermissionError(err) {
				t.Errorf("error = %v, want permission error", err)
			}
			if !tt.wantPerm && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
		})
	}
}

func TestTaskResponse_CanUpdateStatus(t *testing.T) {
	_, _, svc := newTaskFixture(models.TaskPending)

	resp, err := svc.GetByID(context.Background(), 100, 3)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !resp.CanUpdateStatus {
		t.Error("assignee should be able to update a pending task")
	}

	if _, err := svc.UpdateStatus(context.Background(), 100, models.TaskCompleted, 3); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	done, err := svc.GetByID(context.Background(), 100, 3)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if done.CanUpdateStatus {
		t.Error("terminal task must not advertise further transitions")
	}
}
