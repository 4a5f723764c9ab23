package events

import (
	"context"
	"time"

	"github.com/SAP-F-2025/school-service/internal/models"
)

// Event is the envelope published to the message broker.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Event types
const (
	EventTaskAssigned      = "task.assigned"
	EventTaskStatusChanged = "task.status_changed"
	EventProgressCompleted = "progress.completed"
	EventAssignmentCreated = "assignment.created"
	EventUserCreated       = "user.created"
)

const (
	EventSource  = "school-service"
	EventVersion = "1.0"
)

// TaskAssignedEvent is emitted when a task is created and assigned.
type TaskAssignedEvent struct {
	TaskID     uint      `json:"task_id"`
	Title      string    `json:"title"`
	AssignedTo uint      `json:"assigned_to"`
	AssignedBy uint      `json:"assigned_by"`
	DueDate    time.Time `json:"due_date"`
}

// TaskStatusChangedEvent is emitted on every successful status transition.
type TaskStatusChangedEvent struct {
	TaskID    uint              `json:"task_id"`
	From      models.TaskStatus `json:"from"`
	To        models.TaskStatus `json:"to"`
	ChangedBy uint              `json:"changed_by"`
}

// ProgressCompletedEvent is emitted when a student finishes a chapter.
type ProgressCompletedEvent struct {
	StudentID   uint      `json:"student_id"`
	ChapterID   uint      `json:"chapter_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// AssignmentCreatedEvent is emitted when a teacher publishes an assignment.
type AssignmentCreatedEvent struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	SubjectID    uint      `json:"subject_id"`
	ChapterID    uint      `json:"chapter_id"`
	CreatedBy    uint      `json:"created_by"`
	DueDate      time.Time `json:"due_date"`
}

// UserCreatedEvent is emitted when an administrator provisions a new account.
type UserCreatedEvent struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
}

// EventPublisher abstracts the broker so services can be tested without Kafka.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}
