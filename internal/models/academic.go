package models

import (
	"time"

	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// IsTerminal reports whether no further transition is permitted from the status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// StudentProgress tracks one student's advancement through one chapter.
// The (student_id, chapter_id) pair is unique: updates are upserts keyed by it.
type StudentProgress struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	StudentID            uint           `json:"student_id" gorm:"not null;uniqueIndex:idx_progress_student_chapter" validate:"required"`
	ChapterID            uint           `json:"chapter_id" gorm:"not null;uniqueIndex:idx_progress_student_chapter" validate:"required"`
	Status               ProgressStatus `json:"status" gorm:"not null;size:20;default:not_started"`
	CompletionPercentage float64        `json:"completion_percentage" gorm:"not null;default:0" validate:"min=0,max=100"`
	CompletedAt          *time.Time     `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student *User    `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
}

type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	AssignedTo  uint       `json:"assigned_to" gorm:"not null;index" validate:"required"`
	Status      TaskStatus `json:"status" gorm:"not null;size:20;default:pending;index"`
	DueDate     time.Time  `json:"due_date" gorm:"not null" validate:"required"`
	CreatedBy   uint       `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Assignee *User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
	Creator  *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

type Assignment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string   `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	SubjectID   uint      `json:"subject_id" gorm:"not null;index" validate:"required"`
	ChapterID   uint      `json:"chapter_id" gorm:"not null;index" validate:"required"`
	DueDate     time.Time `json:"due_date" gorm:"not null" validate:"required"`
	CreatedBy   uint      `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
	Creator *User    `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

type Class struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Grade        string `json:"grade" gorm:"not null;size:20" validate:"required"`
	Section      string `json:"section" gorm:"not null;size:20" validate:"required"`
	AcademicYear string `json:"academic_year" gorm:"not null;size:20" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignments []ClassAssignment `json:"assignments,omitempty" gorm:"foreignKey:ClassID"`
}

type ClassAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AssignmentID uint      `json:"assignment_id" gorm:"not null;index" validate:"required"`
	ClassID      uint      `json:"class_id" gorm:"not null;index" validate:"required"`
	AssignedBy   uint      `json:"assigned_by" gorm:"not null"`
	AssignedAt   time.Time `json:"assigned_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignment *Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
	Class      *Class      `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

func (Task) TableName() string {
	return "tasks"
}

func (Assignment) TableName() string {
	return "assignments"
}

func (Class) TableName() string {
	return "classes"
}

func (ClassAssignment) TableName() string {
	return "class_assignments"
}
