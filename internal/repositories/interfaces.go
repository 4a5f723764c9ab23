package repositories

import (
	"time"

	"github.com/SAP-F-2025/school-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query  string           `json:"query"` // name or email search
	Role   *models.UserRole `json:"role"`
	Active *bool            `json:"active"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type SubjectFilters struct {
	GradeLevel *string `json:"grade_level"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

type ResourceFilters struct {
	ChapterID    *uint                `json:"chapter_id"`
	ResourceType *models.ResourceType `json:"resource_type"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

type TaskFilters struct {
	Status     *models.TaskStatus `json:"status"`
	AssignedTo *uint              `json:"assigned_to"`
	CreatedBy  *uint              `json:"created_by"`
	DueFrom    *time.Time         `json:"due_from"`
	DueTo      *time.Time         `json:"due_to"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	SortBy     string             `json:"sort_by"`    // "created_at", "due_date", "title"
	SortOrder  string             `json:"sort_order"` // "asc", "desc"
}

type AssignmentFilters struct {
	SubjectID *uint      `json:"subject_id"`
	ChapterID *uint      `json:"chapter_id"`
	CreatedBy *uint      `json:"created_by"`
	DueFrom   *time.Time `json:"due_from"`
	DueTo     *time.Time `json:"due_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

type ProgressFilters struct {
	Status *models.ProgressStatus `json:"status"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ProgressStats struct {
	TotalChapters     int     `json:"total_chapters"`
	ChaptersCompleted int     `json:"chapters_completed"`
	ChaptersStarted   int     `json:"chapters_started"`
	AverageCompletion float64 `json:"average_completion"`
}

type TaskStats struct {
	TotalTasks      int                       `json:"total_tasks"`
	StatusBreakdown map[models.TaskStatus]int `json:"status_breakdown"`
	Overdue         int                       `json:"overdue"`
}
