package validator

import (
	"time"

	"github.com/SAP-F-2025/school-service/internal/models"
)

// ===== AUTH =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ===== USERS =====

type StudentProfileRequest struct {
	Grade      string  `json:"grade" validate:"required,max=20"`
	Section    *string `json:"section" validate:"omitempty,max=20"`
	RollNumber *string `json:"roll_number" validate:"omitempty,max=50"`
}

type TeacherProfileRequest struct {
	Department      *string `json:"department" validate:"omitempty,max=100"`
	Qualification   *string `json:"qualification" validate:"omitempty,max=200"`
	ExperienceYears *int    `json:"experience_years" validate:"omitempty,min=0,max=60"`
}

type PrincipalProfileRequest struct {
	Qualification   *string `json:"qualification" validate:"omitempty,max=200"`
	ExperienceYears *int    `json:"experience_years" validate:"omitempty,min=0,max=60"`
}

type DeveloperProfileRequest struct {
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
	GithubURL      *string `json:"github_url" validate:"omitempty,url,max=500"`
}

type UserCreateRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8,max=128"`
	FullName string          `json:"full_name" validate:"required,min=1,max=100"`
	Role     models.UserRole `json:"role" validate:"required,oneof=student teacher principal developer"`

	StudentProfile   *StudentProfileRequest   `json:"student_profile"`
	TeacherProfile   *TeacherProfileRequest   `json:"teacher_profile"`
	PrincipalProfile *PrincipalProfileRequest `json:"principal_profile"`
	DeveloperProfile *DeveloperProfileRequest `json:"developer_profile"`
}

// UserUpdateRequest covers both admin updates and self-service updates; the
// service ignores Role, IsActive and IsSuperuser on self-updates.
type UserUpdateRequest struct {
	Email       *string          `json:"email" validate:"omitempty,email"`
	Password    *string          `json:"password" validate:"omitempty,min=8,max=128"`
	FullName    *string          `json:"full_name" validate:"omitempty,min=1,max=100"`
	Role        *models.UserRole `json:"role" validate:"omitempty,oneof=student teacher principal developer"`
	IsActive    *bool            `json:"is_active"`
	IsSuperuser *bool            `json:"is_superuser"`

	StudentProfile   *StudentProfileRequest   `json:"student_profile"`
	TeacherProfile   *TeacherProfileRequest   `json:"teacher_profile"`
	PrincipalProfile *PrincipalProfileRequest `json:"principal_profile"`
	DeveloperProfile *DeveloperProfileRequest `json:"developer_profile"`
}

// ===== CONTENT =====

type SubjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	GradeLevel  string  `json:"grade_level" validate:"required,max=20"`
}

type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	GradeLevel  *string `json:"grade_level" validate:"omitempty,max=20"`
}

type ChapterCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	SubjectID   uint    `json:"subject_id" validate:"required"`
	Order       int     `json:"order" validate:"required,min=1"`
}

type ChapterUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Order       *int    `json:"order" validate:"omitempty,min=1"`
}

type ReorderChaptersRequest struct {
	// chapter id -> new display order
	Orders map[uint]int `json:"orders" validate:"required,min=1"`
}

type LessonCreateRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Content   string `json:"content" validate:"required"`
	ChapterID uint   `json:"chapter_id" validate:"required"`
	Order     int    `json:"order" validate:"required,min=1"`
}

type LessonUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty"`
	Order   *int    `json:"order" validate:"omitempty,min=1"`
}

type ResourceCreateRequest struct {
	Title        string              `json:"title" validate:"required,min=1,max=200"`
	Description  *string             `json:"description" validate:"omitempty,max=1000"`
	ChapterID    uint                `json:"chapter_id" validate:"required"`
	ResourceType models.ResourceType `json:"resource_type" validate:"required,oneof=text video audio pdf link"`
	Content      *string             `json:"content"`
	FileURL      *string             `json:"file_url" validate:"omitempty,max=500"`
}

type ResourceUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Content     *string `json:"content"`
	FileURL     *string `json:"file_url" validate:"omitempty,max=500"`
}

type QuizQuestionRequest struct {
	QuestionText  string   `json:"question_text" validate:"required,max=2000"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,max=500"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,max=500"`
	Points        int      `json:"points" validate:"required,min=1,max=100"`
	Order         int      `json:"order" validate:"required,min=1"`
}

type QuizCreateRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	LessonID    uint                  `json:"lesson_id" validate:"required"`
	TimeLimit   *int                  `json:"time_limit" validate:"omitempty,min=1,max=300"`
	Questions   []QuizQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type QuizUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	TimeLimit   *int    `json:"time_limit" validate:"omitempty,min=1,max=300"`
	IsPublished *bool   `json:"is_published"`
}

type QuizResultRequest struct {
	QuizID   uint    `json:"quiz_id" validate:"required"`
	Score    float64 `json:"score" validate:"min=0"`
	MaxScore float64 `json:"max_score" validate:"required,min=0"`
}

// ===== ACADEMIC =====

type ProgressUpdateRequest struct {
	StudentID            uint    `json:"student_id" validate:"required"`
	ChapterID            uint    `json:"chapter_id" validate:"required"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type TaskCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	AssignedTo  uint      `json:"assigned_to" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

type TaskStatusRequest struct {
	Status models.TaskStatus `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

type AssignmentCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	SubjectID   uint      `json:"subject_id" validate:"required"`
	ChapterID   uint      `json:"chapter_id" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

type AssignmentUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	DueDate     *time.Time `json:"due_date"`
}

type ClassCreateRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Grade        string `json:"grade" validate:"required,max=20"`
	Section      string `json:"section" validate:"required,max=20"`
	AcademicYear string `json:"academic_year" validate:"required,max=20"`
}

type ClassAssignmentRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
	ClassID      uint `json:"class_id" validate:"required"`
}
