package services

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type LoginRequest = validator.LoginRequest
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest

type CreateSubjectRequest = validator.SubjectCreateRequest
type UpdateSubjectRequest = validator.SubjectUpdateRequest
type CreateChapterRequest = validator.ChapterCreateRequest
type UpdateChapterRequest = validator.ChapterUpdateRequest
type ReorderChaptersRequest = validator.ReorderChaptersRequest
type CreateLessonRequest = validator.LessonCreateRequest
type UpdateLessonRequest = validator.LessonUpdateRequest
type CreateResourceRequest = validator.ResourceCreateRequest
type UpdateResourceRequest = validator.ResourceUpdateRequest

type CreateQuizRequest = validator.QuizCreateRequest
type UpdateQuizRequest = validator.QuizUpdateRequest
type QuizQuestionRequest = validator.QuizQuestionRequest
type SubmitQuizResultRequest = validator.QuizResultRequest

type UpdateProgressRequest = validator.ProgressUpdateRequest
type CreateTaskRequest = validator.TaskCreateRequest
type CreateAssignmentRequest = validator.AssignmentCreateRequest
type UpdateAssignmentRequest = validator.AssignmentUpdateRequest
type CreateClassRequest = validator.ClassCreateRequest
type AssignClassRequest = validator.ClassAssignmentRequest

type UserResponse struct {
	*models.User
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type SubjectResponse struct {
	*models.Subject
	CanEdit bool `json:"can_edit"`
}

type SubjectListResponse struct {
	Subjects []*SubjectResponse `json:"subjects"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type TaskResponse struct {
	*models.Task
	CanUpdateStatus bool `json:"can_update_status"`
	CanDelete       bool `json:"can_delete"`
}

type TaskListResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type ProgressResponse struct {
	*models.StudentProgress
}

type AssignmentResponse struct {
	*models.Assignment
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type AssignmentListResponse struct {
	Assignments []*AssignmentResponse `json:"assignments"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	// Authenticate verifies credentials and returns the active user.
	Authenticate(ctx context.Context, req *LoginRequest) (*models.User, error)

	Create(ctx context.Context, req *CreateUserRequest, callerID uint) (*UserResponse, error)
	GetByID(ctx context.Context, id uint, callerID uint) (*UserResponse, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest, callerID uint) (*UserResponse, error)
	Delete(ctx context.Context, id uint, callerID uint) error
	List(ctx context.Context, filters repositories.UserFilters, callerID uint) (*UserListResponse, error)

	// EnsureSuperuser provisions the bootstrap developer account on startup.
	EnsureSuperuser(ctx context.Context, email, password, fullName string) error
}

type ContentService interface {
	// Subjects
	CreateSubject(ctx context.Context, req *CreateSubjectRequest, callerID uint) (*SubjectResponse, error)
	GetSubject(ctx context.Context, id uint, callerID uint) (*SubjectResponse, error)
	GetSubjectWithChapters(ctx context.Context, id uint, callerID uint) (*SubjectResponse, error)
	UpdateSubject(ctx context.Context, id uint, req *UpdateSubjectRequest, callerID uint) (*SubjectResponse, error)
	DeleteSubject(ctx context.Context, id uint, callerID uint) error
	ListSubjects(ctx context.Context, filters repositories.SubjectFilters, callerID uint) (*SubjectListResponse, error)

	// Chapters
	CreateChapter(ctx context.Context, req *CreateChapterRequest, callerID uint) (*models.Chapter, error)
	GetChapter(ctx context.Context, id uint, callerID uint) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id uint, req *UpdateChapterRequest, callerID uint) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id uint, callerID uint) error
	GetChaptersBySubject(ctx context.Context, subjectID uint, callerID uint) ([]*models.Chapter, error)
	ReorderChapters(ctx context.Context, subjectID uint, req *ReorderChaptersRequest, callerID uint) error

	// Lessons
	CreateLesson(ctx context.Context, req *CreateLessonRequest, callerID uint) (*models.Lesson, error)
	GetLesson(ctx context.Context, id uint, callerID uint) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id uint, req *UpdateLessonRequest, callerID uint) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, id uint, callerID uint) error
	GetLessonsByChapter(ctx context.Context, chapterID uint, callerID uint) ([]*models.Lesson, error)

	// Resources
	CreateResource(ctx context.Context, req *CreateResourceRequest, callerID uint) (*models.Resource, error)
	GetResource(ctx context.Context, id uint, callerID uint) (*models.Resource, error)
	UpdateResource(ctx context.Context, id uint, req *UpdateResourceRequest, callerID uint) (*models.Resource, error)
	DeleteResource(ctx context.Context, id uint, callerID uint) error
	ListResources(ctx context.Context, filters repositories.ResourceFilters, callerID uint) ([]*models.Resource, int64, error)
}

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, callerID uint) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint, callerID uint) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, callerID uint) (*models.Quiz, error)
	Delete(ctx context.Context, id uint, callerID uint) error
	GetByLesson(ctx context.Context, lessonID uint, callerID uint) ([]*models.Quiz, error)

	AddQuestion(ctx context.Context, quizID uint, req *QuizQuestionRequest, callerID uint) (*models.QuizQuestion, error)
	RemoveQuestion(ctx context.Context, quizID, questionID uint, callerID uint) error

	SubmitResult(ctx context.Context, req *SubmitQuizResultRequest, callerID uint) (*models.QuizResult, error)
	GetResultsByQuiz(ctx context.Context, quizID uint, callerID uint) ([]*models.QuizResult, error)
	GetResultsByStudent(ctx context.Context, studentID uint, callerID uint) ([]*models.QuizResult, error)
}

type ProgressService interface {
	// UpdateProgress creates or overwrites the (student, chapter) record.
	UpdateProgress(ctx context.Context, req *UpdateProgressRequest, callerID uint) (*ProgressResponse, error)

	GetStudentProgress(ctx context.Context, studentID uint, filters repositories.ProgressFilters, callerID uint) ([]*models.StudentProgress, error)
	GetChapterProgress(ctx context.Context, chapterID uint, filters repositories.ProgressFilters, callerID uint) ([]*models.StudentProgress, error)
	GetStats(ctx context.Context, studentID uint, callerID uint) (*repositories.ProgressStats, error)

	// ExportChapterReport renders the chapter's progress into a workbook.
	ExportChapterReport(ctx context.Context, chapterID uint, callerID uint) (*excelize.File, error)
}

type TaskService interface {
	Create(ctx context.Context, req *CreateTaskRequest, callerID uint) (*TaskResponse, error)
	GetByID(ctx context.Context, id uint, callerID uint) (*TaskResponse, error)
	UpdateStatus(ctx context.Context, id uint, newStatus models.TaskStatus, callerID uint) (*TaskResponse, error)
	Delete(ctx context.Context, id uint, callerID uint) error

	List(ctx context.Context, filters repositories.TaskFilters, callerID uint) (*TaskListResponse, error)
	GetMyTasks(ctx context.Context, filters repositories.TaskFilters, callerID uint) ([]*TaskResponse, error)
	GetStats(ctx context.Context, assigneeID uint, callerID uint) (*repositories.TaskStats, error)
}

type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, callerID uint) (*AssignmentResponse, error)
	GetByID(ctx context.Context, id uint, callerID uint) (*AssignmentResponse, error)
	Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, callerID uint) (*AssignmentResponse, error)
	Delete(ctx context.Context, id uint, callerID uint) error
	List(ctx context.Context, filters repositories.AssignmentFilters, callerID uint) (*AssignmentListResponse, error)

	// Classes
	CreateClass(ctx context.Context, req *CreateClassRequest, callerID uint) (*models.Class, error)
	ListClasses(ctx context.Context, limit, offset int, callerID uint) ([]*models.Class, int64, error)
	AssignToClass(ctx context.Context, req *AssignClassRequest, callerID uint) (*models.ClassAssignment, error)
	UnassignFromClass(ctx context.Context, linkID uint, callerID uint) error
	GetClassAssignments(ctx context.Context, classID uint, callerID uint) ([]*models.ClassAssignment, error)
}

// ServiceManager provides access to every service instance.
type ServiceManager interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	User() UserService
	Content() ContentService
	Quiz() QuizService
	Progress() ProgressService
	Task() TaskService
	Assignment() AssignmentService
}
