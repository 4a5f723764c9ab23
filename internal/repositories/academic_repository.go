package repositories

import (
	"context"

	"github.com/SAP-F-2025/school-service/internal/models"
	"gorm.io/gorm"
)

// ProgressRepository persists per (student, chapter) progress records. The
// pair is backed by a unique index; GetForUpdate takes a row lock so the
// read-modify-write in the progress service serializes under concurrency.
type ProgressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error
	Update(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error

	GetByStudentAndChapter(ctx context.Context, tx *gorm.DB, studentID, chapterID uint) (*models.StudentProgress, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, studentID, chapterID uint) (*models.StudentProgress, error)

	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters ProgressFilters) ([]*models.StudentProgress, error)
	GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint, filters ProgressFilters) ([]*models.StudentProgress, error)

	GetStats(ctx context.Context, tx *gorm.DB, studentID uint) (*ProgressStats, error)
}

type TaskRepository interface {
	Create(ctx context.Context, tx *gorm.DB, task *models.Task) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error)
	// GetForUpdate re-reads the task under a row lock; status transitions
	// validate against this copy to avoid lost updates.
	GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error)
	Update(ctx context.Context, tx *gorm.DB, task *models.Task) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters TaskFilters) ([]*models.Task, int64, error)
	GetByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uint, filters TaskFilters) ([]*models.Task, error)

	GetStats(ctx context.Context, tx *gorm.DB, assigneeID uint) (*TaskStats, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters AssignmentFilters) ([]*models.Assignment, int64, error)
	GetByCreator(ctx context.Context, tx *gorm.DB, creatorID uint) ([]*models.Assignment, error)
	// GetByStudent resolves assignments visible to a student through the
	// classes the student belongs to.
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Assignment, error)
}

type ClassRepository interface {
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	Update(ctx context.Context, tx *gorm.DB, class *models.Class) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Class, int64, error)

	AssignToClass(ctx context.Context, tx *gorm.DB, link *models.ClassAssignment) error
	UnassignFromClass(ctx context.Context, tx *gorm.DB, linkID uint) error
	GetClassAssignments(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.ClassAssignment, error)
}
