package repositories

import (
	"context"

	"github.com/SAP-F-2025/school-service/internal/models"
	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	GetByIDWithChapters(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters SubjectFilters) ([]*models.Subject, int64, error)
	GetByGrade(ctx context.Context, tx *gorm.DB, gradeLevel string) ([]*models.Subject, error)
}

type ChapterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error)
	Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// GetBySubject returns chapters ordered by their display order.
	GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Chapter, error)
	Reorder(ctx context.Context, tx *gorm.DB, subjectID uint, orders map[uint]int) error

	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Lesson, error)
}

type ResourceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error)
	Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters ResourceFilters) ([]*models.Resource, int64, error)
	GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Resource, error)
}

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByLesson(ctx context.Context, tx *gorm.DB, lessonID uint) ([]*models.Quiz, error)

	AddQuestion(ctx context.Context, tx *gorm.DB, question *models.QuizQuestion) error
	RemoveQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error
}

type QuizResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizResult, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.QuizResult, error)
}
