package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if err := q.getDB(tx).WithContext(ctx).Create(quiz).Error; err != nil {
		return repositories.NewStorageError("create quiz", err)
	}
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.getDB(tx).WithContext(ctx).First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("quiz", id)
		}
		return nil, repositories.NewStorageError("get quiz", err)
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.getDB(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("quiz", id)
		}
		return nil, repositories.NewStorageError("get quiz with questions", err)
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	if err := q.getDB(tx).WithContext(ctx).Save(quiz).Error; err != nil {
		return repositories.NewStorageError("update quiz", err)
	}
	return nil
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := q.getDB(tx).WithContext(ctx).Delete(&models.Quiz{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete quiz", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("quiz", id)
	}
	return nil
}

func (q *QuizPostgreSQL) GetByLesson(ctx context.Context, tx *gorm.DB, lessonID uint) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := q.getDB(tx).WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("created_at ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, repositories.NewStorageError("get quizzes by lesson", err)
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) AddQuestion(ctx context.Context, tx *gorm.DB, question *models.QuizQuestion) error {
	if err := q.getDB(tx).WithContext(ctx).Create(question).Error; err != nil {
		return repositories.NewStorageError("add quiz question", err)
	}
	return nil
}

func (q *QuizPostgreSQL) RemoveQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	result := q.getDB(tx).WithContext(ctx).Delete(&models.QuizQuestion{}, questionID)
	if result.Error != nil {
		return repositories.NewStorageError("remove quiz question", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("quiz question", questionID)
	}
	return nil
}

// ===== QUIZ RESULTS =====

type QuizResultPostgreSQL struct {
	db *gorm.DB
}

func NewQuizResultPostgreSQL(db *gorm.DB) repositories.QuizResultRepository {
	return &QuizResultPostgreSQL{db: db}
}

func (q *QuizResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.QuizResult) error {
	if err := q.getDB(tx).WithContext(ctx).Create(result).Error; err != nil {
		return repositories.NewStorageError("create quiz result", err)
	}
	return nil
}

func (q *QuizResultPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizResult, error) {
	var results []*models.QuizResult
	err := q.getDB(tx).WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("completed_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, repositories.NewStorageError("get results by quiz", err)
	}
	return results, nil
}

func (q *QuizResultPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.QuizResult, error) {
	var results []*models.QuizResult
	err := q.getDB(tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("completed_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, repositories.NewStorageError("get results by student", err)
	}
	return results, nil
}
