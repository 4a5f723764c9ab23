package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/authz"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, callerID uint) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionCreate, authz.ResourceQuiz) {
		return nil, NewPermissionError(callerID, 0, "quiz", "create", "quiz authoring is staff only")
	}

	if _, err := s.repo.Lesson().GetByID(ctx, nil, req.LessonID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	var quiz *models.Quiz
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		quiz = &models.Quiz{
			Title:       req.Title,
			Description: req.Description,
			LessonID:    req.LessonID,
			CreatedBy:   callerID,
			TimeLimit:   req.TimeLimit,
		}
		if err := txRepo.Quiz().Create(ctx, nil, quiz); err != nil {
			return err
		}

		for _, q := range req.Questions {
			question, buildErr := buildQuestion(quiz.ID, &q)
			if buildErr != nil {
				return buildErr
			}
			if err := txRepo.Quiz().AddQuestion(ctx, nil, question); err != nil {
				return fmt.Errorf("failed to add question: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "lesson_id", req.LessonID, "questions", len(req.Questions))
	return s.repo.Quiz().GetByIDWithQuestions(ctx, nil, quiz.ID)
}

func buildQuestion(quizID uint, req *QuizQuestionRequest) (*models.QuizQuestion, error) {
	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return &models.QuizQuestion{
		QuizID:        quizID,
		QuestionText:  req.QuestionText,
		CorrectAnswer: req.CorrectAnswer,
		Options:       options,
		Points:        req.Points,
		Order:         req.Order,
	}, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint, callerID uint) (*models.Quiz, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	// Students only see published quizzes, and never the answer key.
	if !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		if !quiz.IsPublished {
			return nil, ErrQuizNotPublished
		}
		for i := range quiz.Questions {
			quiz.Questions[i].CorrectAnswer = ""
		}
	}

	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, callerID uint) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return nil, NewPermissionError(callerID, id, "quiz", "update", "quiz authoring is staff only")
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = req.TimeLimit
	}
	if req.IsPublished != nil {
		quiz.IsPublished = *req.IsPublished
	}

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id uint, callerID uint) error {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(caller.Role, authz.ActionDelete, authz.ResourceQuiz) {
		return NewPermissionError(callerID, id, "quiz", "delete", "quiz authoring is staff only")
	}

	if err := s.repo.Quiz().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return err
	}
	return nil
}

func (s *quizService) GetByLesson(ctx context.Context, lessonID uint, callerID uint) ([]*models.Quiz, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.repo.Quiz().GetByLesson(ctx, nil, lessonID)
	if err != nil {
		return nil, err
	}

	if authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return quizzes, nil
	}

	published := make([]*models.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if q.IsPublished {
			published = append(published, q)
		}
	}
	return published, nil
}

func (s *quizService) AddQuestion(ctx context.Context, quizID uint, req *QuizQuestionRequest, callerID uint) (*models.QuizQuestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return nil, NewPermissionError(callerID, quizID, "quiz", "update", "quiz authoring is staff only")
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	question, err := buildQuestion(quizID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Quiz().AddQuestion(ctx, nil, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *quizService) RemoveQuestion(ctx context.Context, quizID, questionID uint, callerID uint) error {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return err
	}
	if !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return NewPermissionError(callerID, quizID, "quiz", "update", "quiz authoring is staff only")
	}

	if err := s.repo.Quiz().RemoveQuestion(ctx, nil, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return err
	}
	return nil
}

func (s *quizService) SubmitResult(ctx context.Context, req *SubmitQuizResultRequest, callerID uint) (*models.QuizResult, error) {
	if errs := s.validator.GetBusinessValidator().ValidateQuizResult(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished && !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return nil, ErrQuizNotPublished
	}

	result := &models.QuizResult{
		QuizID:      req.QuizID,
		StudentID:   callerID,
		Score:       req.Score,
		MaxScore:    req.MaxScore,
		CompletedAt: time.Now(),
	}
	if err := s.repo.QuizResult().Create(ctx, nil, result); err != nil {
		return nil, err
	}

	s.logger.Info("Quiz result recorded", "quiz_id", req.QuizID, "student_id", callerID, "score", req.Score)
	return result, nil
}

func (s *quizService) GetResultsByQuiz(ctx context.Context, quizID uint, callerID uint) ([]*models.QuizResult, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return nil, NewPermissionError(callerID, quizID, "quiz", "read", "quiz-wide results are staff only")
	}

	return s.repo.QuizResult().GetByQuiz(ctx, nil, quizID)
}

func (s *quizService) GetResultsByStudent(ctx context.Context, studentID uint, callerID uint) ([]*models.QuizResult, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if studentID != callerID && !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceQuiz) {
		return nil, NewPermissionError(callerID, studentID, "quiz", "read", "not own results")
	}

	return s.repo.QuizResult().GetByStudent(ctx, nil, studentID)
}
