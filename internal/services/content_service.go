package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/authz"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type contentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewContentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ContentService {
	return &contentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// checkWrite gates every content mutation behind the policy.
func (s *contentService) checkWrite(ctx context.Context, callerID uint, action authz.Action, resource authz.Resource, resourceID uint) (*models.User, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, action, resource) {
		return nil, NewPermissionError(callerID, resourceID, string(resource), string(action), "content writes are staff only")
	}
	return caller, nil
}

// ===== SUBJECTS =====

func (s *contentService) CreateSubject(ctx context.Context, req *CreateSubjectRequest, callerID uint) (*SubjectResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	caller, err := s.checkWrite(ctx, callerID, authz.ActionCreate, authz.ResourceSubject, 0)
	if err != nil {
		return nil, err
	}

	subject := &models.Subject{
		Name:        req.Name,
		Description: req.Description,
		GradeLevel:  req.GradeLevel,
	}
	if err := s.repo.Subject().Create(ctx, nil, subject); err != nil {
		return nil, err
	}

	s.logger.Info("Subject created", "subject_id", subject.ID, "caller_id", callerID)
	return s.toSubjectResponse(subject, caller), nil
}

func (s *contentService) GetSubject(ctx context.Context, id uint, callerID uint) (*SubjectResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return s.toSubjectResponse(subject, caller), nil
}

func (s *contentService) GetSubjectWithChapters(ctx context.Context, id uint, callerID uint) (*SubjectResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	subject, err := s.repo.Subject().GetByIDWithChapters(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return s.toSubjectResponse(subject, caller), nil
}

func (s *contentService) UpdateSubject(ctx context.Context, id uint, req *UpdateSubjectRequest, callerID uint) (*SubjectResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	caller, err := s.checkWrite(ctx, callerID, authz.ActionUpdate, authz.ResourceSubject, id)
	if err != nil {
		return nil, err
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Description != nil {
		subject.Description = req.Description
	}
	if req.GradeLevel != nil {
		subject.GradeLevel = *req.GradeLevel
	}

	if err := s.repo.Subject().Update(ctx, nil, subject); err != nil {
		return nil, err
	}
	return s.toSubjectResponse(subject, caller), nil
}

func (s *contentService) DeleteSubject(ctx context.Context, id uint, callerID uint) error {
	if _, err := s.checkWrite(ctx, callerID, authz.ActionDelete, authz.ResourceSubject, id); err != nil {
		return err
	}

	if err := s.repo.Subject().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubjectNotFound
		}
		return err
	}

	s.logger.Info("Subject deleted", "subject_id", id, "caller_id", callerID)
	return nil
}

func (s *contentService) ListSubjects(ctx context.Context, filters repositories.SubjectFilters, callerID uint) (*SubjectListResponse, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}

	subjects, total, err := s.repo.Subject().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	resp := &SubjectListResponse{
		Subjects: make([]*SubjectResponse, 0, len(subjects)),
		Total:    total,
		Size:     len(subjects),
	}
	if filters.Limit > 0 {
		resp.Page = filters.Offset/filters.Limit + 1
	}
	for _, sub := range subjects {
		resp.Subjects = append(resp.Subjects, s.toSubjectResponse(sub, caller))
	}
	return resp, nil
}

func (s *contentService) toSubjectResponse(subject *models.Subject, caller *models.User) *SubjectResponse {
	return &SubjectResponse{
		Subject: subject,
		CanEdit: authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceSubject),
	}
}

// ===== CHAPTERS =====

func (s *contentService) CreateChapter(ctx context.Context, req *CreateChapterRequest, callerID uint) (*models.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionCreate, authz.ResourceChapter, 0); err != nil {
		return nil, err
	}

	if _, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	chapter := &models.Chapter{
		Title:       req.Title,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		Order:       req.Order,
	}
	if err := s.repo.Chapter().Create(ctx, nil, chapter); err != nil {
		return nil, err
	}

	s.logger.Info("Chapter created", "chapter_id", chapter.ID, "subject_id", req.SubjectID)
	return chapter, nil
}

func (s *contentService) GetChapter(ctx context.Context, id uint, callerID uint) (*models.Chapter, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, err
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}
	return chapter, nil
}

func (s *contentService) UpdateChapter(ctx context.Context, id uint, req *UpdateChapterRequest, callerID uint) (*models.Chapter, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionUpdate, authz.ResourceChapter, id); err != nil {
		return nil, err
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		chapter.Title = *req.Title
	}
	if req.Description != nil {
		chapter.Description = req.Description
	}
	if req.Order != nil {
		chapter.Order = *req.Order
	}

	if err := s.repo.Chapter().Update(ctx, nil, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *contentService) DeleteChapter(ctx context.Context, id uint, callerID uint) error {
	if _, err := s.checkWrite(ctx, callerID, authz.ActionDelete, authz.ResourceChapter, id); err != nil {
		return err
	}

	if err := s.repo.Chapter().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrChapterNotFound
		}
		return err
	}
	return nil
}

func (s *contentService) GetChaptersBySubject(ctx context.Context, subjectID uint, callerID uint) ([]*models.Chapter, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, err
	}
	return s.repo.Chapter().GetBySubject(ctx, nil, subjectID)
}

func (s *contentService) ReorderChapters(ctx context.Context, subjectID uint, req *ReorderChaptersRequest, callerID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionUpdate, authz.ResourceChapter, subjectID); err != nil {
		return err
	}

	// All or nothing; a partial reorder leaves duplicate display orders.
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Chapter().Reorder(ctx, nil, subjectID, req.Orders); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrChapterNotFound
			}
			return fmt.Errorf("failed to reorder chapters: %w", err)
		}
		return nil
	})
}

// ===== LESSONS =====

func (s *contentService) CreateLesson(ctx context.Context, req *CreateLessonRequest, callerID uint) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionCreate, authz.ResourceLesson, 0); err != nil {
		return nil, err
	}

	exists, err := s.repo.Chapter().ExistsByID(ctx, nil, req.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter: %w", err)
	}
	if !exists {
		return nil, ErrChapterNotFound
	}

	lesson := &models.Lesson{
		Title:     req.Title,
		Content:   req.Content,
		ChapterID: req.ChapterID,
		Order:     req.Order,
	}
	if err := s.repo.Lesson().Create(ctx, nil, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *contentService) GetLesson(ctx context.Context, id uint, callerID uint) (*models.Lesson, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (s *contentService) UpdateLesson(ctx context.Context, id uint, req *UpdateLessonRequest, callerID uint) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionUpdate, authz.ResourceLesson, id); err != nil {
		return nil, err
	}

	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}

	if err := s.repo.Lesson().Update(ctx, nil, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *contentService) DeleteLesson(ctx context.Context, id uint, callerID uint) error {
	if _, err := s.checkWrite(ctx, callerID, authz.ActionDelete, authz.ResourceLesson, id); err != nil {
		return err
	}

	if err := s.repo.Lesson().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}

func (s *contentService) GetLessonsByChapter(ctx context.Context, chapterID uint, callerID uint) ([]*models.Lesson, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, err
	}
	return s.repo.Lesson().GetByChapter(ctx, nil, chapterID)
}

// ===== RESOURCES =====

func (s *contentService) CreateResource(ctx context.Context, req *CreateResourceRequest, callerID uint) (*models.Resource, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionCreate, authz.ResourceContent, 0); err != nil {
		return nil, err
	}

	exists, err := s.repo.Chapter().ExistsByID(ctx, nil, req.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter: %w", err)
	}
	if !exists {
		return nil, ErrChapterNotFound
	}

	resource := &models.Resource{
		Title:        req.Title,
		Description:  req.Description,
		ChapterID:    req.ChapterID,
		ResourceType: req.ResourceType,
		Content:      req.Content,
		FileURL:      req.FileURL,
	}
	if err := s.repo.Resource().Create(ctx, nil, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *contentService) GetResource(ctx context.Context, id uint, callerID uint) (*models.Resource, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, err
	}

	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return resource, nil
}

func (s *contentService) UpdateResource(ctx context.Context, id uint, req *UpdateResourceRequest, callerID uint) (*models.Resource, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.checkWrite(ctx, callerID, authz.ActionUpdate, authz.ResourceContent, id); err != nil {
		return nil, err
	}

	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = req.Description
	}
	if req.Content != nil {
		resource.Content = req.Content
	}
	if req.FileURL != nil {
		resource.FileURL = req.FileURL
	}

	if err := s.repo.Resource().Update(ctx, nil, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *contentService) DeleteResource(ctx context.Context, id uint, callerID uint) error {
	if _, err := s.checkWrite(ctx, callerID, authz.ActionDelete, authz.ResourceContent, id); err != nil {
		return err
	}

	if err := s.repo.Resource().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrResourceNotFound
		}
		return err
	}
	return nil
}

func (s *contentService) ListResources(ctx context.Context, filters repositories.ResourceFilters, callerID uint) ([]*models.Resource, int64, error) {
	if _, err := resolveActor(ctx, s.repo, callerID); err != nil {
		return nil, 0, err
	}
	return s.repo.Resource().List(ctx, nil, filters)
}
