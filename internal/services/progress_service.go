package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/authz"
	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/export"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type progressService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) ProgressService {
	return &progressService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

// deriveStatus maps a completion percentage to the progress status: 0 is
// not_started, anything under 100 is in_progress, 100 is completed.
func deriveStatus(pct float64) models.ProgressStatus {
	switch {
	case pct >= 100:
		return models.ProgressCompleted
	case pct > 0:
		return models.ProgressInProgress
	default:
		return models.ProgressNotStarted
	}
}

// UpdateProgress upserts the (student, chapter) record. The row is locked for
// the duration of the transaction so concurrent updates serialize; an insert
// race is detected through the unique index and retried as an update.
func (s *progressService) UpdateProgress(ctx context.Context, req *UpdateProgressRequest, callerID uint) (*ProgressResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateProgressUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOwn(caller.Role, authz.ActionUpdate, authz.ResourceProgress) {
		return nil, NewPermissionError(callerID, req.ChapterID, "progress", "update", "role cannot record progress")
	}
	if !authz.Can(caller.Role, authz.ActionUpdate, authz.ResourceProgress) && req.StudentID != callerID {
		return nil, NewPermissionError(callerID, req.ChapterID, "progress", "update", "students record only their own progress")
	}

	exists, err := s.repo.Chapter().ExistsByID(ctx, nil, req.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter: %w", err)
	}
	if !exists {
		return nil, ErrChapterNotFound
	}

	var progress *models.StudentProgress
	var completedNow bool

	write := func(txRepo repositories.Repository) error {
		var txErr error
		progress, completedNow, txErr = s.upsert(ctx, txRepo, req)
		return txErr
	}

	err = s.repo.WithTransaction(ctx, write)
	if repositories.IsDuplicateKeyError(err) {
		// Lost the insert race. The unique violation aborted the transaction,
		// so rerun it from scratch; the winner's row exists now and the re-read
		// locks it for a plain update.
		err = s.repo.WithTransaction(ctx, write)
	}
	if err != nil {
		return nil, err
	}

	if completedNow {
		s.publishCompleted(ctx, progress)
	}

	s.logger.Info("Progress updated",
		"student_id", req.StudentID,
		"chapter_id", req.ChapterID,
		"completion", progress.CompletionPercentage,
		"status", progress.Status)

	return &ProgressResponse{StudentProgress: progress}, nil
}

func (s *progressService) upsert(ctx context.Context, txRepo repositories.Repository, req *UpdateProgressRequest) (*models.StudentProgress, bool, error) {
	progress, err := txRepo.Progress().GetForUpdate(ctx, nil, req.StudentID, req.ChapterID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, false, err
	}

	if progress == nil {
		created, insertErr := s.insert(ctx, txRepo, req)
		if insertErr != nil {
			// A duplicate key here means a concurrent insert won; the error
			// propagates so the caller reruns the whole transaction, since the
			// aborted one cannot issue further statements.
			return nil, false, insertErr
		}
		return created, created.Status == models.ProgressCompleted, nil
	}

	wasCompleted := progress.Status == models.ProgressCompleted
	progress.CompletionPercentage = req.CompletionPercentage

	// Completion is sticky: once a chapter is completed the status and the
	// completion timestamp never regress.
	if !wasCompleted {
		progress.Status = deriveStatus(req.CompletionPercentage)
		if progress.Status == models.ProgressCompleted {
			now := time.Now()
			progress.CompletedAt = &now
		}
	}

	if err := txRepo.Progress().Update(ctx, nil, progress); err != nil {
		return nil, false, err
	}

	completedNow := !wasCompleted && progress.Status == models.ProgressCompleted
	return progress, completedNow, nil
}

func (s *progressService) insert(ctx context.Context, txRepo repositories.Repository, req *UpdateProgressRequest) (*models.StudentProgress, error) {
	progress := &models.StudentProgress{
		StudentID:            req.StudentID,
		ChapterID:            req.ChapterID,
		Status:               deriveStatus(req.CompletionPercentage),
		CompletionPercentage: req.CompletionPercentage,
	}
	if progress.Status == models.ProgressCompleted {
		now := time.Now()
		progress.CompletedAt = &now
	}

	if err := txRepo.Progress().Create(ctx, nil, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *progressService) GetStudentProgress(ctx context.Context, studentID uint, filters repositories.ProgressFilters, callerID uint) ([]*models.StudentProgress, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadScope(caller, studentID); err != nil {
		return nil, err
	}

	return s.repo.Progress().GetByStudent(ctx, nil, studentID, filters)
}

func (s *progressService) GetChapterProgress(ctx context.Context, chapterID uint, filters repositories.ProgressFilters, callerID uint) ([]*models.StudentProgress, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionRead, authz.ResourceProgress) {
		return nil, NewPermissionError(callerID, chapterID, "progress", "read", "chapter-wide progress is staff only")
	}

	return s.repo.Progress().GetByChapter(ctx, nil, chapterID, filters)
}

func (s *progressService) GetStats(ctx context.Context, studentID uint, callerID uint) (*repositories.ProgressStats, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReadScope(caller, studentID); err != nil {
		return nil, err
	}

	return s.repo.Progress().GetStats(ctx, nil, studentID)
}

func (s *progressService) ExportChapterReport(ctx context.Context, chapterID uint, callerID uint) (*excelize.File, error) {
	caller, err := resolveActor(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(caller.Role, authz.ActionRead, authz.ResourceProgress) {
		return nil, NewPermissionError(callerID, chapterID, "progress", "read", "progress reports are staff only")
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, chapterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, chapter.SubjectID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, err
	}
	subjectName := ""
	if subject != nil {
		subjectName = subject.Name
	}

	records, err := s.repo.Progress().GetByChapter(ctx, nil, chapterID, repositories.ProgressFilters{})
	if err != nil {
		return nil, err
	}

	rows := make([]export.ProgressRow, 0, len(records))
	for _, rec := range records {
		row := export.ProgressRow{
			ChapterTitle: chapter.Title,
			SubjectName:  subjectName,
			Status:       rec.Status,
			Completion:   rec.CompletionPercentage,
			CompletedAt:  rec.CompletedAt,
			UpdatedAt:    rec.UpdatedAt,
		}
		if student, err := s.repo.User().GetByID(ctx, nil, rec.StudentID); err == nil {
			row.StudentName = student.FullName
			row.StudentEmail = student.Email
		}
		rows = append(rows, row)
	}

	title := fmt.Sprintf("Progress report: %s", chapter.Title)
	return export.BuildProgressWorkbook(title, rows)
}

func (s *progressService) checkReadScope(caller *models.User, studentID uint) error {
	if authz.Can(caller.Role, authz.ActionRead, authz.ResourceProgress) {
		return nil
	}
	if authz.CanOwn(caller.Role, authz.ActionRead, authz.ResourceProgress) && caller.ID == studentID {
		return nil
	}
	return NewPermissionError(caller.ID, studentID, "progress", "read", "not own progress")
}

func (s *progressService) publishCompleted(ctx context.Context, progress *models.StudentProgress) {
	if s.eventPublisher == nil || progress.CompletedAt == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.EventProgressCompleted, events.ProgressCompletedEvent{
		StudentID:   progress.StudentID,
		ChapterID:   progress.ChapterID,
		CompletedAt: *progress.CompletedAt,
	})
	if err != nil {
		s.logger.Error("Failed to publish progress completed event",
			"error", err,
			"student_id", progress.StudentID,
			"chapter_id", progress.ChapterID)
	}
}
