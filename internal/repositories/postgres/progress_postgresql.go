package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProgressPostgreSQL) Create(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Create(progress).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Let the caller detect the insert race and retry as an update.
			return err
		}
		return repositories.NewStorageError("create progress", err)
	}
	return nil
}

func (p *ProgressPostgreSQL) Update(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Save(progress).Error; err != nil {
		return repositories.NewStorageError("update progress", err)
	}
	return nil
}

func (p *ProgressPostgreSQL) GetByStudentAndChapter(ctx context.Context, tx *gorm.DB, studentID, chapterID uint) (*models.StudentProgress, error) {
	db := p.getDB(tx)
	var progress models.StudentProgress
	err := db.WithContext(ctx).
		Where("student_id = ? AND chapter_id = ?", studentID, chapterID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("progress", 0)
		}
		return nil, repositories.NewStorageError("get progress", err)
	}
	return &progress, nil
}

// GetForUpdate reads the progress row under SELECT ... FOR UPDATE so that
// concurrent writers to the same (student, chapter) pair serialize.
func (p *ProgressPostgreSQL) GetForUpdate(ctx context.Context, tx *gorm.DB, studentID, chapterID uint) (*models.StudentProgress, error) {
	db := p.getDB(tx)
	var progress models.StudentProgress
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND chapter_id = ?", studentID, chapterID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("progress", 0)
		}
		return nil, repositories.NewStorageError("lock progress", err)
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.ProgressFilters) ([]*models.StudentProgress, error) {
	db := p.getDB(tx)
	var records []*models.StudentProgress

	query := db.WithContext(ctx).Where("student_id = ?", studentID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, repositories.NewStorageError("get progress by student", err)
	}
	return records, nil
}

func (p *ProgressPostgreSQL) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint, filters repositories.ProgressFilters) ([]*models.StudentProgress, error) {
	db := p.getDB(tx)
	var records []*models.StudentProgress

	query := db.WithContext(ctx).Where("chapter_id = ?", chapterID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, repositories.NewStorageError("get progress by chapter", err)
	}
	return records, nil
}

func (p *ProgressPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, studentID uint) (*repositories.ProgressStats, error) {
	db := p.getDB(tx)
	stats := &repositories.ProgressStats{}

	var totalChapters int64
	if err := db.WithContext(ctx).Model(&models.Chapter{}).Count(&totalChapters).Error; err != nil {
		return nil, repositories.NewStorageError("count chapters", err)
	}
	stats.TotalChapters = int(totalChapters)

	type row struct {
		Status models.ProgressStatus
		Count  int
		AvgPct float64
	}
	var rows []row
	err := db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Select("status, COUNT(*) as count, AVG(completion_percentage) as avg_pct").
		Where("student_id = ?", studentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, repositories.NewStorageError("aggregate progress stats", err)
	}

	var tracked int
	var pctSum float64
	for _, r := range rows {
		tracked += r.Count
		pctSum += r.AvgPct * float64(r.Count)
		switch r.Status {
		case models.ProgressCompleted:
			stats.ChaptersCompleted = r.Count
		case models.ProgressInProgress:
			stats.ChaptersStarted = r.Count
		}
	}
	if tracked > 0 {
		stats.AverageCompletion = pctSum / float64(tracked)
	}

	return stats, nil
}
