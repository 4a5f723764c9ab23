package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/cache"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

// ===== SUBJECTS =====

type SubjectPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubjectRepository {
	return &SubjectPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(subject).Error; err != nil {
		return repositories.NewStorageError("create subject", err)
	}
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Subject, "list:*")
	return nil
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var subject models.Subject

	err := s.cacheManager.Subject.CacheOrExecute(ctx, cacheKey, &subject, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubject models.Subject
		if err := db.WithContext(ctx).First(&dbSubject, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.NewNotFoundError("subject", id)
			}
			return nil, err
		}
		return &dbSubject, nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.NewNotFoundError("subject", id)
		}
		return nil, err
	}

	return &subject, nil
}

func (s *SubjectPostgreSQL) GetByIDWithChapters(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := s.getDB(tx)
	var subject models.Subject
	err := db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&subject, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("subject", id)
		}
		return nil, repositories.NewStorageError("get subject with chapters", err)
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(subject).Error; err != nil {
		return repositories.NewStorageError("update subject", err)
	}
	cache.InvalidateSubjectCache(ctx, s.cacheManager, subject.ID)
	return nil
}

func (s *SubjectPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Subject{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete subject", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("subject", id)
	}
	cache.InvalidateSubjectCache(ctx, s.cacheManager, id)
	return nil
}

func (s *SubjectPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubjectFilters) ([]*models.Subject, int64, error) {
	db := s.getDB(tx)
	var subjects []*models.Subject
	var total int64

	query := db.WithContext(ctx).Model(&models.Subject{})
	if filters.GradeLevel != nil {
		query = query.Where("grade_level = ?", *filters.GradeLevel)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.NewStorageError("count subjects", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if err := query.Order("name ASC").Limit(limit).Offset(filters.Offset).Find(&subjects).Error; err != nil {
		return nil, 0, repositories.NewStorageError("list subjects", err)
	}

	return subjects, total, nil
}

func (s *SubjectPostgreSQL) GetByGrade(ctx context.Context, tx *gorm.DB, gradeLevel string) ([]*models.Subject, error) {
	db := s.getDB(tx)
	var subjects []*models.Subject
	err := db.WithContext(ctx).
		Where("grade_level = ?", gradeLevel).
		Order("name ASC").
		Find(&subjects).Error
	if err != nil {
		return nil, repositories.NewStorageError("get subjects by grade", err)
	}
	return subjects, nil
}

// ===== CHAPTERS =====

type ChapterPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewChapterPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ChapterRepository {
	return &ChapterPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ChapterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ChapterPostgreSQL) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(chapter).Error; err != nil {
		return repositories.NewStorageError("create chapter", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Chapter, fmt.Sprintf("subject:%d*", chapter.SubjectID))
	return nil
}

func (c *ChapterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	db := c.getDB(tx)
	var chapter models.Chapter
	if err := db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("chapter", id)
		}
		return nil, repositories.NewStorageError("get chapter", err)
	}
	return &chapter, nil
}

func (c *ChapterPostgreSQL) Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(chapter).Error; err != nil {
		return repositories.NewStorageError("update chapter", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Chapter, fmt.Sprintf("subject:%d*", chapter.SubjectID))
	return nil
}

func (c *ChapterPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Chapter{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete chapter", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("chapter", id)
	}
	return nil
}

func (c *ChapterPostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Chapter, error) {
	db := c.getDB(tx)
	var chapters []*models.Chapter
	err := db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("display_order ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, repositories.NewStorageError("get chapters by subject", err)
	}
	return chapters, nil
}

func (c *ChapterPostgreSQL) Reorder(ctx context.Context, tx *gorm.DB, subjectID uint, orders map[uint]int) error {
	db := c.getDB(tx)
	for chapterID, order := range orders {
		result := db.WithContext(ctx).
			Model(&models.Chapter{}).
			Where("id = ? AND subject_id = ?", chapterID, subjectID).
			Update("display_order", order)
		if result.Error != nil {
			return repositories.NewStorageError("reorder chapters", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.NewNotFoundError("chapter", chapterID)
		}
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Chapter, fmt.Sprintf("subject:%d*", subjectID))
	return nil
}

func (c *ChapterPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := c.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.Chapter{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, repositories.NewStorageError("check chapter exists", err)
	}
	return count > 0, nil
}

// ===== LESSONS =====

type LessonPostgreSQL struct {
	db *gorm.DB
}

func NewLessonPostgreSQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonPostgreSQL{db: db}
}

func (l *LessonPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func (l *LessonPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if err := l.getDB(tx).WithContext(ctx).Create(lesson).Error; err != nil {
		return repositories.NewStorageError("create lesson", err)
	}
	return nil
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.getDB(tx).WithContext(ctx).First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("lesson", id)
		}
		return nil, repositories.NewStorageError("get lesson", err)
	}
	return &lesson, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if err := l.getDB(tx).WithContext(ctx).Save(lesson).Error; err != nil {
		return repositories.NewStorageError("update lesson", err)
	}
	return nil
}

func (l *LessonPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := l.getDB(tx).WithContext(ctx).Delete(&models.Lesson{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete lesson", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("lesson", id)
	}
	return nil
}

func (l *LessonPostgreSQL) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	err := l.getDB(tx).WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("display_order ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, repositories.NewStorageError("get lessons by chapter", err)
	}
	return lessons, nil
}

// ===== RESOURCES =====

type ResourcePostgreSQL struct {
	db *gorm.DB
}

func NewResourcePostgreSQL(db *gorm.DB) repositories.ResourceRepository {
	return &ResourcePostgreSQL{db: db}
}

func (r *ResourcePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ResourcePostgreSQL) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	if err := r.getDB(tx).WithContext(ctx).Create(resource).Error; err != nil {
		return repositories.NewStorageError("create resource", err)
	}
	return nil
}

func (r *ResourcePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := r.getDB(tx).WithContext(ctx).First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("resource", id)
		}
		return nil, repositories.NewStorageError("get resource", err)
	}
	return &resource, nil
}

func (r *ResourcePostgreSQL) Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	if err := r.getDB(tx).WithContext(ctx).Save(resource).Error; err != nil {
		return repositories.NewStorageError("update resource", err)
	}
	return nil
}

func (r *ResourcePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := r.getDB(tx).WithContext(ctx).Delete(&models.Resource{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete resource", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("resource", id)
	}
	return nil
}

func (r *ResourcePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResourceFilters) ([]*models.Resource, int64, error) {
	db := r.getDB(tx)
	var resources []*models.Resource
	var total int64

	query := db.WithContext(ctx).Model(&models.Resource{})
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if filters.ResourceType != nil {
		query = query.Where("resource_type = ?", *filters.ResourceType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.NewStorageError("count resources", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(filters.Offset).Find(&resources).Error; err != nil {
		return nil, 0, repositories.NewStorageError("list resources", err)
	}

	return resources, total, nil
}

func (r *ResourcePostgreSQL) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Resource, error) {
	var resources []*models.Resource
	err := r.getDB(tx).WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("created_at ASC").
		Find(&resources).Error
	if err != nil {
		return nil, repositories.NewStorageError("get resources by chapter", err)
	}
	return resources, nil
}
