package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AssignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	if err := a.getDB(tx).WithContext(ctx).Create(assignment).Error; err != nil {
		return repositories.NewStorageError("create assignment", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := a.getDB(tx).WithContext(ctx).First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("assignment", id)
		}
		return nil, repositories.NewStorageError("get assignment", err)
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	if err := a.getDB(tx).WithContext(ctx).Save(assignment).Error; err != nil {
		return repositories.NewStorageError("update assignment", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := a.getDB(tx).WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete assignment", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("assignment", id)
	}
	return nil
}

func (a *AssignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	db := a.getDB(tx)
	var assignments []*models.Assignment
	var total int64

	query := db.WithContext(ctx).Model(&models.Assignment{})
	query = a.helpers.ApplyAssignmentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.NewStorageError("count assignments", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if err := query.Order("due_date ASC").Limit(limit).Offset(filters.Offset).Find(&assignments).Error; err != nil {
		return nil, 0, repositories.NewStorageError("list assignments", err)
	}

	return assignments, total, nil
}

func (a *AssignmentPostgreSQL) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID uint) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := a.getDB(tx).WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("due_date ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, repositories.NewStorageError("get assignments by creator", err)
	}
	return assignments, nil
}

// GetByStudent resolves assignments through the classes matching the
// student's grade and section.
func (a *AssignmentPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Assignment, error) {
	db := a.getDB(tx)

	var profile models.StudentProfile
	err := db.WithContext(ctx).Where("user_id = ?", studentID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("student profile", studentID)
		}
		return nil, repositories.NewStorageError("get student profile", err)
	}

	classQuery := db.WithContext(ctx).
		Model(&models.Class{}).
		Select("id").
		Where("grade = ?", profile.Grade)
	if profile.Section != nil {
		classQuery = classQuery.Where("section = ?", *profile.Section)
	}

	var assignments []*models.Assignment
	err = db.WithContext(ctx).
		Joins("JOIN class_assignments ca ON ca.assignment_id = assignments.id").
		Where("ca.class_id IN (?)", classQuery).
		Order("assignments.due_date ASC").
		Distinct().
		Find(&assignments).Error
	if err != nil {
		return nil, repositories.NewStorageError("get assignments by student", err)
	}
	return assignments, nil
}

// ===== CLASSES =====

type ClassPostgreSQL struct {
	db *gorm.DB
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{db: db}
}

func (c *ClassPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if err := c.getDB(tx).WithContext(ctx).Create(class).Error; err != nil {
		return repositories.NewStorageError("create class", err)
	}
	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := c.getDB(tx).WithContext(ctx).First(&class, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("class", id)
		}
		return nil, repositories.NewStorageError("get class", err)
	}
	return &class, nil
}

func (c *ClassPostgreSQL) Update(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if err := c.getDB(tx).WithContext(ctx).Save(class).Error; err != nil {
		return repositories.NewStorageError("update class", err)
	}
	return nil
}

func (c *ClassPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.getDB(tx).WithContext(ctx).Delete(&models.Class{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete class", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("class", id)
	}
	return nil
}

func (c *ClassPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Class, int64, error) {
	db := c.getDB(tx)
	var classes []*models.Class
	var total int64

	if err := db.WithContext(ctx).Model(&models.Class{}).Count(&total).Error; err != nil {
		return nil, 0, repositories.NewStorageError("count classes", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	err := db.WithContext(ctx).
		Order("grade ASC, section ASC").
		Limit(limit).
		Offset(offset).
		Find(&classes).Error
	if err != nil {
		return nil, 0, repositories.NewStorageError("list classes", err)
	}

	return classes, total, nil
}

func (c *ClassPostgreSQL) AssignToClass(ctx context.Context, tx *gorm.DB, link *models.ClassAssignment) error {
	if err := c.getDB(tx).WithContext(ctx).Create(link).Error; err != nil {
		return repositories.NewStorageError("assign to class", err)
	}
	return nil
}

func (c *ClassPostgreSQL) UnassignFromClass(ctx context.Context, tx *gorm.DB, linkID uint) error {
	result := c.getDB(tx).WithContext(ctx).Delete(&models.ClassAssignment{}, linkID)
	if result.Error != nil {
		return repositories.NewStorageError("unassign from class", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("class assignment", linkID)
	}
	return nil
}

func (c *ClassPostgreSQL) GetClassAssignments(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.ClassAssignment, error) {
	var links []*models.ClassAssignment
	err := c.getDB(tx).WithContext(ctx).
		Preload("Assignment").
		Where("class_id = ?", classID).
		Order("assigned_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, repositories.NewStorageError("get class assignments", err)
	}
	return links, nil
}
