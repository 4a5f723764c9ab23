package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

type TaskPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTaskPostgreSQL(db *gorm.DB) repositories.TaskRepository {
	return &TaskPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (t *TaskPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TaskPostgreSQL) Create(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	if err := t.getDB(tx).WithContext(ctx).Create(task).Error; err != nil {
		return repositories.NewStorageError("create task", err)
	}
	return nil
}

func (t *TaskPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := t.getDB(tx).WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("task", id)
		}
		return nil, repositories.NewStorageError("get task", err)
	}
	return &task, nil
}

// GetForUpdate re-reads the task under a row lock. Status transitions are
// validated against this copy, not the one the handler originally loaded.
func (t *TaskPostgreSQL) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	err := t.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("task", id)
		}
		return nil, repositories.NewStorageError("lock task", err)
	}
	return &task, nil
}

func (t *TaskPostgreSQL) Update(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	if err := t.getDB(tx).WithContext(ctx).Save(task).Error; err != nil {
		return repositories.NewStorageError("update task", err)
	}
	return nil
}

func (t *TaskPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := t.getDB(tx).WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("task", id)
	}
	return nil
}

func (t *TaskPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	db := t.getDB(tx)
	var tasks []*models.Task
	var total int64

	query := db.WithContext(ctx).Model(&models.Task{})
	query = t.helpers.ApplyTaskFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.NewStorageError("count tasks", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, limit, filters.Offset)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, repositories.NewStorageError("list tasks", err)
	}

	return tasks, total, nil
}

func (t *TaskPostgreSQL) GetByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uint, filters repositories.TaskFilters) ([]*models.Task, error) {
	db := t.getDB(tx)
	var tasks []*models.Task

	query := db.WithContext(ctx).Where("assigned_to = ?", assigneeID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, repositories.NewStorageError("get tasks by assignee", err)
	}
	return tasks, nil
}

func (t *TaskPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, assigneeID uint) (*repositories.TaskStats, error) {
	db := t.getDB(tx)
	stats := &repositories.TaskStats{
		StatusBreakdown: make(map[models.TaskStatus]int),
	}

	type row struct {
		Status models.TaskStatus
		Count  int
	}
	var rows []row
	err := db.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("assigned_to = ?", assigneeID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, repositories.NewStorageError("aggregate task stats", err)
	}

	for _, r := range rows {
		stats.StatusBreakdown[r.Status] = r.Count
		stats.TotalTasks += r.Count
	}

	var overdue int64
	err = db.WithContext(ctx).
		Model(&models.Task{}).
		Where("assigned_to = ? AND due_date < ? AND status IN ?",
			assigneeID, time.Now(), []models.TaskStatus{models.TaskPending, models.TaskInProgress}).
		Count(&overdue).Error
	if err != nil {
		return nil, repositories.NewStorageError("count overdue tasks", err)
	}
	stats.Overdue = int(overdue)

	return stats, nil
}
