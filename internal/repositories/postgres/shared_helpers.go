package postgres

import (
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyTaskFilters applies common filters to task queries
func (h *SharedHelpers) ApplyTaskFilters(query *gorm.DB, filters repositories.TaskFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filters.AssignedTo)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}
	return query
}

// ApplyAssignmentFilters applies common filters to assignment queries
func (h *SharedHelpers) ApplyAssignmentFilters(query *gorm.DB, filters repositories.AssignmentFilters) *gorm.DB {
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}
	return query
}

// ApplyProgressFilters applies common filters to progress queries
func (h *SharedHelpers) ApplyProgressFilters(query *gorm.DB, filters repositories.ProgressFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"status":     true,
		"due_date":   true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
