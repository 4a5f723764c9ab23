package repositories

import (
	"context"

	"github.com/SAP-F-2025/school-service/internal/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByIDWithProfile(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error // soft delete

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

// ProfileRepository manages the role-specific profile rows owned by users.
type ProfileRepository interface {
	CreateStudent(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error
	CreateTeacher(ctx context.Context, tx *gorm.DB, profile *models.TeacherProfile) error
	CreatePrincipal(ctx context.Context, tx *gorm.DB, profile *models.PrincipalProfile) error
	CreateDeveloper(ctx context.Context, tx *gorm.DB, profile *models.DeveloperProfile) error

	UpdateStudent(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error
	UpdateTeacher(ctx context.Context, tx *gorm.DB, profile *models.TeacherProfile) error
	UpdatePrincipal(ctx context.Context, tx *gorm.DB, profile *models.PrincipalProfile) error
	UpdateDeveloper(ctx context.Context, tx *gorm.DB, profile *models.DeveloperProfile) error
}
