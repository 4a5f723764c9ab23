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

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return repositories.NewStorageError("create user", err)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := u.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := db.WithContext(ctx).First(&dbUser, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.NewNotFoundError("user", id)
			}
			return nil, err
		}
		return &dbUser, nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.NewNotFoundError("user", id)
		}
		return nil, err
	}

	return &user, nil
}

func (u *UserPostgreSQL) GetByIDWithProfile(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	err := db.WithContext(ctx).
		Preload("StudentProfile").
		Preload("TeacherProfile").
		Preload("PrincipalProfile").
		Preload("DeveloperProfile").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("user", id)
		}
		return nil, repositories.NewStorageError("get user with profile", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("user", 0)
		}
		return nil, repositories.NewStorageError("get user by email", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return repositories.NewStorageError("update user", err)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, user.ID)
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := u.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return repositories.NewStorageError("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("user", id)
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, id)
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, repositories.NewStorageError("count users", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(filters.Offset).Find(&users).Error; err != nil {
		return nil, 0, repositories.NewStorageError("list users", err)
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := u.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, repositories.NewStorageError("check user exists", err)
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := u.getDB(tx)
	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, repositories.NewStorageError("check email exists", err)
	}
	return count > 0, nil
}

// ===== PROFILES =====

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p *ProfilePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProfilePostgreSQL) CreateStudent(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	return p.getDB(tx).WithContext(ctx).Create(profile).Error
}

func (p *ProfilePostgreSQL) CreateTeacher(ctx context.Context, tx *gorm.DB, profile *models.TeacherProfile) error {
	return p.getDB(tx).WithContext(ctx).Create(profile).Error
}

func (p *ProfilePostgreSQL) CreatePrincipal(ctx context.Context, tx *gorm.DB, profile *models.PrincipalProfile) error {
	return p.getDB(tx).WithContext(ctx).Create(profile).Error
}

func (p *ProfilePostgreSQL) CreateDeveloper(ctx context.Context, tx *gorm.DB, profile *models.DeveloperProfile) error {
	return p.getDB(tx).WithContext(ctx).Create(profile).Error
}

func (p *ProfilePostgreSQL) UpdateStudent(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	return p.getDB(tx).WithContext(ctx).Save(profile).Error
}

func (p *ProfilePostgreSQL) UpdateTeacher(ctx context.Context, tx *gorm.DB, profile *models.TeacherProfile) error {
	return p.getDB(tx).WithContext(ctx).Save(profile).Error
}

func (p *ProfilePostgreSQL) UpdatePrincipal(ctx context.Context, tx *gorm.DB, profile *models.PrincipalProfile) error {
	return p.getDB(tx).WithContext(ctx).Save(profile).Error
}

func (p *ProfilePostgreSQL) UpdateDeveloper(ctx context.Context, tx *gorm.DB, profile *models.DeveloperProfile) error {
	return p.getDB(tx).WithContext(ctx).Save(profile).Error
}
