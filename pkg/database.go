package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/school-service/internal/config"
	"github.com/SAP-F-2025/school-service/internal/models"
)

// InitDatabase opens the PostgreSQL connection and migrates the schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
		// Surface unique violations as gorm.ErrDuplicatedKey so the progress
		// upsert can detect insert races.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.TeacherProfile{},
		&models.PrincipalProfile{},
		&models.DeveloperProfile{},
		&models.Subject{},
		&models.Chapter{},
		&models.Lesson{},
		&models.Resource{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizResult{},
		&models.StudentProgress{},
		&models.Task{},
		&models.Assignment{},
		&models.Class{},
		&models.ClassAssignment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
