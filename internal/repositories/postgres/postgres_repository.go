package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/cache"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user       repositories.UserRepository
	profile    repositories.ProfileRepository
	subject    repositories.SubjectRepository
	chapter    repositories.ChapterRepository
	lesson     repositories.LessonRepository
	resource   repositories.ResourceRepository
	quiz       repositories.QuizRepository
	quizResult repositories.QuizResultRepository
	progress   repositories.ProgressRepository
	task       repositories.TaskRepository
	assignment repositories.AssignmentRepository
	class      repositories.ClassRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
	}

	repo.user = NewUserPostgreSQL(config.DB, config.RedisClient)
	repo.profile = NewProfilePostgreSQL(config.DB)
	repo.subject = NewSubjectPostgreSQL(config.DB, config.RedisClient)
	repo.chapter = NewChapterPostgreSQL(config.DB, config.RedisClient)
	repo.lesson = NewLessonPostgreSQL(config.DB)
	repo.resource = NewResourcePostgreSQL(config.DB)
	repo.quiz = NewQuizPostgreSQL(config.DB)
	repo.quizResult = NewQuizResultPostgreSQL(config.DB)
	repo.progress = NewProgressPostgreSQL(config.DB)
	repo.task = NewTaskPostgreSQL(config.DB)
	repo.assignment = NewAssignmentPostgreSQL(config.DB)
	repo.class = NewClassPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository {
	return r.profile
}

func (r *PostgreSQLRepository) Subject() repositories.SubjectRepository {
	return r.subject
}

func (r *PostgreSQLRepository) Chapter() repositories.ChapterRepository {
	return r.chapter
}

func (r *PostgreSQLRepository) Lesson() repositories.LessonRepository {
	return r.lesson
}

func (r *PostgreSQLRepository) Resource() repositories.ResourceRepository {
	return r.resource
}

func (r *PostgreSQLRepository) Quiz() repositories.QuizRepository {
	return r.quiz
}

func (r *PostgreSQLRepository) QuizResult() repositories.QuizResultRepository {
	return r.quizResult
}

func (r *PostgreSQLRepository) Progress() repositories.ProgressRepository {
	return r.progress
}

func (r *PostgreSQLRepository) Task() repositories.TaskRepository {
	return r.task
}

func (r *PostgreSQLRepository) Assignment() repositories.AssignmentRepository {
	return r.assignment
}

func (r *PostgreSQLRepository) Class() repositories.ClassRepository {
	return r.class
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.user = NewUserPostgreSQL(tx, r.redisClient)
		txRepo.profile = NewProfilePostgreSQL(tx)
		txRepo.subject = NewSubjectPostgreSQL(tx, r.redisClient)
		txRepo.chapter = NewChapterPostgreSQL(tx, r.redisClient)
		txRepo.lesson = NewLessonPostgreSQL(tx)
		txRepo.resource = NewResourcePostgreSQL(tx)
		txRepo.quiz = NewQuizPostgreSQL(tx)
		txRepo.quizResult = NewQuizResultPostgreSQL(tx)
		txRepo.progress = NewProgressPostgreSQL(tx)
		txRepo.task = NewTaskPostgreSQL(tx)
		txRepo.assignment = NewAssignmentPostgreSQL(tx)
		txRepo.class = NewClassPostgreSQL(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize validates connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
