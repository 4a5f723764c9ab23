package repositories

import "context"

// Repository aggregates every per-entity repository behind one interface.
type Repository interface {
	// User domain
	User() UserRepository
	Profile() ProfileRepository

	// Content domain
	Subject() SubjectRepository
	Chapter() ChapterRepository
	Lesson() LessonRepository
	Resource() ResourceRepository
	Quiz() QuizRepository
	QuizResult() QuizResultRepository

	// Academic domain
	Progress() ProgressRepository
	Task() TaskRepository
	Assignment() AssignmentRepository
	Class() ClassRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
