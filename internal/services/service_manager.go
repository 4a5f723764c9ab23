package services

import (
	"context"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	db             *gorm.DB
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher

	userService       UserService
	contentService    ContentService
	quizService       QuizService
	progressService   ProgressService
	taskService       TaskService
	assignmentService AssignmentService

	initialized bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) ServiceManager {
	return &serviceManager{
		db:             db,
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
	sm.contentService = NewContentService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.quizService = NewQuizService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.progressService = NewProgressService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
	sm.taskService = NewTaskService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)
	sm.assignmentService = NewAssignmentService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventPublisher)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return nil
	}

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.initialized = false
	sm.logger.Info("Service manager shut down")
	return nil
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Content() ContentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.contentService
}

func (sm *serviceManager) Quiz() QuizService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.quizService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.progressService
}

func (sm *serviceManager) Task() TaskService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.taskService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.assignmentService
}
