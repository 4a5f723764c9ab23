package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

func TestNewContentService(t *testing.T) {
	if svc := NewContentService(&mockRepository{}, nil, testLogger(), validator.New()); svc == nil {
		t.Fatal("NewContentService() returned nil")
	}
}

func TestNewQuizService(t *testing.T) {
	if svc := NewQuizService(&mockRepository{}, nil, testLogger(), validator.New()); svc == nil {
		t.Fatal("NewQuizService() returned nil")
	}
}

func TestNewAssignmentService(t *testing.T) {
	svc := NewAssignmentService(&mockRepository{}, nil, testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()))
	if svc == nil {
		t.Fatal("NewAssignmentService() returned nil")
	}
}

func TestServiceManager_Initialize(t *testing.T) {
	manager := NewServiceManager(nil, &mockRepository{}, testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()))
	if err := manager.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if manager.User() == nil {
		t.Error("User() returned nil after Initialize")
	}
	if manager.Content() == nil {
		t.Error("Content() returned nil after Initialize")
	}
	if manager.Quiz() == nil {
		t.Error("Quiz() returned nil after Initialize")
	}
	if manager.Progress() == nil {
		t.Error("Progress() returned nil after Initialize")
	}
	if manager.Task() == nil {
		t.Error("Task() returned nil after Initialize")
	}
	if manager.Assignment() == nil {
		t.Error("Assignment() returned nil after Initialize")
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestServiceManager_PanicsBeforeInitialize(t *testing.T) {
	manager := NewServiceManager(nil, &mockRepository{}, testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()))

	defer func() {
		if recover() == nil {
			t.Error("expected panic for an uninitialized manager")
		}
	}()
	manager.User()
}
