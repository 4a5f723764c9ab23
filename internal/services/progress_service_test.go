package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProgressFixture() (*mockRepository, *events.MockEventPublisher, ProgressService) {
	repo := &mockRepository{
		user: newMockUserRepo(
			testUser(1, models.RoleStudent),
			testUser(2, models.RoleStudent),
			testUser(3, models.RoleTeacher),
			testUser(4, models.RolePrincipal),
		),
		chapter:  newMockChapterRepo(10),
		progress: newMockProgressRepo(),
	}
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewProgressService(repo, nil, testLogger(), validator.New(), publisher)
	return repo, publisher, svc
}

func TestUpdateProgress_CreatesRecord(t *testing.T) {
	_, _, svc := newProgressFixture()

	resp, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
		StudentID:            1,
		ChapterID:            10,
		CompletionPercentage: 40,
	}, 1)
	if err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	if resp.Status != models.ProgressInProgress {
		t.Errorf("status = %q, want %q", resp.Status, models.ProgressInProgress)
	}
	if resp.CompletionPercentage != 40 {
		t.Errorf("completion = %v, want 40", resp.CompletionPercentage)
	}
	if resp.CompletedAt != nil {
		t.Errorf("completed_at should be nil for a partial update")
	}
}

func TestUpdateProgress_StatusDerivation(t *testing.T) {
	tests := []struct {
		pct  float64
		want models.ProgressStatus
	}{
		{pct: 0, want: models.ProgressNotStarted},
		{pct: 50, want: models.ProgressInProgress},
		{pct: 100, want: models.ProgressCompleted},
	}

	for _, tt := range tests {
		_, _, svc := newProgressFixture()
		resp, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
			StudentID: 1, ChapterID: 10, CompletionPercentage: tt.pct,
		}, 1)
		if err != nil {
			t.Fatalf("UpdateProgress(%v) error = %v", tt.pct, err)
		}
		if resp.Status != tt.want {
			t.Errorf("status at %v%% = %q, want %q", tt.pct, resp.Status, tt.want)
		}
		if tt.want != models.ProgressCompleted && resp.CompletedAt != nil {
			t.Errorf("completed_at set at %v%%", tt.pct)
		}
	}
}

func TestUpdateProgress_ZeroResetsToNotStarted(t *testing.T) {
	_, _, svc := newProgressFixture()
	ctx := context.Background()

	if _, err := svc.UpdateProgress(ctx, &UpdateProgressRequest{
		StudentID: 1, ChapterID: 10, CompletionPercentage: 60,
	}, 1); err != nil {
		t.Fatalf("UpdateProgress(60) error = %v", err)
	}

	resp, err := svc.UpdateProgress(ctx, &UpdateProgressRequest{
		StudentID: 1, ChapterID: 10, CompletionPercentage: 0,
	}, 1)
	if err != nil {
		t.Fatalf("UpdateProgress(0) error = %v", err)
	}
	if resp.Status != models.ProgressNotStarted {
		t.Errorf("status = %q, want %q", resp.Status, models.ProgressNotStarted)
	}
}

func TestUpdateProgress_OverwritesPercentage(t *testing.T) {
	_, _, svc := newProgressFixture()
	ctx := context.Background()

	for _, pct := range []float64{30, 70, 55} {
		resp, err := svc.UpdateProgress(ctx, &UpdateProgressRequest{
			StudentID:            1,
			ChapterID:            10,
			CompletionPercentage: pct,
		}, 1)
		if err != nil {
			t.Fatalf("UpdateProgress(%v) error = %v", pct, err)
		}
		if resp.CompletionPercentage != pct {
			t.Errorf("completion = %v, want %v", resp.CompletionPercentage, pct)
		}
	}
}

func TestUpdateProgress_CompletionAtHundred(t *testing.T) {
	_, publisher, svc := newProgressFixture()

	resp, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
		StudentID:            1,
		ChapterID:            10,
		CompletionPercentage: 100,
	}, 1)
	if err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	if resp.Status != models.ProgressCompleted {
		t.Errorf("status = %q, want %q", resp.Status, models.ProgressCompleted)
	}
	if resp.CompletedAt == nil {
		t.Fatal("completed_at not set on completion")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if published[0].Type != events.EventProgressCompleted {
		t.Errorf("event type = %q, want %q", published[0].Type, events.EventProgressCompleted)
	}
}

func TestUpdateProgress_CompletionIsSticky(t *testing.T) {
	_, publisher, svc := newProgressFixture()
	ctx := context.Background()

	first, err := svc.UpdateProgress(ctx, &UpdateProgressRequest{
		StudentID: 1, ChapterID: 10, CompletionPercentage: 100,
	}, 1)
	if err != nil {
		t.Fatalf("first UpdateProgress() error = %v", err)
	}
	completedAt := *first.CompletedAt
	publisher.ClearEvents()

	second, err := svc.UpdateProgress(ctx, &UpdateProgressRequest{
		StudentID: 1, ChapterID: 10, CompletionPercentage: 50,
	}, 1)
	if err != nil {
		t.Fatalf("second UpdateProgress() error = %v", err)
	}
	if second.CompletionPercentage != 50 {
		t.Errorf("completion = %v, want 50 (percentage always overwrites)", second.CompletionPercentage)
	}
	if second.Status != models.ProgressCompleted {
		t.Errorf("status regressed to %q", second.Status)
	}
	if second.CompletedAt == nil || !second.CompletedAt.Equal(completedAt) {
		t.Errorf("completed_at changed after completion")
	}
	if got := publisher.GetPublishedEvents(); len(got) != 0 {
		t.Errorf("published %d events on a post-completion update, want 0", len(got))
	}
}

func TestUpdateProgress_InsertRaceRetriesAsUpdate(t *testing.T) {
	repo, _, svc := newProgressFixture()
	repo.progress.(*mockProgressRepo).raceOnce = true

	resp, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
		StudentID: 1, ChapterID: 10, CompletionPercentage: 80,
	}, 1)
	if err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	if resp.CompletionPercentage != 80 {
		t.Errorf("completion = %v, want 80 after retrying as update", resp.CompletionPercentage)
	}
	if resp.ID == 0 {
		t.Error("expected the winner's row to be reused")
	}
}

func TestUpdateProgress_Permissions(t *testing.T) {
	tests := []struct {
		name      string
		callerID  uint
		studentID uint
		wantPerm  bool
	}{
		{name: "student own progress", callerID: 1, studentID: 1, wantPerm: false},
		{name: "student other student", callerID: 1, studentID: 2, wantPerm: true},
		{name: "teacher cannot record", callerID: 3, studentID: 1, wantPerm: true},
		{name: "principal cannot record", callerID: 4, studentID: 1, wantPerm: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newProgressFixture()
			_, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
				StudentID: tt.studentID, ChapterID: 10, CompletionPercentage: 25,
			}, tt.callerID)

			if tt.wantPerm && !IsPermissionError(err) {
				t.Errorf("error = %v, want permission error", err)
			}
			if !tt.wantPerm && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
		})
	}
}

func TestUpdateProgress_InvalidPercentage(t *testing.T) {
	for _, pct := range []float64{-1, 101} {
		_, _, svc := newProgressFixture()
		_, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
			StudentID: 1, ChapterID: 10, CompletionPercentage: pct,
		}, 1)

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("UpdateProgress(%v) error = %v, want validation errors", pct, err)
		}
	}
}

func TestUpdateProgress_UnknownChapter(t *testing.T) {
	_, _, svc := newProgressFixture()
	_, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
		StudentID: 1, ChapterID: 999, CompletionPercentage: 25,
	}, 1)
	if !errors.Is(err, ErrChapterNotFound) {
		t.Errorf("error = %v, want ErrChapterNotFound", err)
	}
}

func TestGetStudentProgress_ReadScope(t *testing.T) {
	tests := []struct {
		name      string
		callerID  uint
		studentID uint
		wantPerm  bool
	}{
		{name: "student reads own", callerID: 1, studentID: 1, wantPerm: false},
		{name: "student reads other", callerID: 1, studentID: 2, wantPerm: true},
		{name: "teacher reads any", callerID: 3, studentID: 1, wantPerm: false},
		{name: "principal reads any", callerID: 4, studentID: 1, wantPerm: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newProgressFixture()
			_, err := svc.GetStudentProgress(context.Background(), tt.studentID, repositories.ProgressFilters{}, tt.callerID)

			if tt.wantPerm && !IsPermissionError(err) {
				t.Errorf("error = %v, want permission error", err)
			}
			if !tt.wantPerm && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
		})
	}
}

func TestGetChapterProgress_StaffOnly(t *testing.T) {
	_, _, svc := newProgressFixture()

	if _, err := svc.GetChapterProgress(context.Background(), 10, repositories.ProgressFilters{}, 1); !IsPermissionError(err) {
		t.Errorf("student error = %v, want permission error", err)
	}
	if _, err := svc.GetChapterProgress(context.Background(), 10, repositories.ProgressFilters{}, 3); err != nil {
		t.Errorf("teacher error = %v, want nil", err)
	}
}

func TestUpdateProgress_InactiveCaller(t *testing.T) {
	repo, _, svc := newProgressFixture()
	inactive := testUser(9, models.RoleStudent)
	inactive.IsActive = false
	repo.user.(*mockUserRepo).users[9] = inactive

	_, err := svc.UpdateProgress(context.Background(), &UpdateProgressRequest{
		StudentID: 9, ChapterID: 10, CompletionPercentage: 25,
	}, 9)
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("error = %v, want ErrUserInactive", err)
	}
}
