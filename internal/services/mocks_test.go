package services

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
)

// mockRepository wires the per-entity mocks a test needs; everything else is nil.
type mockRepository struct {
	user     repositories.UserRepository
	chapter  repositories.ChapterRepository
	progress repositories.ProgressRepository
	task     repositories.TaskRepository
}

func (m *mockRepository) User() repositories.UserRepository             { return m.user }
func (m *mockRepository) Profile() repositories.ProfileRepository       { return &mockProfileRepo{} }
func (m *mockRepository) Subject() repositories.SubjectRepository       { return nil }
func (m *mockRepository) Chapter() repositories.ChapterRepository       { return m.chapter }
func (m *mockRepository) Lesson() repositories.LessonRepository         { return nil }
func (m *mockRepository) Resource() repositories.ResourceRepository     { return nil }
func (m *mockRepository) Quiz() repositories.QuizRepository             { return nil }
func (m *mockRepository) QuizResult() repositories.QuizResultRepository { return nil }
func (m *mockRepository) Progress() repositories.ProgressRepository     { return m.progress }
func (m *mockRepository) Task() repositories.TaskRepository             { return m.task }
func (m *mockRepository) Assignment() repositories.AssignmentRepository { return nil }
func (m *mockRepository) Class() repositories.ClassRepository           { return nil }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func testUser(id uint, role models.UserRole) *models.User {
	return &models.User{
		ID:       id,
		Email:    fmt.Sprintf("user%d@school.test", id),
		FullName: fmt.Sprintf("User %d", id),
		Role:     role,
		IsActive: true,
	}
}

// ===== USERS =====

type mockUserRepo struct {
	users map[uint]*models.User
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.ID = uint(len(m.users) + 1)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repositories.NewNotFoundError("user", id)
}

func (m *mockUserRepo) GetByIDWithProfile(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	return m.GetByID(ctx, tx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.NewNotFoundError("user", 0)
}

func (m *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := m.users[id]; !ok {
		return repositories.NewNotFoundError("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type mockProfileRepo struct{}

func (m *mockProfileRepo) CreateStudent(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	return nil
}
func (m *mockProfileRepo) CreateTeacher(ctx context.Context, tx *gorm.DB, profile *models.TeacherProfile) error {
	return nil
}
func (m *mockProfileRepo) CreatePrincipal(ctx context.Context, tx *gorm.DB, profile *models.PrincipalProfile) error {
	return nil
}
func (m *mockProfileRepo) CreateDeveloper(ctx context.Context, tx *gorm.DB, profile *models.DeveloperProfile) error {
	return nil
}
func (m *mockProfileRepo) UpdateStudent(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	return nil
}
func (m *mockProfileRepo) UpdateTeacher(ctx context.Context, tx *gorm.DB, profile *models.TeacherProfile) error {
	return nil
}
func (m *mockProfileRepo) UpdatePrincipal(ctx context.Context, tx *gorm.DB, profile *models.PrincipalProfile) error {
	return nil
}
func (m *mockProfileRepo) UpdateDeveloper(ctx context.Context, tx *gorm.DB, profile *models.DeveloperProfile) error {
	return nil
}

// ===== CHAPTERS =====

type mockChapterRepo struct {
	chapters map[uint]*models.Chapter
}

func newMockChapterRepo(ids ...uint) *mockChapterRepo {
	m := &mockChapterRepo{chapters: make(map[uint]*models.Chapter)}
	for _, id := range ids {
		m.chapters[id] = &models.Chapter{ID: id, Title: "Chapter", SubjectID: 1, Order: 1}
	}
	return m
}

func (m *mockChapterRepo) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	chapter.ID = uint(len(m.chapters) + 1)
	m.chapters[chapter.ID] = chapter
	return nil
}

func (m *mockChapterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	if c, ok := m.chapters[id]; ok {
		return c, nil
	}
	return nil, repositories.NewNotFoundError("chapter", id)
}

func (m *mockChapterRepo) Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	m.chapters[chapter.ID] = chapter
	return nil
}

func (m *mockChapterRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(m.chapters, id)
	return nil
}

func (m *mockChapterRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Chapter, error) {
	return nil, nil
}

func (m *mockChapterRepo) Reorder(ctx context.Context, tx *gorm.DB, subjectID uint, orders map[uint]int) error {
	return nil
}

func (m *mockChapterRepo) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	_, ok := m.chapters[id]
	return ok, nil
}

// ===== PROGRESS =====

type progressKey struct {
	student uint
	chapter uint
}

type mockProgressRepo struct {
	mu      sync.Mutex
	records map[progressKey]*models.StudentProgress
	nextID  uint

	// When true, the first Create fails with a duplicate key error as if a
	// concurrent writer inserted the row between the read and the insert.
	raceOnce bool
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{records: make(map[progressKey]*models.StudentProgress)}
}

func (m *mockProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := progressKey{progress.StudentID, progress.ChapterID}
	if m.raceOnce {
		m.raceOnce = false
		// Simulate the concurrent winner's row.
		m.nextID++
		m.records[key] = &models.StudentProgress{
			ID:                   m.nextID,
			StudentID:            progress.StudentID,
			ChapterID:            progress.ChapterID,
			Status:               models.ProgressInProgress,
			CompletionPercentage: 10,
		}
		return gorm.ErrDuplicatedKey
	}
	if _, exists := m.records[key]; exists {
		return gorm.ErrDuplicatedKey
	}

	m.nextID++
	progress.ID = m.nextID
	m.records[key] = progress
	return nil
}

func (m *mockProgressRepo) Update(ctx context.Context, tx *gorm.DB, progress *models.StudentProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[progressKey{progress.StudentID, progress.ChapterID}] = progress
	return nil
}

func (m *mockProgressRepo) GetByStudentAndChapter(ctx context.Context, tx *gorm.DB, studentID, chapterID uint) (*models.StudentProgress, error) {
	return m.GetForUpdate(ctx, tx, studentID, chapterID)
}

func (m *mockProgressRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, studentID, chapterID uint) (*models.StudentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.records[progressKey{studentID, chapterID}]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.NewNotFoundError("progress", 0)
}

func (m *mockProgressRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint, filters repositories.ProgressFilters) ([]*models.StudentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.StudentProgress
	for k, p := range m.records {
		if k.student == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProgressRepo) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint, filters repositories.ProgressFilters) ([]*models.StudentProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.StudentProgress
	for k, p := range m.records {
		if k.chapter == chapterID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProgressRepo) GetStats(ctx context.Context, tx *gorm.DB, studentID uint) (*repositories.ProgressStats, error) {
	return &repositories.ProgressStats{}, nil
}

// ===== TASKS =====

type mockTaskRepo struct {
	mu     sync.Mutex
	tasks  map[uint]*models.Task
	nextID uint
}

func newMockTaskRepo(tasks ...*models.Task) *mockTaskRepo {
	m := &mockTaskRepo{tasks: make(map[uint]*models.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
	}
	return m
}

func (m *mockTaskRepo) Create(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	task.ID = m.nextID
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	return m.GetForUpdate(ctx, tx, id)
}

func (m *mockTaskRepo) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repositories.NewNotFoundError("task", id)
}

func (m *mockTaskRepo) Update(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return repositories.NewNotFoundError("task", id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Task
	for _, t := range m.tasks {
		if filters.AssignedTo != nil && t.AssignedTo != *filters.AssignedTo {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (m *mockTaskRepo) GetByAssignee(ctx context.Context, tx *gorm.DB, assigneeID uint, filters repositories.TaskFilters) ([]*models.Task, error) {
	out, _, err := m.List(ctx, tx, repositories.TaskFilters{AssignedTo: &assigneeID})
	return out, err
}

func (m *mockTaskRepo) GetStats(ctx context.Context, tx *gorm.DB, assigneeID uint) (*repositories.TaskStats, error) {
	return &repositories.TaskStats{StatusBreakdown: make(map[models.TaskStatus]int)}, nil
}
