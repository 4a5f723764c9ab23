package services

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/SAP-F-2025/school-service/internal/events"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

func newUserFixture(users ...*models.User) (*mockRepository, UserService) {
	repo := &mockRepository{user: newMockUserRepo(users...)}
	svc := NewUserService(repo, nil, testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()))
	return repo, svc
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hashed)
}

func TestAuthenticate(t *testing.T) {
	active := testUser(1, models.RoleTeacher)
	active.HashedPassword = hashPassword(t, "correct-horse")
	inactive := testUser(2, models.RoleTeacher)
	inactive.HashedPassword = hashPassword(t, "correct-horse")
	inactive.IsActive = false

	_, svc := newUserFixture(active, inactive)

	tests := []struct {
		name    string
		req     *LoginRequest
		wantErr error
	}{
		{
			name: "valid credentials",
			req:  &LoginRequest{Email: active.Email, Password: "correct-horse"},
		},
		{
			name:    "wrong password",
			req:     &LoginRequest{Email: active.Email, Password: "battery-staple"},
			wantErr: ErrInvalidCredential,
		},
		{
			name: "unknown email looks like wrong password",
			req:  &LoginRequest{Email: "nobody@school.test", Password: "correct-horse"},
			// Must be indistinguishable from a bad password.
			wantErr: ErrInvalidCredential,
		},
		{
			name:    "inactive account",
			req:     &LoginRequest{Email: inactive.Email, Password: "correct-horse"},
			wantErr: ErrUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if user.ID != active.ID {
				t.Errorf("user ID = %d, want %d", user.ID, active.ID)
			}
		})
	}
}

func TestCreateUser(t *testing.T) {
	principal := testUser(1, models.RolePrincipal)
	_, svc := newUserFixture(principal)

	resp, err := svc.Create(context.Background(), &CreateUserRequest{
		Email:    "new.teacher@school.test",
		Password: "long-enough-password",
		FullName: "New Teacher",
		Role:     models.RoleTeacher,
	}, 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Role != models.RoleTeacher {
		t.Errorf("role = %q, want %q", resp.Role, models.RoleTeacher)
	}
	if !resp.IsActive {
		t.Error("new accounts start active")
	}
	if resp.HashedPassword == "long-enough-password" {
		t.Error("password stored in clear")
	}
}

func TestCreateUser_Denied(t *testing.T) {
	principal := testUser(1, models.RolePrincipal)
	teacher := testUser(2, models.RoleTeacher)
	student := testUser(3, models.RoleStudent)

	grade := "8"
	req := func() *CreateUserRequest {
		return &CreateUserRequest{
			Email:          "someone@school.test",
			Password:       "long-enough-password",
			FullName:       "Someone",
			Role:           models.RoleStudent,
			StudentProfile: &validator.StudentProfileRequest{Grade: grade},
		}
	}

	t.Run("teacher cannot create accounts", func(t *testing.T) {
		_, svc := newUserFixture(principal, teacher)
		if _, err := svc.Create(context.Background(), req(), 2); !IsPermissionError(err) {
			t.Errorf("error = %v, want permission error", err)
		}
	})

	t.Run("student cannot create accounts", func(t *testing.T) {
		_, svc := newUserFixture(principal, student)
		if _, err := svc.Create(context.Background(), req(), 3); !IsPermissionError(err) {
			t.Errorf("error = %v, want permission error", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, svc := newUserFixture(principal)
		dup := req()
		dup.Email = principal.Email
		if _, err := svc.Create(context.Background(), dup, 1); !errors.Is(err, ErrEmailTaken) {
			t.Errorf("error = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("student role requires profile", func(t *testing.T) {
		_, svc := newUserFixture(principal)
		missing := req()
		missing.StudentProfile = nil
		_, err := svc.Create(context.Background(), missing, 1)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("error = %v, want validation errors", err)
		}
	})
}

func TestUpdateUser_SelfServiceDropsAdminFields(t *testing.T) {
	teacher := testUser(1, models.RoleTeacher)
	_, svc := newUserFixture(teacher)

	newName := "Renamed Teacher"
	adminRole := models.RolePrincipal
	inactive := false
	resp, err := svc.Update(context.Background(), 1, &UpdateUserRequest{
		FullName: &newName,
		Role:     &adminRole,
		IsActive: &inactive,
	}, 1)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if resp.FullName != newName {
		t.Errorf("full name = %q, want %q", resp.FullName, newName)
	}
	if resp.Role != models.RoleTeacher {
		t.Errorf("self-update escalated role to %q", resp.Role)
	}
	if !resp.IsActive {
		t.Error("self-update deactivated the account")
	}
}

func TestDeleteUser(t *testing.T) {
	principal := testUser(1, models.RolePrincipal)
	teacher := testUser(2, models.RoleTeacher)

	t.Run("principal deletes others", func(t *testing.T) {
		_, svc := newUserFixture(principal, teacher)
		if err := svc.Delete(context.Background(), 2, 1); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		_, svc := newUserFixture(principal, teacher)
		if err := svc.Delete(context.Background(), 1, 1); !IsPermissionError(err) {
			t.Errorf("error = %v, want permission error", err)
		}
	})

	t.Run("teacher cannot delete", func(t *testing.T) {
		_, svc := newUserFixture(principal, teacher)
		if err := svc.Delete(context.Background(), 1, 2); !IsPermissionError(err) {
			t.Errorf("error = %v, want permission error", err)
		}
	})
}

func TestEnsureSuperuser(t *testing.T) {
	repo, svc := newUserFixture()

	if err := svc.EnsureSuperuser(context.Background(), "", "", "skip"); err != nil {
		t.Fatalf("blank credentials should be a no-op, got %v", err)
	}
	if n := len(repo.user.(*mockUserRepo).users); n != 0 {
		t.Fatalf("no-op created %d users", n)
	}

	if err := svc.EnsureSuperuser(context.Background(), "admin@school.test", "bootstrap-password", "Admin"); err != nil {
		t.Fatalf("EnsureSuperuser() error = %v", err)
	}
	created, err := repo.user.GetByEmail(context.Background(), nil, "admin@school.test")
	if err != nil {
		t.Fatalf("superuser not created: %v", err)
	}
	if created.Role != models.RoleDeveloper || !created.IsSuperuser {
		t.Errorf("superuser has role %q superuser=%v", created.Role, created.IsSuperuser)
	}

	// A second call with the same email must not duplicate.
	if err := svc.EnsureSuperuser(context.Background(), "admin@school.test", "bootstrap-password", "Admin"); err != nil {
		t.Fatalf("idempotent call error = %v", err)
	}
	if n := len(repo.user.(*mockUserRepo).users); n != 1 {
		t.Errorf("EnsureSuperuser created %d users, want 1", n)
	}
}
