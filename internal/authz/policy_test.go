package authz

import (
	"testing"

	"github.com/SAP-F-2025/school-service/internal/models"
)

var allActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign, ActionCancel}

var allResources = []Resource{
	ResourceUser, ResourceProfile, ResourceSubject, ResourceChapter, ResourceLesson,
	ResourceContent, ResourceQuiz, ResourceAssignment, ResourceTask, ResourceProgress,
	ResourceClassAssignment,
}

func TestScopeForIsTotal(t *testing.T) {
	roles := append([]models.UserRole{}, models.ValidRoles...)
	roles = append(roles, models.UserRole("janitor"), models.UserRole(""))

	for _, role := range roles {
		for _, action := range allActions {
			for _, resource := range allResources {
				first := ScopeFor(role, action, resource)
				second := ScopeFor(role, action, resource)
				if first != second {
					t.Fatalf("ScopeFor(%s, %s, %s) not deterministic: %v != %v", role, action, resource, first, second)
				}
				if first < ScopeNone || first > ScopeAny {
					t.Fatalf("ScopeFor(%s, %s, %s) out of range: %v", role, action, resource, first)
				}
			}
		}
	}
}

func TestUnknownRoleDeniedEverywhere(t *testing.T) {
	for _, action := range allActions {
		for _, resource := range allResources {
			if got := ScopeFor(models.UserRole("intruder"), action, resource); got != ScopeNone {
				t.Errorf("unknown role granted %v on %s/%s", got, action, resource)
			}
		}
	}
}

func TestUserManagement(t *testing.T) {
	tests := []struct {
		name   string
		role   models.UserRole
		action Action
		want   bool
	}{
		{"principal creates users", models.RolePrincipal, ActionCreate, true},
		{"principal deletes users", models.RolePrincipal, ActionDelete, true},
		{"developer updates users", models.RoleDeveloper, ActionUpdate, true},
		{"teacher cannot create users", models.RoleTeacher, ActionCreate, false},
		{"student cannot read users", models.RoleStudent, ActionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.role, tt.action, ResourceUser); got != tt.want {
				t.Errorf("Can(%s, %s, user) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestTaskPermissions(t *testing.T) {
	if !Can(models.RolePrincipal, ActionCreate, ResourceTask) {
		t.Error("principal should create tasks")
	}
	if !Can(models.RolePrincipal, ActionCancel, ResourceTask) {
		t.Error("principal should cancel tasks")
	}
	if !Can(models.RolePrincipal, ActionDelete, ResourceTask) {
		t.Error("principal should delete tasks")
	}
	if Can(models.RoleTeacher, ActionDelete, ResourceTask) {
		t.Error("teacher must not delete tasks")
	}
	if Can(models.RoleTeacher, ActionCancel, ResourceTask) {
		t.Error("teacher must not cancel tasks")
	}
	if !CanOwn(models.RoleTeacher, ActionUpdate, ResourceTask) {
		t.Error("teacher should update tasks assigned to self")
	}
	if Can(models.RoleTeacher, ActionUpdate, ResourceTask) {
		t.Error("teacher task updates must be limited to own tasks")
	}
	if CanOwn(models.RoleStudent, ActionUpdate, ResourceTask) {
		t.Error("student must not update tasks")
	}
}

func TestProgressPermissions(t *testing.T) {
	if !CanOwn(models.RoleStudent, ActionUpdate, ResourceProgress) {
		t.Error("student should update own progress")
	}
	if Can(models.RoleStudent, ActionUpdate, ResourceProgress) {
		t.Error("student progress writes must be own-scoped")
	}
	if !Can(models.RoleTeacher, ActionRead, ResourceProgress) {
		t.Error("teacher should read student progress")
	}
	if !Can(models.RolePrincipal, ActionRead, ResourceProgress) {
		t.Error("principal should read student progress")
	}
	if CanOwn(models.RoleTeacher, ActionUpdate, ResourceProgress) {
		t.Error("teacher must not write progress records")
	}
}

func TestProfileSelfService(t *testing.T) {
	for _, role := range models.ValidRoles {
		if !CanOwn(role, ActionRead, ResourceProfile) {
			t.Errorf("%s should read own profile", role)
		}
		if !CanOwn(role, ActionUpdate, ResourceProfile) {
			t.Errorf("%s should update own profile", role)
		}
	}
	if Can(models.RoleStudent, ActionUpdate, ResourceProfile) {
		t.Error("student profile updates must be own-scoped")
	}
}

func TestContentAccess(t *testing.T) {
	for _, resource := range []Resource{ResourceSubject, ResourceChapter, ResourceLesson, ResourceContent, ResourceQuiz} {
		for _, role := range models.ValidRoles {
			if !Can(role, ActionRead, resource) {
				t.Errorf("%s should read %s", role, resource)
			}
		}
		if Can(models.RoleStudent, ActionCreate, resource) {
			t.Errorf("student must not create %s", resource)
		}
		if !Can(models.RoleTeacher, ActionCreate, resource) {
			t.Errorf("teacher should create %s", resource)
		}
	}
}
