// Package authz centralizes every role-based permission decision.
// Handlers and services never compare roles directly; they ask the policy.
package authz

import (
	"github.com/SAP-F-2025/school-service/internal/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAssign Action = "assign"
	ActionCancel Action = "cancel"
)

type Resource string

const (
	ResourceUser            Resource = "user"
	ResourceProfile         Resource = "profile"
	ResourceSubject         Resource = "subject"
	ResourceChapter         Resource = "chapter"
	ResourceLesson          Resource = "lesson"
	ResourceContent         Resource = "resource"
	ResourceQuiz            Resource = "quiz"
	ResourceAssignment      Resource = "assignment"
	ResourceTask            Resource = "task"
	ResourceProgress        Resource = "progress"
	ResourceClassAssignment Resource = "class_assignment"
)

// Scope is how far a granted permission reaches.
type Scope int

const (
	ScopeNone Scope = iota // denied
	ScopeOwn               // only resources owned by / assigned to the caller
	ScopeAny               // any resource of the class
)

const anyAction = Action("*")

type rule struct {
	role     models.UserRole
	action   Action
	resource Resource
	scope    Scope
}

// The rule table is evaluated top to bottom, first match wins. No match means
// deny, which also covers unknown roles without ever raising an error.
var rules = []rule{
	// Principal and developer administer users, class assignments and task removal.
	{models.RolePrincipal, anyAction, ResourceUser, ScopeAny},
	{models.RoleDeveloper, anyAction, ResourceUser, ScopeAny},
	{models.RolePrincipal, anyAction, ResourceClassAssignment, ScopeAny},
	{models.RoleDeveloper, anyAction, ResourceClassAssignment, ScopeAny},
	{models.RolePrincipal, ActionDelete, ResourceTask, ScopeAny},
	{models.RoleDeveloper, ActionDelete, ResourceTask, ScopeAny},

	// Principal oversees tasks, assignments and progress school-wide.
	{models.RolePrincipal, ActionRead, ResourceTask, ScopeAny},
	{models.RolePrincipal, ActionCreate, ResourceTask, ScopeAny},
	{models.RolePrincipal, ActionAssign, ResourceTask, ScopeAny},
	{models.RolePrincipal, ActionCancel, ResourceTask, ScopeAny},
	{models.RolePrincipal, ActionRead, ResourceAssignment, ScopeAny},
	{models.RolePrincipal, ActionRead, ResourceProgress, ScopeAny},

	// Teachers work their own tasks and the assignments/progress of their students.
	{models.RoleTeacher, ActionUpdate, ResourceTask, ScopeOwn},
	{models.RoleTeacher, ActionRead, ResourceTask, ScopeOwn},
	{models.RoleTeacher, ActionCreate, ResourceAssignment, ScopeAny},
	{models.RoleTeacher, ActionRead, ResourceAssignment, ScopeAny},
	{models.RoleTeacher, ActionRead, ResourceProgress, ScopeAny},

	// Students record their own progress and read what concerns them.
	{models.RoleStudent, ActionCreate, ResourceProgress, ScopeOwn},
	{models.RoleStudent, ActionUpdate, ResourceProgress, ScopeOwn},
	{models.RoleStudent, ActionRead, ResourceProgress, ScopeOwn},
	{models.RoleStudent, ActionRead, ResourceAssignment, ScopeOwn},
	{models.RoleStudent, ActionRead, ResourceTask, ScopeOwn},
}

// contentResources are readable by every authenticated role; writes are
// reserved for staff (teacher, principal, developer).
var contentResources = map[Resource]bool{
	ResourceSubject: true,
	ResourceChapter: true,
	ResourceLesson:  true,
	ResourceContent: true,
	ResourceQuiz:    true,
}

// ScopeFor resolves the reach of (role, action, resource). It is pure, total
// and deterministic: any input yields a scope, never an error.
func ScopeFor(role models.UserRole, action Action, resource Resource) Scope {
	if !role.IsValid() {
		return ScopeNone
	}

	for _, r := range rules {
		if r.role != role {
			continue
		}
		if r.action != anyAction && r.action != action {
			continue
		}
		if r.resource != resource {
			continue
		}
		return r.scope
	}

	if contentResources[resource] {
		if action == ActionRead {
			return ScopeAny
		}
		if role == models.RoleTeacher || role == models.RolePrincipal || role == models.RoleDeveloper {
			return ScopeAny
		}
		return ScopeNone
	}

	// Every role manages its own profile; role and superuser fields are
	// stripped by the service layer, not here.
	if resource == ResourceProfile && (action == ActionRead || action == ActionUpdate) {
		return ScopeOwn
	}

	return ScopeNone
}

// Can reports whether the role may perform the action on any resource of the class.
func Can(role models.UserRole, action Action, resource Resource) bool {
	return ScopeFor(role, action, resource) == ScopeAny
}

// CanOwn reports whether the role may perform the action at least on resources
// it owns. Callers pair it with an ownership check against the caller id.
func CanOwn(role models.UserRole, action Action, resource Resource) bool {
	return ScopeFor(role, action, resource) >= ScopeOwn
}
