package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleTeacher   UserRole = "teacher"
	RolePrincipal UserRole = "principal"
	RoleDeveloper UserRole = "developer"
)

// ValidRoles lists every role the system recognizes. Anything else is
// treated as "no permissions" by the authorization policy.
var ValidRoles = []UserRole{RoleStudent, RoleTeacher, RolePrincipal, RoleDeveloper}

func (r UserRole) IsValid() bool {
	for _, role := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID             uint     `json:"id" gorm:"primaryKey"`
	Email          string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	HashedPassword string   `json:"-" gorm:"not null;size:255"`
	FullName       string   `json:"full_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Role           UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,oneof=student teacher principal developer"`

	// Status
	IsActive    bool `json:"is_active" gorm:"default:true"`
	IsSuperuser bool `json:"is_superuser" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Role-specific profile (at most one, matching Role)
	StudentProfile   *StudentProfile   `json:"student_profile,omitempty" gorm:"foreignKey:UserID"`
	TeacherProfile   *TeacherProfile   `json:"teacher_profile,omitempty" gorm:"foreignKey:UserID"`
	PrincipalProfile *PrincipalProfile `json:"principal_profile,omitempty" gorm:"foreignKey:UserID"`
	DeveloperProfile *DeveloperProfile `json:"developer_profile,omitempty" gorm:"foreignKey:UserID"`
}

type StudentProfile struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	UserID     uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Grade      string  `json:"grade" gorm:"not null;size:20"`
	Section    *string `json:"section" gorm:"size:20"`
	RollNumber *string `json:"roll_number" gorm:"uniqueIndex;size:50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TeacherProfile struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	UserID          uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Department      *string `json:"department" gorm:"size:100"`
	Qualification   *string `json:"qualification" gorm:"size:200"`
	ExperienceYears *int    `json:"experience_years"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PrincipalProfile struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	UserID          uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Qualification   *string `json:"qualification" gorm:"size:200"`
	ExperienceYears *int    `json:"experience_years"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DeveloperProfile struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	UserID         uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Specialization *string `json:"specialization" gorm:"size:100"`
	GithubURL      *string `json:"github_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

func (TeacherProfile) TableName() string {
	return "teacher_profiles"
}

func (PrincipalProfile) TableName() string {
	return "principal_profiles"
}

func (DeveloperProfile) TableName() string {
	return "developer_profiles"
}
