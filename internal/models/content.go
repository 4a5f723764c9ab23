package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResourceType string

const (
	ResourceText  ResourceType = "text"
	ResourceVideo ResourceType = "video"
	ResourceAudio ResourceType = "audio"
	ResourcePDF   ResourceType = "pdf"
	ResourceLink  ResourceType = "link"
)

type Subject struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	GradeLevel  string  `json:"grade_level" gorm:"not null;size:20;index" validate:"required"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Chapters    []Chapter    `json:"chapters,omitempty" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
	Assignments []Assignment `json:"assignments,omitempty" gorm:"foreignKey:SubjectID"`
}

type Chapter struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	SubjectID   uint    `json:"subject_id" gorm:"not null;index" validate:"required"`
	Order       int     `json:"order" gorm:"not null;column:display_order" validate:"required,min=1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Subject   *Subject   `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Lessons   []Lesson   `json:"lessons,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
	Resources []Resource `json:"resources,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
}

type Lesson struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Title     string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Content   string `json:"content" gorm:"type:text;not null" validate:"required"`
	Order     int    `json:"order" gorm:"not null;column:display_order" validate:"required,min=1"`
	ChapterID uint   `json:"chapter_id" gorm:"not null;index" validate:"required"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
	Quizzes []Quiz   `json:"quizzes,omitempty" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
}

type Resource struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Title        string       `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description  *string      `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	ChapterID    uint         `json:"chapter_id" gorm:"not null;index" validate:"required"`
	ResourceType ResourceType `json:"resource_type" gorm:"not null;size:20;index" validate:"required,oneof=text video audio pdf link"`
	Content      *string      `json:"content" gorm:"type:text"` // inline text content
	FileURL      *string      `json:"file_url" gorm:"size:500"` // uploaded files or external links

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
}

type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	LessonID    uint    `json:"lesson_id" gorm:"not null;index" validate:"required"`
	CreatedBy   uint    `json:"created_by" gorm:"not null;index"`
	IsPublished bool    `json:"is_published" gorm:"default:false"`
	TimeLimit   *int    `json:"time_limit" validate:"omitempty,min=1,max=300"` // minutes

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Lesson    *Lesson        `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Creator   *User          `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Results   []QuizResult   `json:"results,omitempty" gorm:"foreignKey:QuizID"`
}

type QuizQuestion struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;index" validate:"required"`
	QuestionText  string         `json:"question_text" gorm:"type:text;not null" validate:"required,max=2000"`
	CorrectAnswer string         `json:"correct_answer" gorm:"not null;size:500" validate:"required"`
	Options       datatypes.JSON `json:"options" gorm:"not null" validate:"required"`
	Points        int            `json:"points" gorm:"default:1" validate:"min=1,max=100"`
	Order         int            `json:"order" gorm:"not null;column:display_order" validate:"required,min=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuizResult struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	QuizID      uint      `json:"quiz_id" gorm:"not null;index" validate:"required"`
	StudentID   uint      `json:"student_id" gorm:"not null;index" validate:"required"`
	Score       float64   `json:"score" gorm:"not null" validate:"min=0"`
	MaxScore    float64   `json:"max_score" gorm:"not null" validate:"min=0"`
	CompletedAt time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Student *User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Subject) TableName() string {
	return "subjects"
}

func (Chapter) TableName() string {
	return "chapters"
}

func (Lesson) TableName() string {
	return "lessons"
}

func (Resource) TableName() string {
	return "resources"
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
