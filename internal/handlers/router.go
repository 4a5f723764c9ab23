package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/config"
	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	userHandler       *UserHandler
	contentHandler    *ContentHandler
	quizHandler       *QuizHandler
	progressHandler   *ProgressHandler
	taskHandler       *TaskHandler
	assignmentHandler *AssignmentHandler
	authMiddleware    *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	jwtConfig config.JWTConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewJWTAuthMiddleware(jwtConfig, userRepo)

	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.User(), authMiddleware, validator, logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		contentHandler:    NewContentHandler(serviceManager.Content(), logger),
		quizHandler:       NewQuizHandler(serviceManager.Quiz(), logger),
		progressHandler:   NewProgressHandler(serviceManager.Progress(), logger),
		taskHandler:       NewTaskHandler(serviceManager.Task(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes. Route middleware gates the obvious
// role boundaries; fine-grained ownership checks live in the services.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public routes
	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", hm.authHandler.Login)
	}

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware()) // Apply authentication to all API routes
	{
		v1.GET("/auth/me", hm.authHandler.Me)

		// User routes - administration is Principal only (Developer passes every gate)
		users := v1.Group("/users")
		{
			users.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.userHandler.CreateUser)
			users.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.userHandler.ListUsers)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.userHandler.DeleteUser)

			// Self-service reads and updates - ownership enforced by the service
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)

			// Task statistics per assignee
			users.GET("/:id/tasks/stats", hm.taskHandler.GetTaskStats)
		}

		// Subject routes
		subjects := v1.Group("/subjects")
		{
			subjects.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.CreateSubject)
			subjects.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.UpdateSubject)
			subjects.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.DeleteSubject)
			subjects.PUT("/:id/chapters/reorder", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.ReorderChapters)

			// View subjects - All authenticated users
			subjects.GET("", hm.contentHandler.ListSubjects)
			subjects.GET("/:id", hm.contentHandler.GetSubject)
			subjects.GET("/:id/details", hm.contentHandler.GetSubjectWithChapters)
			subjects.GET("/:id/chapters", hm.contentHandler.GetChaptersBySubject)
		}

		// Chapter routes
		chapters := v1.Group("/chapters")
		{
			chapters.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.CreateChapter)
			chapters.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.UpdateChapter)
			chapters.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.DeleteChapter)

			chapters.GET("/:id", hm.contentHandler.GetChapter)
			chapters.GET("/:id/lessons", hm.contentHandler.GetLessonsByChapter)

			// Chapter-wide progress - staff only
			chapters.GET("/:id/progress", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.progressHandler.GetChapterProgress)
			chapters.GET("/:id/progress/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.progressHandler.ExportChapterReport)
		}

		// Lesson routes
		lessons := v1.Group("/lessons")
		{
			lessons.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.CreateLesson)
			lessons.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.UpdateLesson)
			lessons.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.DeleteLesson)

			lessons.GET("/:id", hm.contentHandler.GetLesson)
			lessons.GET("/:id/quizzes", hm.quizHandler.GetQuizzesByLesson)
		}

		// Resource routes
		resources := v1.Group("/resources")
		{
			resources.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.CreateResource)
			resources.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.UpdateResource)
			resources.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.contentHandler.DeleteResource)

			resources.GET("", hm.contentHandler.ListResources)
			resources.GET("/:id", hm.contentHandler.GetResource)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/questions", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.quizHandler.AddQuestion)
			quizzes.DELETE("/:id/questions/:question_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.quizHandler.RemoveQuestion)
			quizzes.GET("/:id/results", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.quizHandler.GetResultsByQuiz)

			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
		}

		// Quiz result submission - Students only
		v1.POST("/quiz-results", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.quizHandler.SubmitResult)

		// Progress routes
		progress := v1.Group("/progress")
		{
			// Only students record progress, and only their own
			progress.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.progressHandler.UpdateProgress)
		}

		// Student-scoped routes - ownership enforced by the services
		students := v1.Group("/students")
		{
			students.GET("/:student_id/progress", hm.progressHandler.GetStudentProgress)
			students.GET("/:student_id/progress/stats", hm.progressHandler.GetProgressStats)
			students.GET("/:student_id/quiz-results", hm.quizHandler.GetResultsByStudent)
		}

		// Task routes
		tasks := v1.Group("/tasks")
		{
			tasks.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.taskHandler.CreateTask)
			tasks.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.taskHandler.DeleteTask)

			tasks.GET("", hm.taskHandler.ListTasks)
			tasks.GET("/my", hm.taskHandler.GetMyTasks)
			tasks.GET("/:id", hm.taskHandler.GetTask)
			tasks.PUT("/:id/status", hm.taskHandler.UpdateTaskStatus)
		}

		// Assignment routes
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.assignmentHandler.CreateAssignment)
			assignments.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.assignmentHandler.UpdateAssignment)
			assignments.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RolePrincipal), hm.assignmentHandler.DeleteAssignment)

			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
		}

		// Class routes - Principal administers classes and their assignment links
		classes := v1.Group("/classes")
		{
			classes.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.assignmentHandler.CreateClass)
			classes.GET("", hm.assignmentHandler.ListClasses)
			classes.GET("/:class_id/assignments", hm.assignmentHandler.GetClassAssignments)
		}

		classAssignments := v1.Group("/class-assignments")
		{
			classAssignments.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.assignmentHandler.AssignToClass)
			classAssignments.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RolePrincipal), hm.assignmentHandler.UnassignFromClass)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "school-service",
		})
	})
}
