package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type TaskHandler struct {
	BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		taskService: taskService,
	}
}

// CreateTask assigns a new task
// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body services.CreateTaskRequest true "Task data"
// @Success 201 {object} services.TaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask retrieves a task by ID
// @Summary Get task
// @Tags tasks
// @Produce json
// @Param id path uint true "Task ID"
// @Success 200 {object} services.TaskResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus moves a task through its lifecycle
// @Summary Update task status
// @Description Allowed transitions: pending to in_progress, completed or cancelled; in_progress to completed or cancelled. Completed and cancelled are terminal.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path uint true "Task ID"
// @Param status body validator.TaskStatusRequest true "New status"
// @Success 200 {object} services.TaskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tasks/{id}/status [put]
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), id, req.Status, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// @Summary Delete task
// @Tags tasks
// @Param id path uint true "Task ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting task", "task_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTasks lists tasks with filters
// @Summary List tasks
// @Description Staff without broad read rights only see tasks assigned to them.
// @Tags tasks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Status filter"
// @Param assigned_to query uint false "Assignee filter"
// @Param created_by query uint false "Creator filter"
// @Param sort_by query string false "Sort field" Enums(created_at, due_date, title)
// @Param sort_order query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} services.TaskListResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.TaskFilters{
		AssignedTo: h.parseUintQueryPtr(c, "assigned_to"),
		CreatedBy:  h.parseUintQueryPtr(c, "created_by"),
		Limit:      limit,
		Offset:     offset,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		filters.Status = &s
	}

	tasks, err := h.taskService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetMyTasks lists the calling user's assigned tasks
// @Summary My tasks
// @Tags tasks
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {array} services.TaskResponse
// @Router /tasks/my [get]
func (h *TaskHandler) GetMyTasks(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.TaskFilters{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		filters.Status = &s
	}

	tasks, err := h.taskService.GetMyTasks(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetTaskStats aggregates an assignee's tasks by status
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Param id path uint true "Assignee ID"
// @Success 200 {object} repositories.TaskStats
// @Failure 403 {object} ErrorResponse
// @Router /users/{id}/tasks/stats [get]
func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	assigneeID := h.parseIDParam(c, "id")
	if assigneeID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.taskService.GetStats(c.Request.Context(), assigneeID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
