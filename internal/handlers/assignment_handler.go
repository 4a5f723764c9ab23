package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService, logger utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
	}
}

// CreateAssignment creates homework for a chapter
// @Summary Create assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body services.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} services.AssignmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment retrieves an assignment by ID
// @Summary Get assignment
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} services.AssignmentResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignment updates an assignment
// @Summary Update assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param assignment body services.UpdateAssignmentRequest true "Update data"
// @Success 200 {object} services.AssignmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment deletes an assignment
// @Summary Delete assignment
// @Tags assignments
// @Param id path uint true "Assignment ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting assignment", "assignment_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAssignments lists assignments with filters
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param subject_id query uint false "Subject filter"
// @Param chapter_id query uint false "Chapter filter"
// @Param created_by query uint false "Creator filter"
// @Success 200 {object} services.AssignmentListResponse
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.AssignmentFilters{
		SubjectID: h.parseUintQueryPtr(c, "subject_id"),
		ChapterID: h.parseUintQueryPtr(c, "chapter_id"),
		CreatedBy: h.parseUintQueryPtr(c, "created_by"),
		Limit:     limit,
		Offset:    offset,
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// CreateClass creates a class
// @Summary Create class
// @Tags classes
// @Accept json
// @Produce json
// @Param class body services.CreateClassRequest true "Class data"
// @Success 201 {object} models.Class
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /classes [post]
func (h *AssignmentHandler) CreateClass(c *gin.Context) {
	var req services.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	class, err := h.assignmentService.CreateClass(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// ListClasses lists classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {array} models.Class
// @Router /classes [get]
func (h *AssignmentHandler) ListClasses(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	classes, total, err := h.assignmentService.ListClasses(c.Request.Context(), limit, offset, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"classes": classes,
		"total":   total,
	})
}

// AssignToClass links an assignment to a class
// @Summary Assign to class
// @Tags classes
// @Accept json
// @Produce json
// @Param link body services.AssignClassRequest true "Assignment link data"
// @Success 201 {object} models.ClassAssignment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /class-assignments [post]
func (h *AssignmentHandler) AssignToClass(c *gin.Context) {
	var req services.AssignClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	link, err := h.assignmentService.AssignToClass(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

// UnassignFromClass removes an assignment link from a class
// @Summary Unassign from class
// @Tags classes
// @Param id path uint true "Link ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /class-assignments/{id} [delete]
func (h *AssignmentHandler) UnassignFromClass(c *gin.Context) {
	linkID := h.parseIDParam(c, "id")
	if linkID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.assignmentService.UnassignFromClass(c.Request.Context(), linkID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetClassAssignments lists the assignments linked to a class
// @Summary Class assignments
// @Tags classes
// @Produce json
// @Param class_id path uint true "Class ID"
// @Success 200 {array} models.ClassAssignment
// @Failure 404 {object} ErrorResponse
// @Router /classes/{class_id}/assignments [get]
func (h *AssignmentHandler) GetClassAssignments(c *gin.Context) {
	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	links, err := h.assignmentService.GetClassAssignments(c.Request.Context(), classID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, links)
}
