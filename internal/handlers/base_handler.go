package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the shared plumbing every handler embeds: logging,
// parameter parsing and the service error mapping.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if requestLogger := utils.FromContext(c.Request.Context()); requestLogger != nil {
		requestLogger.Info(msg, args...)
		return
	}
	h.logger.Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	if requestLogger := utils.FromContext(c.Request.Context()); requestLogger != nil {
		requestLogger.Error(msg, args...)
		return
	}
	h.logger.Error(msg, args...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQueryPtr(c *gin.Context, param string) *uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return nil
	}
	converted := uint(value)
	return &converted
}

// pagination converts page/size query parameters into limit/offset.
func (h *BaseHandler) pagination(c *gin.Context) (limit, offset int) {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// handleServiceError maps the service error taxonomy onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var transitionError *services.StateTransitionError
	if errors.As(err, &transitionError) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid status transition",
			Details: map[string]interface{}{
				"from": transitionError.From,
				"to":   transitionError.To,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Subject not found"})
	case errors.Is(err, services.ErrChapterNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Chapter not found"})
	case errors.Is(err, services.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Lesson not found"})
	case errors.Is(err, services.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Resource not found"})
	case errors.Is(err, services.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Quiz not found"})
	case errors.Is(err, services.ErrProgressNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Progress record not found"})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Task not found"})
	case errors.Is(err, services.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Assignment not found"})
	case errors.Is(err, services.ErrClassNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Class not found"})
	case errors.Is(err, services.ErrQuizNotPublished):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Quiz is not published"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Email is already in use"})
	case errors.Is(err, services.ErrProfileMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Profile does not match role"})
	case errors.Is(err, services.ErrInvalidCredential):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, services.ErrUserInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Account is deactivated"})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden - insufficient permissions"})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
