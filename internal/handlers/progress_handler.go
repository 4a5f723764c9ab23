package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// UpdateProgress creates or overwrites a progress record
// @Summary Record study progress
// @Description Upserts the (student, chapter) progress record. Completion does not regress once reached.
// @Tags progress
// @Accept json
// @Produce json
// @Param progress body services.UpdateProgressRequest true "Progress data"
// @Success 200 {object} services.ProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /progress [post]
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	var req services.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	progress, err := h.progressService.UpdateProgress(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetStudentProgress lists a student's progress records
// @Summary Student progress
// @Tags progress
// @Produce json
// @Param student_id path uint true "Student ID"
// @Param status query string false "Progress status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {array} models.StudentProgress
// @Failure 403 {object} ErrorResponse
// @Router /students/{student_id}/progress [get]
func (h *ProgressHandler) GetStudentProgress(c *gin.Context) {
	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.ProgressFilters{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		s := models.ProgressStatus(status)
		filters.Status = &s
	}

	records, err := h.progressService.GetStudentProgress(c.Request.Context(), studentID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetChapterProgress lists every student's progress within a chapter
// @Summary Chapter progress
// @Tags progress
// @Produce json
// @Param id path uint true "Chapter ID"
// @Param status query string false "Progress status filter"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {array} models.StudentProgress
// @Failure 403 {object} ErrorResponse
// @Router /chapters/{id}/progress [get]
func (h *ProgressHandler) GetChapterProgress(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.ProgressFilters{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		s := models.ProgressStatus(status)
		filters.Status = &s
	}

	records, err := h.progressService.GetChapterProgress(c.Request.Context(), chapterID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetProgressStats aggregates a student's progress
// @Summary Student progress statistics
// @Tags progress
// @Produce json
// @Param student_id path uint true "Student ID"
// @Success 200 {object} repositories.ProgressStats
// @Failure 403 {object} ErrorResponse
// @Router /students/{student_id}/progress/stats [get]
func (h *ProgressHandler) GetProgressStats(c *gin.Context) {
	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.progressService.GetStats(c.Request.Context(), studentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportChapterReport streams a chapter's progress as an Excel workbook
// @Summary Export chapter progress report
// @Tags progress
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Chapter ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/progress/export [get]
func (h *ProgressHandler) ExportChapterReport(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	h.LogRequest(c, "Exporting chapter progress report", "chapter_id", chapterID)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	file, err := h.progressService.ExportChapterReport(c.Request.Context(), chapterID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("chapter_%d_progress.xlsx", chapterID)
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := file.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream progress report", "chapter_id", chapterID)
	}
}
