package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/models"
	"github.com/SAP-F-2025/school-service/internal/repositories"
	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
)

type ContentHandler struct {
	BaseHandler
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		contentService: contentService,
	}
}

// ===== SUBJECTS =====

// CreateSubject creates a new subject
// @Summary Create subject
// @Tags content
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} services.SubjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /subjects [post]
func (h *ContentHandler) CreateSubject(c *gin.Context) {
	var req services.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	subject, err := h.contentService.CreateSubject(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// GetSubject retrieves a subject by ID
// @Summary Get subject
// @Tags content
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} services.SubjectResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id} [get]
func (h *ContentHandler) GetSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	subject, err := h.contentService.GetSubject(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// GetSubjectWithChapters retrieves a subject with its ordered chapters
// @Summary Get subject with chapters
// @Tags content
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {object} services.SubjectResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id}/details [get]
func (h *ContentHandler) GetSubjectWithChapters(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	subject, err := h.contentService.GetSubjectWithChapters(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// UpdateSubject updates a subject
// @Summary Update subject
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Subject ID"
// @Param subject body services.UpdateSubjectRequest true "Update data"
// @Success 200 {object} services.SubjectResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id} [put]
func (h *ContentHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	subject, err := h.contentService.UpdateSubject(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

// DeleteSubject deletes a subject and its chapters
// @Summary Delete subject
// @Tags content
// @Param id path uint true "Subject ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id} [delete]
func (h *ContentHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting subject", "subject_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteSubject(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubjects lists subjects with optional grade filter
// @Summary List subjects
// @Tags content
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param grade_level query string false "Grade level filter"
// @Success 200 {object} services.SubjectListResponse
// @Router /subjects [get]
func (h *ContentHandler) ListSubjects(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.SubjectFilters{Limit: limit, Offset: offset}
	if grade := c.Query("grade_level"); grade != "" {
		filters.GradeLevel = &grade
	}

	subjects, err := h.contentService.ListSubjects(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// ===== CHAPTERS =====

// CreateChapter creates a chapter within a subject
// @Summary Create chapter
// @Tags content
// @Accept json
// @Produce json
// @Param chapter body services.CreateChapterRequest true "Chapter data"
// @Success 201 {object} models.Chapter
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters [post]
func (h *ContentHandler) CreateChapter(c *gin.Context) {
	var req services.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	chapter, err := h.contentService.CreateChapter(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chapter)
}

// GetChapter retrieves a chapter by ID
// @Summary Get chapter
// @Tags content
// @Produce json
// @Param id path uint true "Chapter ID"
// @Success 200 {object} models.Chapter
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id} [get]
func (h *ContentHandler) GetChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	chapter, err := h.contentService.GetChapter(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

// UpdateChapter updates a chapter
// @Summary Update chapter
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Chapter ID"
// @Param chapter body services.UpdateChapterRequest true "Update data"
// @Success 200 {object} models.Chapter
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id} [put]
func (h *ContentHandler) UpdateChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	chapter, err := h.contentService.UpdateChapter(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

// DeleteChapter deletes a chapter
// @Summary Delete chapter
// @Tags content
// @Param id path uint true "Chapter ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id} [delete]
func (h *ContentHandler) DeleteChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting chapter", "chapter_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteChapter(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetChaptersBySubject lists a subject's chapters in display order
// @Summary List chapters of a subject
// @Tags content
// @Produce json
// @Param id path uint true "Subject ID"
// @Success 200 {array} models.Chapter
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id}/chapters [get]
func (h *ContentHandler) GetChaptersBySubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	chapters, err := h.contentService.GetChaptersBySubject(c.Request.Context(), subjectID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapters)
}

// ReorderChapters reorders the chapters of a subject
// @Summary Reorder chapters
// @Description Applies a new display order atomically to a subject's chapters
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Subject ID"
// @Param orders body services.ReorderChaptersRequest true "Chapter order data"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects/{id}/chapters/reorder [put]
func (h *ContentHandler) ReorderChapters(c *gin.Context) {
	subjectID := h.parseIDParam(c, "id")
	if subjectID == 0 {
		return
	}

	h.LogRequest(c, "Reordering chapters", "subject_id", subjectID)

	var req services.ReorderChaptersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.ReorderChapters(c.Request.Context(), subjectID, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Chapters reordered successfully"})
}

// ===== LESSONS =====

// CreateLesson creates a lesson within a chapter
// @Summary Create lesson
// @Tags content
// @Accept json
// @Produce json
// @Param lesson body services.CreateLessonRequest true "Lesson data"
// @Success 201 {object} models.Lesson
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons [post]
func (h *ContentHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	lesson, err := h.contentService.CreateLesson(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// GetLesson retrieves a lesson by ID
// @Summary Get lesson
// @Tags content
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} models.Lesson
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [get]
func (h *ContentHandler) GetLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	lesson, err := h.contentService.GetLesson(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// UpdateLesson updates a lesson
// @Summary Update lesson
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Lesson ID"
// @Param lesson body services.UpdateLessonRequest true "Update data"
// @Success 200 {object} models.Lesson
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [put]
func (h *ContentHandler) UpdateLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	lesson, err := h.contentService.UpdateLesson(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// DeleteLesson deletes a lesson
// @Summary Delete lesson
// @Tags content
// @Param id path uint true "Lesson ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [delete]
func (h *ContentHandler) DeleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteLesson(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetLessonsByChapter lists the lessons of a chapter
// @Summary List lessons of a chapter
// @Tags content
// @Produce json
// @Param id path uint true "Chapter ID"
// @Success 200 {array} models.Lesson
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/lessons [get]
func (h *ContentHandler) GetLessonsByChapter(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	lessons, err := h.contentService.GetLessonsByChapter(c.Request.Context(), chapterID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lessons)
}

// ===== RESOURCES =====

// CreateResource creates a learning resource
// @Summary Create resource
// @Tags content
// @Accept json
// @Produce json
// @Param resource body services.CreateResourceRequest true "Resource data"
// @Success 201 {object} models.Resource
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /resources [post]
func (h *ContentHandler) CreateResource(c *gin.Context) {
	var req services.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resource, err := h.contentService.CreateResource(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// GetResource retrieves a resource by ID
// @Summary Get resource
// @Tags content
// @Produce json
// @Param id path uint true "Resource ID"
// @Success 200 {object} models.Resource
// @Failure 404 {object} ErrorResponse
// @Router /resources/{id} [get]
func (h *ContentHandler) GetResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resource, err := h.contentService.GetResource(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// UpdateResource updates a resource
// @Summary Update resource
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Resource ID"
// @Param resource body services.UpdateResourceRequest true "Update data"
// @Success 200 {object} models.Resource
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /resources/{id} [put]
func (h *ContentHandler) UpdateResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resource, err := h.contentService.UpdateResource(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// DeleteResource deletes a resource
// @Summary Delete resource
// @Tags content
// @Param id path uint true "Resource ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /resources/{id} [delete]
func (h *ContentHandler) DeleteResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteResource(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListResources lists resources with filters
// @Summary List resources
// @Tags content
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param chapter_id query uint false "Chapter filter"
// @Param type query string false "Resource type filter"
// @Success 200 {array} models.Resource
// @Router /resources [get]
func (h *ContentHandler) ListResources(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.pagination(c)
	filters := repositories.ResourceFilters{
		ChapterID: h.parseUintQueryPtr(c, "chapter_id"),
		Limit:     limit,
		Offset:    offset,
	}
	if resourceType := c.Query("type"); resourceType != "" {
		rt := models.ResourceType(resourceType)
		filters.ResourceType = &rt
	}

	resources, total, err := h.contentService.ListResources(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources": resources,
		"total":     total,
	})
}
