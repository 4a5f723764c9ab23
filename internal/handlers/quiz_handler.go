package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// CreateQuiz creates a new quiz
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz retrieves a quiz by ID
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz updates a quiz
// @Summary Update quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param quiz body services.UpdateQuizRequest true "Update data"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz deletes a quiz with its questions and results
// @Summary Delete quiz
// @Tags quizzes
// @Param id path uint true "Quiz ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetQuizzesByLesson lists the quizzes of a lesson
// @Summary List quizzes of a lesson
// @Tags quizzes
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {array} models.Quiz
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id}/quizzes [get]
func (h *QuizHandler) GetQuizzesByLesson(c *gin.Context) {
	lessonID := h.parseIDParam(c, "id")
	if lessonID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	quizzes, err := h.quizService.GetByLesson(c.Request.Context(), lessonID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// AddQuestion appends a question to a quiz
// @Summary Add quiz question
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param question body services.QuizQuestionRequest true "Question data"
// @Success 201 {object} models.QuizQuestion
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/questions [post]
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.QuizQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), quizID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// RemoveQuestion removes a question from a quiz
// @Summary Remove quiz question
// @Tags quizzes
// @Param id path uint true "Quiz ID"
// @Param question_id path uint true "Question ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/questions/{question_id} [delete]
func (h *QuizHandler) RemoveQuestion(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.quizService.RemoveQuestion(c.Request.Context(), quizID, questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitResult records a quiz attempt for the calling student
// @Summary Submit quiz result
// @Tags quizzes
// @Accept json
// @Produce json
// @Param result body services.SubmitQuizResultRequest true "Result data"
// @Success 201 {object} models.QuizResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quiz-results [post]
func (h *QuizHandler) SubmitResult(c *gin.Context) {
	var req services.SubmitQuizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	result, err := h.quizService.SubmitResult(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResultsByQuiz lists all results of a quiz
// @Summary Quiz results
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {array} models.QuizResult
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{id}/results [get]
func (h *QuizHandler) GetResultsByQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	results, err := h.quizService.GetResultsByQuiz(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetResultsByStudent lists a student's quiz results
// @Summary Student quiz results
// @Tags quizzes
// @Produce json
// @Param student_id path uint true "Student ID"
// @Success 200 {array} models.QuizResult
// @Failure 403 {object} ErrorResponse
// @Router /students/{student_id}/quiz-results [get]
func (h *QuizHandler) GetResultsByStudent(c *gin.Context) {
	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	results, err := h.quizService.GetResultsByStudent(c.Request.Context(), studentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
