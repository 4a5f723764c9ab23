package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-service/internal/services"
	"github.com/SAP-F-2025/school-service/internal/utils"
	"github.com/SAP-F-2025/school-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	userService services.UserService
	auth        *JWTAuthMiddleware
	validator   *validator.Validator
}

func NewAuthHandler(
	userService services.UserService,
	auth *JWTAuthMiddleware,
	validator *validator.Validator,
	logger utils.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		auth:        auth,
		validator:   validator,
	}
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Login authenticates a user and returns an access token
// @Summary Login
// @Description Verifies credentials and returns a signed access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		h.LogError(c, err, "Failed to sign token", "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

// Me returns the authenticated user's account
// @Summary Current user
// @Description Returns the account behind the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
