package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
	"github.com/wheelhaus/bikeshop-service/internal/core/services"
)

type AuthHandler struct {
	userService *services.UserService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Mara Lindt"`
	Email    string `json:"email" binding:"required,email" example:"mara@example.com"`
	Phone    string `json:"phone,omitempty" example:"+49 151 1234567"`
	Password string `json:"password" binding:"required,min=8" example:"correct-horse"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"mara@example.com"`
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"mara@example.com"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func NewAuthHandler(userService *services.UserService, logger ports.LoggerPort, metrics ports.MetricsPort) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Register
// @Description Create an account. New accounts always get the user role.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} UserResponse "User created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 409 {object} errorResponse "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user := &domain.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	created, err := h.userService.Register(c.Request.Context(), user, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			newErrorResponse(c, http.StatusConflict, "Email already registered")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(created))
}

// @Summary Login
// @Description Exchange credentials for an access and refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse "Tokens issued"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Bad credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user, access, refresh, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		newErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         toUserResponse(user),
	})
}

// @Summary Logout
// @Description Revoke the presented access token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse "Logged out"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.userService.Logout(c.Request.Context(), payload); err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Logout failed")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Logged out successfully"})
}

// @Summary Request password reset
// @Description Always answers 200 so the endpoint cannot be used to probe for accounts
// @Tags auth
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Account email"
// @Success 200 {object} successResponse "Reset requested"
// @Failure 400 {object} errorResponse "Invalid request"
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if _, err := h.userService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("Password reset request failed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Password reset failed")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "If the account exists, a reset link has been sent"})
}
