package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jimdaga/first-step/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of a user. The password hash is never
// serialized.
type UserResponse struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	OnboardingStep int       `json:"onboardingStep"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUserResponse builds the public view of user.
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		OnboardingStep: user.OnboardingStep,
		CreatedAt:      user.CreatedAt,
	}
}

// RegisterHandler handles POST /api/auth/register.
func RegisterHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
				return
			}
			slog.Error("Failed to decode registration request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		user, err := svc.Register(c.Request.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
			return
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists."})
			return
		case errors.Is(err, ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password does not meet complexity requirements."})
			return
		case err != nil:
			slog.Error("Registration failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		slog.Info("User registered", "user_id", user.ID)
		c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": NewUserResponse(user)})
	}
}

// LoginHandler handles POST /api/auth/login.
func LoginHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			slog.Error("Failed to decode login request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if err != nil {
			slog.Error("Login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		if err := StartSession(c, user); err != nil {
			slog.Error("Session save error", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// LogoutHandler handles POST /api/auth/logout.
func LogoutHandler(c *gin.Context) {
	if err := EndSession(c); err != nil {
		slog.Error("Session clear error", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
