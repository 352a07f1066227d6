package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"
)

const googleProvider = "google"

// HandleGoogleLogin starts the Google OAuth flow.
func HandleGoogleLogin(c *gin.Context) {
	withProvider(c)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleGoogleCallback completes the OAuth flow, links the Google identity
// to a user and opens a session.
func HandleGoogleCallback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		withProvider(c)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			slog.Error("OAuth error", "error", err)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		user, err := LinkOAuthUser(c.Request.Context(), db, gothUser)
		if err != nil {
			slog.Error("OAuth user upsert failed", "error", err, "email", gothUser.Email)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		if err := StartSession(c, user); err != nil {
			slog.Error("Session save error", "error", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		slog.Info("User authenticated", "user_id", user.ID, "provider", gothUser.Provider)
		c.Redirect(http.StatusFound, "/onboarding/job-seeker/profile")
	}
}

// LinkOAuthUser upserts the user matching the OAuth email and the identity
// holding its tokens. New users start at the registered onboarding step.
func LinkOAuthUser(ctx context.Context, db *gorm.DB, gothUser goth.User) (*models.User, error) {
	if gothUser.Email == "" {
		return nil, errors.New("oauth user has no email")
	}

	var user models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		result := tx.Where("email = ?", gothUser.Email).First(&user)
		switch {
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			user = models.User{
				Email:          gothUser.Email,
				Name:           gothUser.Name,
				OnboardingStep: RegisteredStep,
				LastLoginAt:    &now,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
		case result.Error != nil:
			return fmt.Errorf("failed to look up user: %w", result.Error)
		default:
			if err := tx.Model(&user).Updates(map[string]interface{}{
				"name":          gothUser.Name,
				"last_login_at": now,
			}).Error; err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		provider := gothUser.Provider
		if provider == "" {
			provider = googleProvider
		}

		var identity models.AuthIdentity
		result = tx.Where("provider = ? AND provider_user_id = ?", provider, gothUser.UserID).First(&identity)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up identity: %w", result.Error)
		}

		identity.UserID = user.ID
		identity.Provider = provider
		identity.ProviderUserID = gothUser.UserID
		identity.AccessToken = gothUser.AccessToken
		identity.RefreshToken = gothUser.RefreshToken
		if !gothUser.ExpiresAt.IsZero() {
			expiry := gothUser.ExpiresAt
			identity.TokenExpiry = &expiry
		}

		if err := tx.Save(&identity).Error; err != nil {
			return fmt.Errorf("failed to save identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Gothic reads the provider from the query string.
func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", googleProvider)
	c.Request.URL.RawQuery = q.Encode()
}
