package pages

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
)

// PathLogin is where unauthenticated page requests are sent.
const PathLogin = "/login"

type loginView struct {
	Frame
	Email         string
	GoogleEnabled bool
}

var loginErrors = map[string]string{
	"auth_failed":    "Google sign-in failed. Please try again.",
	"session_failed": "Could not start your session. Please try again.",
}

// LoginPage handles GET /login. Users who already have a session go
// straight to the first wizard page.
func LoginPage(googleEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.SessionIdentity(c); ok {
			c.Redirect(http.StatusFound, PathProfile)
			return
		}
		render(c, http.StatusOK, loginPage(loginView{
			Frame:         Frame{Title: "Log in", Error: loginErrors[c.Query("error")]},
			GoogleEnabled: googleEnabled,
		}))
	}
}

// SubmitLoginPage handles POST /login.
func SubmitLoginPage(svc *auth.Service, googleEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.PostForm("email")
		user, err := svc.Authenticate(c.Request.Context(), email, c.PostForm("password"))
		if err != nil {
			msg := "Invalid email or password"
			status := http.StatusUnauthorized
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				slog.Error("Login failed", "error", err)
				msg, status = msgSaveFailed, http.StatusInternalServerError
			}
			render(c, status, loginPage(loginView{
				Frame:         Frame{Title: "Log in", Error: msg},
				Email:         email,
				GoogleEnabled: googleEnabled,
			}))
			return
		}

		if err := auth.StartSession(c, user); err != nil {
			slog.Error("Session save error", "error", err)
			c.Redirect(http.StatusSeeOther, PathLogin+"?error=session_failed")
			return
		}
		c.Redirect(http.StatusSeeOther, PathProfile)
	}
}

// SubmitRegisterPage handles POST /register: it creates the account, logs
// the user in and starts the wizard.
func SubmitRegisterPage(svc *auth.Service, googleEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Register(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
		if err != nil {
			status := http.StatusBadRequest
			var msg string
			switch {
			case errors.Is(err, auth.ErrMissingCredentials):
				msg = "Email and password are required."
			case errors.Is(err, auth.ErrUserExists):
				msg = "User already exists."
			case errors.Is(err, auth.ErrWeakPassword):
				msg = "Password does not meet complexity requirements."
			default:
				slog.Error("Registration failed", "error", err)
				msg, status = msgSaveFailed, http.StatusInternalServerError
			}
			render(c, status, loginPage(loginView{
				Frame:         Frame{Title: "Log in", Error: msg},
				GoogleEnabled: googleEnabled,
			}))
			return
		}

		if err := auth.StartSession(c, user); err != nil {
			slog.Error("Session save error", "error", err)
			c.Redirect(http.StatusSeeOther, PathLogin+"?error=session_failed")
			return
		}
		slog.Info("User registered", "user_id", user.ID)
		c.Redirect(http.StatusSeeOther, PathProfile)
	}
}

// LogoutPage handles POST /logout.
func LogoutPage(c *gin.Context) {
	if err := auth.EndSession(c); err != nil {
		slog.Error("Session clear error", "error", err)
	}
	c.Redirect(http.StatusSeeOther, PathLogin)
}
