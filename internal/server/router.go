// Package server assembles the HTTP surface: JSON step endpoints, reference
// data, auth and the server-rendered wizard.
package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
	"github.com/jimdaga/first-step/internal/catalog"
	"github.com/jimdaga/first-step/internal/config"
	"github.com/jimdaga/first-step/internal/health"
	"github.com/jimdaga/first-step/internal/onboarding"
	"github.com/jimdaga/first-step/internal/pages"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// SessionName is the cookie carrying the login session.
const SessionName = "first_step_session"

// Deps are the services the router dispatches to.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Auth          *auth.Service
	Onboarding    *onboarding.Service
	Catalog       *catalog.Service
	GoogleEnabled bool
}

// NewHandler returns the router wrapped in CORS handling when cross-origin
// callers are configured.
func NewHandler(d Deps) http.Handler {
	router := NewRouter(d)
	if len(d.Config.AllowedOrigins) == 0 {
		return router
	}
	return cors.New(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(router)
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   d.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(SessionName, store))

	r.GET("/health", gin.WrapF(health.Handler))
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, pages.PathProfile) })

	limiter := auth.NewRateLimiter(d.Config.AuthRateLimit, d.Config.AuthRateBurst)

	authAPI := r.Group("/api/auth", limiter.Middleware())
	authAPI.POST("/register", auth.RegisterHandler(d.Auth))
	authAPI.POST("/login", auth.LoginHandler(d.Auth))
	authAPI.POST("/logout", auth.LogoutHandler)

	r.GET(pages.PathLogin, pages.LoginPage(d.GoogleEnabled))
	r.POST(pages.PathLogin, limiter.Middleware(), pages.SubmitLoginPage(d.Auth, d.GoogleEnabled))
	r.POST("/register", limiter.Middleware(), pages.SubmitRegisterPage(d.Auth, d.GoogleEnabled))
	r.POST("/logout", pages.LogoutPage)

	if d.GoogleEnabled {
		r.GET("/auth/google", auth.HandleGoogleLogin)
		r.GET("/auth/google/callback", auth.HandleGoogleCallback(d.DB))
	}

	api := r.Group("/api", auth.RequireAPIAuth())
	{
		seeker := api.Group("/onboarding/job-seeker")
		seeker.GET("/profile", onboarding.GetProfileHandler(d.Onboarding))
		seeker.POST("/profile", onboarding.SaveProfileHandler(d.Onboarding))
		seeker.GET("/job-location", onboarding.GetJobLocationHandler(d.Onboarding))
		seeker.POST("/job-location", onboarding.SaveJobLocationHandler(d.Onboarding))
		seeker.GET("/profession", onboarding.GetProfessionHandler(d.Onboarding))
		seeker.POST("/profession", onboarding.SaveProfessionHandler(d.Onboarding))
		seeker.GET("/work-experience", onboarding.GetWorkExperienceHandler(d.Onboarding))
		seeker.POST("/work-experience", onboarding.SaveWorkExperienceHandler(d.Onboarding))

		api.GET("/onboarding/salary", onboarding.GetSalaryHandler(d.Onboarding))
		api.POST("/onboarding/salary", onboarding.SaveSalaryHandler(d.Onboarding))
		api.GET("/onboarding/progress", onboarding.GetProgressHandler(d.Onboarding))

		api.GET("/meta/locations", catalog.LocationsHandler(d.Catalog))
		api.GET("/meta/job-options", catalog.JobOptionsHandler(d.Catalog))
	}

	wizard := r.Group("/", auth.RequireAuth())
	{
		wizard.GET(pages.PathProfile, pages.ProfilePage(d.Onboarding, d.Catalog))
		wizard.POST(pages.PathProfile, pages.SubmitProfilePage(d.Onboarding, d.Catalog))
		wizard.GET(pages.PathJobLocation, pages.JobLocationPage(d.Onboarding, d.Catalog))
		wizard.POST(pages.PathJobLocation, pages.SubmitJobLocationPage(d.Onboarding, d.Catalog))
		wizard.GET(pages.PathProfession, pages.ProfessionPage(d.Onboarding, d.Catalog))
		wizard.POST(pages.PathProfession, pages.SubmitProfessionPage(d.Onboarding, d.Catalog))
		wizard.GET(pages.PathWorkExperience, pages.WorkExperiencePage(d.Onboarding, d.Catalog))
		wizard.POST(pages.PathWorkExperience, pages.SubmitWorkExperiencePage(d.Onboarding, d.Catalog))
		wizard.GET(pages.PathSalary, pages.SalaryPage(d.Onboarding))
		wizard.POST(pages.PathSalary, pages.SubmitSalaryPage(d.Onboarding))
		wizard.GET(pages.PathComplete, pages.CompletePage)
	}

	return r
}
