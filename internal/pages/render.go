// Package pages serves the server-rendered onboarding wizard and login pages.
// Components live in the .templ files; regenerate the _templ.go files with
// `templ generate` after editing them.
package pages

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/models"
)

// Progress is the bar shown above a wizard page.
type Progress struct {
	Percent int
	Label   string
}

// Frame holds what the layout needs around a page's content.
type Frame struct {
	Title    string
	Progress *Progress
	BackURL  string
	FormID   string
	Error    string
}

var relocateChoices = []models.Option{
	{Value: "yes", Label: "Yes"},
	{Value: "no", Label: "No"},
}

// render writes a page component as the response body.
func render(c *gin.Context, status int, page templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := page.Render(c.Request.Context(), c.Writer); err != nil {
		slog.Error("Page render failed", "path", c.Request.URL.Path, "error", err)
		c.Status(http.StatusInternalServerError)
	}
}

func stepLabel(n int) string {
	return fmt.Sprintf("Step %d of 11", n)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// is matches a single saved value.
func is(want string) func(string) bool {
	return func(v string) bool { return v == want }
}

// oneOf matches any of the saved values.
func oneOf(values []string) func(string) bool {
	return func(v string) bool { return slices.Contains(values, v) }
}
