package pages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
	"github.com/jimdaga/first-step/internal/catalog"
	"github.com/jimdaga/first-step/internal/dbtest"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	db     *gorm.DB
	router *gin.Engine
	steps  *onboarding.Service
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	cat, err := catalog.Parse([]byte(`
locations:
  - id: riga
    label: Riga
  - id: remote
    label: Remote
job_options:
  - id: cook
    label: Cook
  - id: driver
    label: Driver
`))
	require.NoError(t, err)
	require.NoError(t, catalog.Sync(db, cat))

	authSvc := auth.NewService(db)
	steps := onboarding.NewService(db, nil, nil)
	refs := catalog.NewService(db, nil, time.Minute)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET(PathLogin, LoginPage(false))
	r.POST(PathLogin, SubmitLoginPage(authSvc, false))
	r.POST("/register", SubmitRegisterPage(authSvc, false))
	r.POST("/logout", LogoutPage)

	g := r.Group("/", auth.RequireAuth())
	g.GET(PathProfile, ProfilePage(steps, refs))
	g.POST(PathProfile, SubmitProfilePage(steps, refs))
	g.GET(PathJobLocation, JobLocationPage(steps, refs))
	g.POST(PathJobLocation, SubmitJobLocationPage(steps, refs))
	g.GET(PathProfession, ProfessionPage(steps, refs))
	g.POST(PathProfession, SubmitProfessionPage(steps, refs))
	g.GET(PathWorkExperience, WorkExperiencePage(steps, refs))
	g.POST(PathWorkExperience, SubmitWorkExperiencePage(steps, refs))
	g.GET(PathSalary, SalaryPage(steps))
	g.POST(PathSalary, SubmitSalaryPage(steps))
	g.GET(PathComplete, CompletePage)

	h := &harness{db: db, router: r, steps: steps}

	w := h.post("/register", url.Values{"email": {"page@example.com"}, "password": {"Abcdef1!"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, PathProfile, w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == "test_session" {
			h.cookie = c
		}
	}
	require.NotNil(t, h.cookie)
	return h
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) userID(t *testing.T) uint {
	t.Helper()
	var user models.User
	require.NoError(t, h.db.Where("email = ?", "page@example.com").First(&user).Error)
	return user.ID
}

// closedDB returns a database whose pool is already closed, so every
// query fails.
func closedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := dbtest.New(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return db
}

func TestWizardPagesShowProgress(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		path  string
		label string
		pct   string
		back  string
	}{
		{PathProfile, "Step 4 of 11", `value="36"`, ""},
		{PathJobLocation, "Step 5 of 11", `value="45"`, PathProfile},
		{PathProfession, "Step 6 of 11", `value="55"`, PathJobLocation},
		{PathWorkExperience, "Step 7 of 11", `value="64"`, PathProfession},
		{PathSalary, "Step 9 of 11", `value="82"`, PathUploadCV},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := h.get(tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, tt.label)
			assert.Contains(t, body, tt.pct)
			assert.Contains(t, body, "Continue")
			if tt.back != "" {
				assert.Contains(t, body, `href="`+tt.back+`"`)
			} else {
				assert.NotContains(t, body, ">Back<")
			}
		})
	}
}

func TestWizardNavigation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	w := h.post(PathProfile, url.Values{
		"firstName": {"Ann"}, "lastName": {""}, "ageRange": {"AGE_30_34"}, "gender": {"female"}, "locationId": {"riga"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, PathJobLocation, w.Header().Get("Location"))

	profile, err := h.steps.GetProfile(ctx, h.userID(t))
	require.NoError(t, err)
	require.NotNil(t, profile.FirstName)
	assert.Equal(t, "Ann", *profile.FirstName)
	assert.Nil(t, profile.LastName)

	w = h.get(PathProfile)
	assert.Contains(t, w.Body.String(), `value="Ann"`)
	assert.Contains(t, w.Body.String(), `<option value="riga" selected>Riga</option>`)

	w = h.post(PathJobLocation, url.Values{
		"jobSearchLocationIds": {"riga", "remote"}, "relocate": {"no"}, "housing": {"NEED_HELP_MOVING"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, PathProfession, w.Header().Get("Location"))

	w = h.post(PathProfession, url.Values{
		"targetJobs":      {"cook"},
		"opportunities":   {"COURSES", "PAID_WORK_ONLY"},
		"employmentTypes": {"PART_TIME", "BOTH_FLEXIBLE"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, PathWorkExperience, w.Header().Get("Location"))

	prof, err := h.steps.GetProfession(ctx, h.userID(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"PAID_WORK_ONLY"}, prof.Opportunities)
	assert.Equal(t, []string{"BOTH_FLEXIBLE"}, prof.EmploymentTypes)

	w = h.post(PathWorkExperience, url.Values{
		"jobOptionId": {"driver", "", "cook"},
		"yearsRange":  {"YEARS_1_2", "YEARS_3_5", ""},
		"summary":     {"Delivery driver"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, PathUploadCV, w.Header().Get("Location"))

	exp, err := h.steps.GetWorkExperience(ctx, h.userID(t))
	require.NoError(t, err)
	assert.Equal(t, []onboarding.Position{{JobOptionID: "driver", YearsRange: "YEARS_1_2"}}, exp.Positions)
	assert.Equal(t, "Delivery driver", exp.Summary)

	w = h.post(PathSalary, url.Values{"salaryExpectation": {"1400"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, PathComplete, w.Header().Get("Location"))

	step, err := h.steps.CurrentStep(ctx, h.userID(t))
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepSalary, step)

	w = h.get(PathComplete)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "all set")
}

func TestSaveFailureRerendersWithError(t *testing.T) {
	h := newHarness(t)

	broken := onboarding.NewService(closedDB(t), nil, nil)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.POST(PathSalary, auth.RequireAuth(), SubmitSalaryPage(broken))

	req := httptest.NewRequest(http.MethodPost, PathSalary, strings.NewReader("salaryExpectation=900"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(h.cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
	assert.Contains(t, w.Body.String(), `value="900"`)
}

func TestLoginPage(t *testing.T) {
	h := newHarness(t)

	w := h.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	h.cookie = nil

	w = h.get(PathProfile)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, PathLogin, w.Header().Get("Location"))

	w = h.get(PathLogin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log in")

	w = h.post(PathLogin, url.Values{"email": {"page@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = h.post(PathLogin, url.Values{"email": {"page@example.com"}, "password": {"Abcdef1!"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, PathProfile, w.Header().Get("Location"))
}

func TestRegisterPageErrors(t *testing.T) {
	h := newHarness(t)
	h.cookie = nil

	w := h.post("/register", url.Values{"email": {"page@example.com"}, "password": {"Abcdef1!"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists.")

	w = h.post("/register", url.Values{"email": {"weak@example.com"}, "password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password does not meet complexity requirements.")
}

func TestExclusive(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, exclusive([]string{"A", "B"}, "X"))
	assert.Equal(t, []string{"X"}, exclusive([]string{"A", "X", "B"}, "X"))
	assert.Nil(t, exclusive(nil, "X"))
}

func TestPositionRows(t *testing.T) {
	assert.Len(t, positionRows(nil), minPositionRows)

	saved := []onboarding.Position{
		{JobOptionID: "a", YearsRange: "YEARS_0_1"},
		{JobOptionID: "b", YearsRange: "YEARS_0_1"},
		{JobOptionID: "c", YearsRange: "YEARS_0_1"},
	}
	rows := positionRows(saved)
	require.Len(t, rows, 4)
	assert.Equal(t, saved, rows[:3])
	assert.Equal(t, onboarding.Position{}, rows[3])
}

func TestComponentsEscapeAndMarkSelection(t *testing.T) {
	opts := []models.Option{{Value: "a", Label: "A & B"}, {Value: "b", Label: "<b>"}}

	var buf strings.Builder
	require.NoError(t, optionList(opts, is("b")).Render(context.Background(), &buf))
	assert.Equal(t, `<option value="a">A &amp; B</option><option value="b" selected>&lt;b&gt;</option>`, buf.String())

	buf.Reset()
	require.NoError(t, choiceList("checkbox", "pick", opts, oneOf([]string{"a"})).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<input class="checkbox" type="checkbox" name="pick" value="a" checked>`)
	assert.Contains(t, buf.String(), `<input class="checkbox" type="checkbox" name="pick" value="b">`)
}

func TestLayoutWrapsPageContent(t *testing.T) {
	var buf strings.Builder
	view := salaryView{Frame: salaryStep.frame("Something went wrong")}
	require.NoError(t, salaryPage(view).Render(context.Background(), &buf))

	body := buf.String()
	assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
	assert.Contains(t, body, `<div class="alert alert-error mb-4" role="alert">Something went wrong</div>`)
	assert.Contains(t, body, `<form id="onboard-salary-form" method="post"`)
	assert.Contains(t, body, `form="onboard-salary-form"`)
	assert.True(t, strings.HasSuffix(body, "</body></html>"))
}
