package onboarding

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerRouter(svc *Service, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != 0 {
		r.Use(func(c *gin.Context) {
			auth.SetIdentity(c, auth.Identity{UserID: userID})
			c.Next()
		})
	}

	r.GET("/progress", GetProgressHandler(svc))
	r.GET("/profile", GetProfileHandler(svc))
	r.POST("/profile", SaveProfileHandler(svc))
	r.GET("/job-location", GetJobLocationHandler(svc))
	r.POST("/job-location", SaveJobLocationHandler(svc))
	r.GET("/profession", GetProfessionHandler(svc))
	r.POST("/profession", SaveProfessionHandler(svc))
	r.GET("/work-experience", GetWorkExperienceHandler(svc))
	r.POST("/work-experience", SaveWorkExperienceHandler(svc))
	r.GET("/salary", GetSalaryHandler(svc))
	r.POST("/salary", SaveSalaryHandler(svc))
	return r
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlersRequireIdentity(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, 0)

	for _, path := range []string{"/profile", "/job-location", "/profession", "/work-experience", "/salary"} {
		w := call(r, http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	}

	var user models.User
	require.NoError(t, f.db.First(&user, f.userID).Error)
	assert.Equal(t, StepRegistered, user.OnboardingStep)
}

func TestMalformedJSONIsServerError(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	w := call(r, http.MethodPost, "/profession", `{"targetJobs": [`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestWrongShapeFields(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	w := call(r, http.MethodPost, "/profession", `{"targetJobs":"cook","opportunities":7}`)
	assert.Equal(t, http.StatusOK, w.Code, "list fields of the wrong shape are treated as empty")

	w = call(r, http.MethodPost, "/profile", `{"firstName":5}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = call(r, http.MethodPost, "/job-location", `{"housingAssistancePreference":true}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProfileHandlers(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	w := call(r, http.MethodGet, "/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"firstName":null,"lastName":null,"ageRange":null,"gender":null,"locationId":null}`, w.Body.String())

	w = call(r, http.MethodPost, "/profile", `{"firstName":"Ada","ageRange":"AGE_25_29","locationId":"riga"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = call(r, http.MethodGet, "/profile", "")
	assert.JSONEq(t, `{"firstName":"Ada","lastName":null,"ageRange":"AGE_25_29","gender":null,"locationId":"riga"}`, w.Body.String())
}

func TestJobLocationHandlers(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	w := call(r, http.MethodGet, "/job-location", "")
	assert.JSONEq(t, `{"willingToRelocate":null,"housingAssistancePreference":"","jobSearchLocationIds":[]}`, w.Body.String())

	w = call(r, http.MethodPost, "/job-location",
		`{"jobSearchLocationIds":["L1","L2",3],"willingToRelocate":"yes","housingAssistancePreference":"NO"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/job-location", "")
	assert.JSONEq(t, `{"willingToRelocate":true,"housingAssistancePreference":"NO","jobSearchLocationIds":["L1","L2"]}`, w.Body.String())

	// A boolean is not the string "yes".
	w = call(r, http.MethodPost, "/job-location", `{"jobSearchLocationIds":"L1","willingToRelocate":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/job-location", "")
	assert.JSONEq(t, `{"willingToRelocate":false,"housingAssistancePreference":"","jobSearchLocationIds":[]}`, w.Body.String())
}

func TestProfessionHandlers(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	w := call(r, http.MethodPost, "/profession",
		`{"targetJobs":["job-a",null,"","job-a"],"opportunities":["COURSES","BOGUS"],"employmentTypes":["FULL_TIME"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/profession", "")
	assert.JSONEq(t, `{"targetJobs":["job-a"],"opportunities":["COURSES"],"employmentTypes":["FULL_TIME"]}`, w.Body.String())
}

func TestWorkExperienceHandlers(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	w := call(r, http.MethodGet, "/work-experience", "")
	assert.JSONEq(t, `{"summary":"","positions":[]}`, w.Body.String())

	w = call(r, http.MethodPost, "/work-experience", `{
		"positions": [
			{"jobOptionId":"cook","yearsRange":"YEARS_0_1"},
			{"jobOptionId":7,"yearsRange":"YEARS_1_2"},
			{"jobOptionId":"cook","yearsRange":"YEARS_10_PLUS"},
			"garbage"
		],
		"summary": "Line cook"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/work-experience", "")
	assert.JSONEq(t, `{"summary":"Line cook","positions":[{"jobOptionId":"cook","yearsRange":"YEARS_10_PLUS"}]}`, w.Body.String())

	// A non-string summary is stored as null.
	w = call(r, http.MethodPost, "/work-experience", `{"positions":[],"summary":42}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodGet, "/work-experience", "")
	assert.JSONEq(t, `{"summary":"","positions":[]}`, w.Body.String())
}

func TestSalaryHandlers(t *testing.T) {
	f := newFixture(t)
	r := newHandlerRouter(f.svc, f.userID)

	tests := []struct {
		body string
		want string
	}{
		{`{"salaryExpectation":"1500-2000 EUR"}`, `{"salaryExpectation":"1500-2000 EUR"}`},
		{`{"salaryExpectation":2500}`, `{"salaryExpectation":"2500"}`},
		{`{"salaryExpectation":null}`, `{"salaryExpectation":null}`},
		{`{}`, `{"salaryExpectation":null}`},
	}

	for _, tt := range tests {
		w := call(r, http.MethodPost, "/salary", tt.body)
		require.Equal(t, http.StatusOK, w.Code, tt.body)

		w = call(r, http.MethodGet, "/salary", "")
		assert.JSONEq(t, tt.want, w.Body.String(), tt.body)
	}

	w := call(r, http.MethodGet, "/progress", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"onboardingStep":10,"completedSteps":[]}`, w.Body.String())
}

func TestDeletedUserIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Delete(&models.User{}, f.userID).Error)
	r := newHandlerRouter(f.svc, f.userID)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/profile", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/profile", `{}`).Code)
}
