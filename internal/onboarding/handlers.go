package onboarding

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
)

// List fields, the relocation answer, the work summary and the salary are
// decoded loosely: a value of the wrong shape counts as "no value". Profile
// fields and the housing preference are typed, so a non-string there fails
// the request with a 500 just like syntactically invalid JSON.

type jobLocationRequest struct {
	JobSearchLocationIDs        interface{} `json:"jobSearchLocationIds"`
	WillingToRelocate           interface{} `json:"willingToRelocate"`
	HousingAssistancePreference *string     `json:"housingAssistancePreference"`
}

type professionRequest struct {
	TargetJobs      interface{} `json:"targetJobs"`
	Opportunities   interface{} `json:"opportunities"`
	EmploymentTypes interface{} `json:"employmentTypes"`
}

type workExperienceRequest struct {
	Positions interface{} `json:"positions"`
	Summary   interface{} `json:"summary"`
}

type salaryRequest struct {
	SalaryExpectation json.RawMessage `json:"salaryExpectation"`
}

// GetProgressHandler handles GET /api/onboarding/progress.
func GetProgressHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		progress, err := svc.GetProgress(c.Request.Context(), userID)
		respond(c, progress, err)
	})
}

// GetProfileHandler handles GET /api/onboarding/job-seeker/profile.
func GetProfileHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		profile, err := svc.GetProfile(c.Request.Context(), userID)
		respond(c, profile, err)
	})
}

// SaveProfileHandler handles POST /api/onboarding/job-seeker/profile.
func SaveProfileHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		var req Profile
		if !decode(c, &req) {
			return
		}
		respondSaved(c, svc.SaveProfile(c.Request.Context(), userID, req))
	})
}

// GetJobLocationHandler handles GET /api/onboarding/job-seeker/job-location.
func GetJobLocationHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		state, err := svc.GetJobLocation(c.Request.Context(), userID)
		respond(c, state, err)
	})
}

// SaveJobLocationHandler handles POST /api/onboarding/job-seeker/job-location.
func SaveJobLocationHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		var req jobLocationRequest
		if !decode(c, &req) {
			return
		}
		relocate, _ := req.WillingToRelocate.(string)
		respondSaved(c, svc.SaveJobLocation(c.Request.Context(), userID, JobLocationInput{
			JobSearchLocationIDs:        stringsOf(req.JobSearchLocationIDs),
			WillingToRelocate:           relocate,
			HousingAssistancePreference: req.HousingAssistancePreference,
		}))
	})
}

// GetProfessionHandler handles GET /api/onboarding/job-seeker/profession.
func GetProfessionHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		state, err := svc.GetProfession(c.Request.Context(), userID)
		respond(c, state, err)
	})
}

// SaveProfessionHandler handles POST /api/onboarding/job-seeker/profession.
func SaveProfessionHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		var req professionRequest
		if !decode(c, &req) {
			return
		}
		respondSaved(c, svc.SaveProfession(c.Request.Context(), userID, Profession{
			TargetJobs:      stringsOf(req.TargetJobs),
			Opportunities:   stringsOf(req.Opportunities),
			EmploymentTypes: stringsOf(req.EmploymentTypes),
		}))
	})
}

// GetWorkExperienceHandler handles GET /api/onboarding/job-seeker/work-experience.
func GetWorkExperienceHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		state, err := svc.GetWorkExperience(c.Request.Context(), userID)
		respond(c, state, err)
	})
}

// SaveWorkExperienceHandler handles POST /api/onboarding/job-seeker/work-experience.
func SaveWorkExperienceHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		var req workExperienceRequest
		if !decode(c, &req) {
			return
		}

		in := WorkExperienceInput{Positions: positionsOf(req.Positions)}
		if summary, ok := req.Summary.(string); ok {
			in.Summary = &summary
		}
		respondSaved(c, svc.SaveWorkExperience(c.Request.Context(), userID, in))
	})
}

// GetSalaryHandler handles GET /api/onboarding/salary.
func GetSalaryHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		state, err := svc.GetSalary(c.Request.Context(), userID)
		respond(c, state, err)
	})
}

// SaveSalaryHandler handles POST /api/onboarding/salary.
func SaveSalaryHandler(svc *Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		var req salaryRequest
		if !decode(c, &req) {
			return
		}
		respondSaved(c, svc.SaveSalary(c.Request.Context(), userID, rawText(req.SalaryExpectation)))
	})
}

func withUser(fn func(c *gin.Context, userID uint)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		fn(c, id.UserID)
	}
}

func decode(c *gin.Context, dst interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		slog.Error("Failed to decode request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return false
	}
	return true
}

func respond(c *gin.Context, body interface{}, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func respondSaved(c *gin.Context, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	slog.Error("Onboarding request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}

// stringsOf returns the string elements of a decoded JSON array. Anything
// that is not an array yields nil.
func stringsOf(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// positionsOf keeps array entries whose jobOptionId is a string. A
// non-string yearsRange becomes "" and is filtered out by the service.
func positionsOf(v interface{}) []Position {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Position, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		jobOptionID, ok := obj["jobOptionId"].(string)
		if !ok {
			continue
		}
		yearsRange, _ := obj["yearsRange"].(string)
		out = append(out, Position{JobOptionID: jobOptionID, YearsRange: yearsRange})
	}
	return out
}

// rawText returns a JSON value as stored text: strings unquoted, other
// values in their JSON form, null or absent as nil.
func rawText(raw json.RawMessage) *string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	return &trimmed
}
