package pages

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/auth"
	"github.com/jimdaga/first-step/internal/catalog"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"golang.org/x/sync/errgroup"
)

// Wizard page paths.
const (
	PathProfile        = "/onboarding/job-seeker/profile"
	PathJobLocation    = "/onboarding/job-seeker/job-location"
	PathProfession     = "/onboarding/job-seeker/profession"
	PathWorkExperience = "/onboarding/job-seeker/work-experience"
	PathUploadCV       = "/onboarding/job-seeker/upload-cv"
	PathSalary         = "/onboarding/salary"
	PathComplete       = "/onboarding/complete"
)

const (
	msgSaveFailed = "Something went wrong"
	msgLoadFailed = "Failed to load your data."
)

// step describes one wizard page's place in the flow.
type step struct {
	title   string
	percent int
	number  int
	back    string
	next    string
	formID  string
}

var (
	profileStep        = step{"Profile", 36, 4, "", PathJobLocation, "onboard-profile-form"}
	jobLocationStep    = step{"Job location", 45, 5, PathProfile, PathProfession, "onboard-job-location-form"}
	professionStep     = step{"Profession", 55, 6, PathJobLocation, PathWorkExperience, "onboard-profession-form"}
	workExperienceStep = step{"Work experience", 64, 7, PathProfession, PathUploadCV, "onboard-work-experience-form"}
	salaryStep         = step{"Salary", 82, 9, PathUploadCV, PathComplete, "onboard-salary-form"}
)

func (s step) frame(errMsg string) Frame {
	return Frame{
		Title:    s.title,
		Progress: &Progress{Percent: s.percent, Label: stepLabel(s.number)},
		BackURL:  s.back,
		FormID:   s.formID,
		Error:    errMsg,
	}
}

type profileView struct {
	Frame
	Profile   onboarding.Profile
	Locations []models.Option
	AgeRanges []models.Option
	Genders   []models.Option
}

type jobLocationView struct {
	Frame
	JobLocation onboarding.JobLocation
	Relocate    string
	Locations   []models.Option
	Housing     []models.Option
}

type professionView struct {
	Frame
	Profession      onboarding.Profession
	JobOptions      []models.Option
	Opportunities   []models.Option
	EmploymentTypes []models.Option
}

type workExperienceView struct {
	Frame
	WorkExperience   onboarding.WorkExperience
	Rows             []onboarding.Position
	JobOptions       []models.Option
	ExperienceRanges []models.Option
	SummaryMax       int
}

type salaryView struct {
	Frame
	Salary onboarding.Salary
}

// ProfilePage handles GET /onboarding/job-seeker/profile.
func ProfilePage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		view := profileView{Frame: profileStep.frame(""), AgeRanges: models.AgeRanges.Options(), Genders: models.Genders.Options()}
		err := loadConcurrently(c.Request.Context(),
			func(ctx context.Context) (err error) {
				view.Profile, err = steps.GetProfile(ctx, userID)
				return err
			},
			func(ctx context.Context) (err error) {
				view.Locations, err = locationOptions(ctx, refs)
				return err
			},
		)
		if err != nil {
			if loadFailed(c, err, &view.Frame) {
				render(c, http.StatusInternalServerError, profilePage(view))
			}
			return
		}
		render(c, http.StatusOK, profilePage(view))
	})
}

// SubmitProfilePage handles POST /onboarding/job-seeker/profile.
func SubmitProfilePage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		in := onboarding.Profile{
			FirstName:  optional(c.PostForm("firstName")),
			LastName:   optional(c.PostForm("lastName")),
			AgeRange:   optional(c.PostForm("ageRange")),
			Gender:     optional(c.PostForm("gender")),
			LocationID: optional(c.PostForm("locationId")),
		}
		err := steps.SaveProfile(c.Request.Context(), userID, in)
		if err == nil {
			c.Redirect(http.StatusSeeOther, profileStep.next)
			return
		}
		if saveFailed(c, err) {
			locations, _ := locationOptions(c.Request.Context(), refs)
			render(c, http.StatusInternalServerError, profilePage(profileView{
				Frame:     profileStep.frame(msgSaveFailed),
				Profile:   in,
				Locations: locations,
				AgeRanges: models.AgeRanges.Options(),
				Genders:   models.Genders.Options(),
			}))
		}
	})
}

// JobLocationPage handles GET /onboarding/job-seeker/job-location.
func JobLocationPage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		view := jobLocationView{Frame: jobLocationStep.frame(""), Housing: models.HousingAssistance.Options()}
		err := loadConcurrently(c.Request.Context(),
			func(ctx context.Context) (err error) {
				view.JobLocation, err = steps.GetJobLocation(ctx, userID)
				return err
			},
			func(ctx context.Context) (err error) {
				view.Locations, err = locationOptions(ctx, refs)
				return err
			},
		)
		view.Relocate = relocateAnswer(view.JobLocation.WillingToRelocate)
		if err != nil {
			if loadFailed(c, err, &view.Frame) {
				render(c, http.StatusInternalServerError, jobLocationPage(view))
			}
			return
		}
		render(c, http.StatusOK, jobLocationPage(view))
	})
}

// SubmitJobLocationPage handles POST /onboarding/job-seeker/job-location.
func SubmitJobLocationPage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		in := onboarding.JobLocationInput{
			JobSearchLocationIDs:        c.PostFormArray("jobSearchLocationIds"),
			WillingToRelocate:           c.PostForm("relocate"),
			HousingAssistancePreference: optional(c.PostForm("housing")),
		}
		err := steps.SaveJobLocation(c.Request.Context(), userID, in)
		if err == nil {
			c.Redirect(http.StatusSeeOther, jobLocationStep.next)
			return
		}
		if saveFailed(c, err) {
			locations, _ := locationOptions(c.Request.Context(), refs)
			view := jobLocationView{
				Frame:     jobLocationStep.frame(msgSaveFailed),
				Relocate:  in.WillingToRelocate,
				Locations: locations,
				Housing:   models.HousingAssistance.Options(),
			}
			view.JobLocation.JobSearchLocationIDs = in.JobSearchLocationIDs
			if in.HousingAssistancePreference != nil {
				view.JobLocation.HousingAssistancePreference = *in.HousingAssistancePreference
			}
			render(c, http.StatusInternalServerError, jobLocationPage(view))
		}
	})
}

// ProfessionPage handles GET /onboarding/job-seeker/profession.
func ProfessionPage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		view := professionView{
			Frame:           professionStep.frame(""),
			Opportunities:   models.OpportunityTypes.Options(),
			EmploymentTypes: models.EmploymentTypes.Options(),
		}
		err := loadConcurrently(c.Request.Context(),
			func(ctx context.Context) (err error) {
				view.Profession, err = steps.GetProfession(ctx, userID)
				return err
			},
			func(ctx context.Context) (err error) {
				view.JobOptions, err = jobOptions(ctx, refs)
				return err
			},
		)
		if err != nil {
			if loadFailed(c, err, &view.Frame) {
				render(c, http.StatusInternalServerError, professionPage(view))
			}
			return
		}
		render(c, http.StatusOK, professionPage(view))
	})
}

// SubmitProfessionPage handles POST /onboarding/job-seeker/profession.
// Picking "only paid work" or "both / flexible" clears the other choices in
// that group.
func SubmitProfessionPage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		in := onboarding.Profession{
			TargetJobs:      c.PostFormArray("targetJobs"),
			Opportunities:   exclusive(c.PostFormArray("opportunities"), models.OpportunityPaidWorkOnly),
			EmploymentTypes: exclusive(c.PostFormArray("employmentTypes"), models.EmploymentBothFlexible),
		}
		err := steps.SaveProfession(c.Request.Context(), userID, in)
		if err == nil {
			c.Redirect(http.StatusSeeOther, professionStep.next)
			return
		}
		if saveFailed(c, err) {
			options, _ := jobOptions(c.Request.Context(), refs)
			render(c, http.StatusInternalServerError, professionPage(professionView{
				Frame:           professionStep.frame(msgSaveFailed),
				Profession:      in,
				JobOptions:      options,
				Opportunities:   models.OpportunityTypes.Options(),
				EmploymentTypes: models.EmploymentTypes.Options(),
			}))
		}
	})
}

// WorkExperiencePage handles GET /onboarding/job-seeker/work-experience.
func WorkExperiencePage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		view := workExperienceView{
			Frame:            workExperienceStep.frame(""),
			ExperienceRanges: models.ExperienceRanges.Options(),
			SummaryMax:       onboarding.SummaryMaxLength,
		}
		err := loadConcurrently(c.Request.Context(),
			func(ctx context.Context) (err error) {
				view.WorkExperience, err = steps.GetWorkExperience(ctx, userID)
				return err
			},
			func(ctx context.Context) (err error) {
				view.JobOptions, err = jobOptions(ctx, refs)
				return err
			},
		)
		view.Rows = positionRows(view.WorkExperience.Positions)
		if err != nil {
			if loadFailed(c, err, &view.Frame) {
				render(c, http.StatusInternalServerError, workExperiencePage(view))
			}
			return
		}
		render(c, http.StatusOK, workExperiencePage(view))
	})
}

// SubmitWorkExperiencePage handles POST /onboarding/job-seeker/work-experience.
func SubmitWorkExperiencePage(steps *onboarding.Service, refs *catalog.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		summary := c.PostForm("summary")
		in := onboarding.WorkExperienceInput{
			Positions: positionsFromForm(c),
			Summary:   &summary,
		}
		err := steps.SaveWorkExperience(c.Request.Context(), userID, in)
		if err == nil {
			c.Redirect(http.StatusSeeOther, workExperienceStep.next)
			return
		}
		if saveFailed(c, err) {
			options, _ := jobOptions(c.Request.Context(), refs)
			render(c, http.StatusInternalServerError, workExperiencePage(workExperienceView{
				Frame:            workExperienceStep.frame(msgSaveFailed),
				WorkExperience:   onboarding.WorkExperience{Summary: summary, Positions: in.Positions},
				Rows:             positionRows(in.Positions),
				JobOptions:       options,
				ExperienceRanges: models.ExperienceRanges.Options(),
				SummaryMax:       onboarding.SummaryMaxLength,
			}))
		}
	})
}

// SalaryPage handles GET /onboarding/salary.
func SalaryPage(steps *onboarding.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		view := salaryView{Frame: salaryStep.frame("")}
		var err error
		view.Salary, err = steps.GetSalary(c.Request.Context(), userID)
		if err != nil {
			if loadFailed(c, err, &view.Frame) {
				render(c, http.StatusInternalServerError, salaryPage(view))
			}
			return
		}
		render(c, http.StatusOK, salaryPage(view))
	})
}

// SubmitSalaryPage handles POST /onboarding/salary.
func SubmitSalaryPage(steps *onboarding.Service) gin.HandlerFunc {
	return withUser(func(c *gin.Context, userID uint) {
		expectation := optional(c.PostForm("salaryExpectation"))
		err := steps.SaveSalary(c.Request.Context(), userID, expectation)
		if err == nil {
			c.Redirect(http.StatusSeeOther, salaryStep.next)
			return
		}
		if saveFailed(c, err) {
			render(c, http.StatusInternalServerError, salaryPage(salaryView{
				Frame:  salaryStep.frame(msgSaveFailed),
				Salary: onboarding.Salary{SalaryExpectation: expectation},
			}))
		}
	})
}

// CompletePage handles GET /onboarding/complete.
func CompletePage(c *gin.Context) {
	render(c, http.StatusOK, completePage())
}

// loadConcurrently runs the saved-state read and the reference read in
// parallel and joins them before rendering.
func loadConcurrently(ctx context.Context, loads ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, load := range loads {
		g.Go(func() error { return load(ctx) })
	}
	return g.Wait()
}

// loadFailed redirects stale sessions to the login page and records a
// banner for other failures. It reports whether the page should still be
// rendered.
func loadFailed(c *gin.Context, err error, frame *Frame) bool {
	if errors.Is(err, onboarding.ErrUserNotFound) {
		redirectToLogin(c)
		return false
	}
	slog.Error("Failed to load onboarding page", "path", c.Request.URL.Path, "error", err)
	frame.Error = msgLoadFailed
	return true
}

// saveFailed handles a failed step write. It returns true when the caller
// should re-render the form with the error banner.
func saveFailed(c *gin.Context, err error) bool {
	if errors.Is(err, onboarding.ErrUserNotFound) {
		redirectToLogin(c)
		return false
	}
	slog.Error("Failed to save onboarding step", "path", c.Request.URL.Path, "error", err)
	return true
}

func redirectToLogin(c *gin.Context) {
	if err := auth.EndSession(c); err != nil {
		slog.Error("Session clear error", "error", err)
	}
	c.Redirect(http.StatusSeeOther, PathLogin)
}

func withUser(fn func(c *gin.Context, userID uint)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusFound, PathLogin)
			return
		}
		fn(c, id.UserID)
	}
}

func locationOptions(ctx context.Context, refs *catalog.Service) ([]models.Option, error) {
	entries, err := refs.Locations(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.LabelOptions(entries), nil
}

func jobOptions(ctx context.Context, refs *catalog.Service) ([]models.Option, error) {
	entries, err := refs.JobOptions(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.LabelOptions(entries), nil
}
