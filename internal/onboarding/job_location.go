package onboarding

import (
	"context"
	"fmt"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
)

// JobLocation is the read model of the job-location step.
type JobLocation struct {
	WillingToRelocate           *bool    `json:"willingToRelocate"`
	HousingAssistancePreference string   `json:"housingAssistancePreference"`
	JobSearchLocationIDs        []string `json:"jobSearchLocationIds"`
}

// JobLocationInput is a submitted job-location step. WillingToRelocate is
// the raw answer; only the exact string "yes" means true.
type JobLocationInput struct {
	JobSearchLocationIDs        []string
	WillingToRelocate           string
	HousingAssistancePreference *string
}

// GetJobLocation returns the saved job-location answers.
func (s *Service) GetJobLocation(ctx context.Context, userID uint) (JobLocation, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return JobLocation{}, err
	}

	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.JobSearchLocation{}).
		Where("user_id = ?", userID).
		Order("location_id").
		Pluck("location_id", &ids).Error; err != nil {
		return JobLocation{}, fmt.Errorf("failed to load job search locations: %w", err)
	}

	out := JobLocation{
		WillingToRelocate:    user.WillingToRelocate,
		JobSearchLocationIDs: nonNil(ids),
	}
	if user.HousingAssistancePreference != nil {
		out.HousingAssistancePreference = *user.HousingAssistancePreference
	}
	return out, nil
}

// SaveJobLocation replaces the user's job search locations and relocation
// answers. Empty and repeated location IDs are dropped, and a blank housing
// preference is stored as unset.
func (s *Service) SaveJobLocation(ctx context.Context, userID uint, in JobLocationInput) error {
	ids := uniqueStrings(in.JobSearchLocationIDs)
	rows := make([]models.JobSearchLocation, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.JobSearchLocation{UserID: userID, LocationID: id})
	}

	fields := map[string]interface{}{
		"willing_to_relocate":           in.WillingToRelocate == "yes",
		"housing_assistance_preference": blankToNil(in.HousingAssistancePreference),
	}

	return s.writeStep(ctx, userID, "job-location", StepJobLocation, fields, func(tx *gorm.DB) error {
		return replaceSet(tx, userID, rows)
	})
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
