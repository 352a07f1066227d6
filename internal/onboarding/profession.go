package onboarding

import (
	"context"
	"fmt"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
)

// Profession holds the target jobs and accepted kinds of work.
type Profession struct {
	TargetJobs      []string `json:"targetJobs"`
	Opportunities   []string `json:"opportunities"`
	EmploymentTypes []string `json:"employmentTypes"`
}

// GetProfession returns the saved profession answers. Slices are never nil.
func (s *Service) GetProfession(ctx context.Context, userID uint) (Profession, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return Profession{}, err
	}

	db := s.db.WithContext(ctx)
	var out Profession

	if err := db.Model(&models.UserJobOption{}).Where("user_id = ?", userID).
		Order("job_option_id").Pluck("job_option_id", &out.TargetJobs).Error; err != nil {
		return Profession{}, fmt.Errorf("failed to load target jobs: %w", err)
	}
	if err := db.Model(&models.UserOpportunity{}).Where("user_id = ?", userID).
		Order("type").Pluck("type", &out.Opportunities).Error; err != nil {
		return Profession{}, fmt.Errorf("failed to load opportunities: %w", err)
	}
	if err := db.Model(&models.UserEmploymentType{}).Where("user_id = ?", userID).
		Order("type").Pluck("type", &out.EmploymentTypes).Error; err != nil {
		return Profession{}, fmt.Errorf("failed to load employment types: %w", err)
	}

	out.TargetJobs = nonNil(out.TargetJobs)
	out.Opportunities = nonNil(out.Opportunities)
	out.EmploymentTypes = nonNil(out.EmploymentTypes)
	return out, nil
}

// SaveProfession replaces all three sets. Empty and repeated target jobs are
// dropped; opportunity and employment values outside their enumerations are
// discarded without error.
func (s *Service) SaveProfession(ctx context.Context, userID uint, in Profession) error {
	var jobs []models.UserJobOption
	for _, id := range uniqueStrings(in.TargetJobs) {
		jobs = append(jobs, models.UserJobOption{UserID: userID, JobOptionID: id})
	}

	var opportunities []models.UserOpportunity
	for _, t := range models.OpportunityTypes.Filter(in.Opportunities) {
		opportunities = append(opportunities, models.UserOpportunity{UserID: userID, Type: t})
	}

	var employment []models.UserEmploymentType
	for _, t := range models.EmploymentTypes.Filter(in.EmploymentTypes) {
		employment = append(employment, models.UserEmploymentType{UserID: userID, Type: t})
	}

	return s.writeStep(ctx, userID, "profession", StepProfession, nil, func(tx *gorm.DB) error {
		if err := replaceSet(tx, userID, jobs); err != nil {
			return err
		}
		if err := replaceSet(tx, userID, opportunities); err != nil {
			return err
		}
		return replaceSet(tx, userID, employment)
	})
}
