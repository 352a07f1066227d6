package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/first-step/internal/auth"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"gorm.io/gorm"
)

// Dev account created by SeedDevData.
const (
	DevUserEmail    = "dev@firststep.local"
	DevUserPassword = "Dev-password-1"
)

// SeedDevData registers a development job seeker who has finished the
// profile, job-location and profession steps. Reference data must already be
// synced. Idempotent: skips if the dev user exists.
func SeedDevData(ctx context.Context, db *gorm.DB) error {
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", DevUserEmail).First(&existing).Error
	if err == nil {
		slog.Info("Seed data already exists, skipping", "email", DevUserEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up dev user: %w", err)
	}

	user, err := auth.NewService(db).Register(ctx, DevUserEmail, DevUserPassword)
	if err != nil {
		return fmt.Errorf("failed to register dev user: %w", err)
	}

	steps := onboarding.NewService(db, nil, nil)

	if err := steps.SaveProfile(ctx, user.ID, onboarding.Profile{
		FirstName:  ptr("Dev"),
		LastName:   ptr("Seeker"),
		AgeRange:   ptr("AGE_25_29"),
		Gender:     ptr("prefer_not_to_say"),
		LocationID: ptr("riga"),
	}); err != nil {
		return fmt.Errorf("failed to seed profile: %w", err)
	}

	if err := steps.SaveJobLocation(ctx, user.ID, onboarding.JobLocationInput{
		JobSearchLocationIDs:        []string{"riga", "jurmala"},
		WillingToRelocate:           "yes",
		HousingAssistancePreference: ptr("CONSIDERING_OPTIONS"),
	}); err != nil {
		return fmt.Errorf("failed to seed job location: %w", err)
	}

	if err := steps.SaveProfession(ctx, user.ID, onboarding.Profession{
		TargetJobs:      []string{"cook", "kitchen-assistant"},
		Opportunities:   []string{"ENGLISH_CLASSES"},
		EmploymentTypes: []string{"FULL_TIME"},
	}); err != nil {
		return fmt.Errorf("failed to seed profession: %w", err)
	}

	slog.Info("Seeded dev data", "email", DevUserEmail, "user_id", user.ID)
	return nil
}

func ptr(s string) *string { return &s }
