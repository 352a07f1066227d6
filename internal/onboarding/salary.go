package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
)

// Salary is the read model of the salary step.
type Salary struct {
	SalaryExpectation *string `json:"salaryExpectation"`
}

// GetSalary returns the saved salary expectation.
func (s *Service) GetSalary(ctx context.Context, userID uint) (Salary, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return Salary{}, err
	}
	return Salary{SalaryExpectation: user.Salary}, nil
}

// SaveSalary stores the expectation verbatim and opens a profile submission
// for the matching service. A submission that is still pending or processing
// is reused, so saving the step again does not deliver the profile twice.
// The submission is enqueued after commit; if that fails it stays pending
// until the sweep picks it up.
func (s *Service) SaveSalary(ctx context.Context, userID uint, expectation *string) error {
	var submission models.ProfileSubmission

	err := s.writeStep(ctx, userID, "salary", StepSalary, map[string]interface{}{
		"salary": expectation,
	}, func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND status IN ?", userID, []string{
			models.SubmissionStatusPending,
			models.SubmissionStatusProcessing,
		}).Order("id DESC").First(&submission).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up open profile submission: %w", err)
		}

		submission = models.ProfileSubmission{
			UserID: userID,
			Status: models.SubmissionStatusPending,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("failed to create profile submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.submissions == nil {
		slog.Info("Task queue not configured, profile submission left pending", "submission_id", submission.ID)
		return nil
	}
	if err := s.submissions.EnqueueProfileSubmission(ctx, submission.ID); err != nil {
		slog.Warn("Failed to enqueue profile submission",
			"submission_id", submission.ID,
			"user_id", userID,
			"error", err,
		)
	}
	return nil
}
