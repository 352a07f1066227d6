package streams

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDropEvent marks an event that can never be processed. The consumer
// acknowledges such events instead of leaving them for redelivery.
var ErrDropEvent = errors.New("step event dropped")

// RecordStepCompletion returns a handler that stores each event as a
// StepCompletion row. Redelivered events are ignored.
func RecordStepCompletion(db *gorm.DB) func(context.Context, StepEvent) error {
	return func(ctx context.Context, ev StepEvent) error {
		if ev.EventID == "" || ev.UserID == 0 {
			return fmt.Errorf("%w: missing event_id or user_id", ErrDropEvent)
		}

		row := models.StepCompletion{
			EventID:        ev.EventID,
			UserID:         ev.UserID,
			Step:           ev.Step,
			OnboardingStep: ev.OnboardingStep,
			OccurredAt:     ev.OccurredAt,
		}

		result := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
			Create(&row)
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: user %d no longer exists", ErrDropEvent, ev.UserID)
		}
		if result.Error != nil {
			return fmt.Errorf("failed to record step completion: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			slog.Debug("Duplicate step event ignored", "event_id", ev.EventID)
			return nil
		}

		slog.Info("Step completion recorded",
			"user_id", ev.UserID,
			"step", ev.Step,
			"onboarding_step", ev.OnboardingStep,
		)
		return nil
	}
}
