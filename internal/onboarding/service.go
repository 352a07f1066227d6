// Package onboarding implements the job-seeker onboarding steps: reading the
// saved state of each step and replacing it with a submitted one.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/streams"
	"gorm.io/gorm"
)

// Onboarding step values written to User.OnboardingStep. Steps 1-3 happen
// before registration; 9 belongs to the CV upload handled elsewhere.
const (
	StepRegistered     = 4
	StepProfile        = 5
	StepJobLocation    = 6
	StepProfession     = 7
	StepWorkExperience = 8
	StepSalary         = 10
)

// SummaryMaxLength is the number of characters kept from a work-experience summary.
const SummaryMaxLength = 500

// ErrUserNotFound is returned when the authenticated user has no row.
var ErrUserNotFound = errors.New("user not found")

// EventPublisher receives an event after every committed step write.
type EventPublisher interface {
	PublishStepCompleted(ctx context.Context, ev streams.StepEvent) (string, error)
}

// SubmissionEnqueuer schedules delivery of a profile submission.
type SubmissionEnqueuer interface {
	EnqueueProfileSubmission(ctx context.Context, submissionID uint) error
}

// Service reads and writes onboarding state. Each write runs in a single
// transaction, so a child set is never observed half replaced.
type Service struct {
	db          *gorm.DB
	events      EventPublisher
	submissions SubmissionEnqueuer
}

// NewService creates a Service. events and submissions may be nil, in which
// case step events are not published and submissions stay pending.
func NewService(db *gorm.DB, events EventPublisher, submissions SubmissionEnqueuer) *Service {
	return &Service{db: db, events: events, submissions: submissions}
}

// CurrentStep returns the user's onboarding step counter.
func (s *Service) CurrentStep(ctx context.Context, userID uint) (int, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.OnboardingStep, nil
}

// CompletedStep is one entry of a user's onboarding history.
type CompletedStep struct {
	Step           string    `json:"step"`
	OnboardingStep int       `json:"onboardingStep"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Progress is the read model of GET /api/onboarding/progress.
type Progress struct {
	OnboardingStep int             `json:"onboardingStep"`
	CompletedSteps []CompletedStep `json:"completedSteps"`
}

// GetProgress returns the step counter and the recorded step history,
// oldest first.
func (s *Service) GetProgress(ctx context.Context, userID uint) (Progress, error) {
	step, err := s.CurrentStep(ctx, userID)
	if err != nil {
		return Progress{}, err
	}

	var rows []models.StepCompletion
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at, id").
		Find(&rows).Error; err != nil {
		return Progress{}, fmt.Errorf("failed to load step history: %w", err)
	}

	history := make([]CompletedStep, 0, len(rows))
	for _, row := range rows {
		history = append(history, CompletedStep{
			Step:           row.Step,
			OnboardingStep: row.OnboardingStep,
			CompletedAt:    row.OccurredAt,
		})
	}

	return Progress{OnboardingStep: step, CompletedSteps: history}, nil
}

func (s *Service) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// writeStep runs fn and the step update in one transaction, then publishes
// the step event. fields are written to the user row alongside the counter;
// nil values clear their column.
func (s *Service) writeStep(ctx context.Context, userID uint, step string, value int, fields map[string]interface{}, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fn != nil {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return advance(tx, userID, value, fields)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, userID, step, value)
	return nil
}

func advance(tx *gorm.DB, userID uint, value int, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["onboarding_step"] = value

	result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) publish(ctx context.Context, userID uint, step string, value int) {
	if s.events == nil {
		return
	}

	ev := streams.StepEvent{
		EventID:        uuid.NewString(),
		UserID:         userID,
		Step:           step,
		OnboardingStep: value,
		OccurredAt:     time.Now().UTC(),
	}
	if _, err := s.events.PublishStepCompleted(ctx, ev); err != nil {
		slog.Warn("Failed to publish step event",
			"user_id", userID,
			"step", step,
			"error", err,
		)
	}
}
