package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfileSubmission status constants
const (
	SubmissionStatusPending    = "pending"
	SubmissionStatusProcessing = "processing"
	SubmissionStatusCompleted  = "completed"
	SubmissionStatusFailed     = "failed"
)

// ProfileSubmission tracks the hand-off of a finished onboarding profile to
// the matching service.
type ProfileSubmission struct {
	gorm.Model
	UserID       uint           `gorm:"not null;index"`
	User         User           `gorm:"constraint:OnDelete:CASCADE;"`
	Status       string         `gorm:"not null;default:'pending';index"`
	Snapshot     datatypes.JSON `gorm:"type:jsonb"`
	ExternalRef  string         `gorm:"column:external_ref;not null;default:''"`
	ErrorMessage string         `gorm:"column:error_message;type:text"`
	SubmittedAt  *time.Time
}

// StepCompletion is one entry of a user's onboarding history, recorded from
// the step event stream. EventID makes replays idempotent.
type StepCompletion struct {
	ID             uint      `gorm:"primaryKey"`
	EventID        string    `gorm:"uniqueIndex;not null"`
	UserID         uint      `gorm:"not null;index"`
	Step           string    `gorm:"not null"`
	OnboardingStep int       `gorm:"not null"`
	OccurredAt     time.Time `gorm:"not null"`
	CreatedAt      time.Time
}
