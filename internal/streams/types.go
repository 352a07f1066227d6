// Package streams carries onboarding step events over Redis Streams.
package streams

import "time"

// Stream name constants
const (
	StreamOnboardingSteps = "onboarding:steps"
)

// Consumer group constants
const (
	GroupStepHistory = "step-history"
)

// Schema version constant
const (
	SchemaVersionV1 = "v1"
)

// StepEvent is published every time a user saves an onboarding step.
type StepEvent struct {
	EventID        string    `json:"event_id"`
	UserID         uint      `json:"user_id"`
	Step           string    `json:"step"`
	OnboardingStep int       `json:"onboarding_step"`
	OccurredAt     time.Time `json:"occurred_at"`
}
