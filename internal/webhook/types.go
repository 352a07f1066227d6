// Package webhook delivers completed onboarding profiles to the matching service.
package webhook

import (
	"encoding/json"
	"time"
)

// SubmissionRequest is the body posted to the matching service.
type SubmissionRequest struct {
	SubmissionID uint            `json:"submission_id"`
	UserID       uint            `json:"user_id"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Profile      json.RawMessage `json:"profile"`
}

// SubmissionReceipt is the matching service's acknowledgement.
type SubmissionReceipt struct {
	Accepted    bool   `json:"accepted"`
	ReferenceID string `json:"reference_id"`
}
