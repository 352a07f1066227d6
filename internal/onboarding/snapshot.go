package onboarding

import (
	"context"
	"time"
)

// Snapshot is everything a user entered during onboarding, as sent to the
// matching service.
type Snapshot struct {
	UserID         uint           `json:"userId"`
	Email          string         `json:"email"`
	OnboardingStep int            `json:"onboardingStep"`
	Profile        Profile        `json:"profile"`
	JobLocation    JobLocation    `json:"jobLocation"`
	Profession     Profession     `json:"profession"`
	WorkExperience WorkExperience `json:"workExperience"`
	Salary         Salary         `json:"salary"`
	TakenAt        time.Time      `json:"takenAt"`
}

// Snapshot collects the current state of every step for userID.
func (s *Service) Snapshot(ctx context.Context, userID uint) (*Snapshot, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		UserID:         user.ID,
		Email:          user.Email,
		OnboardingStep: user.OnboardingStep,
		TakenAt:        time.Now().UTC(),
	}

	if snap.Profile, err = s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	if snap.JobLocation, err = s.GetJobLocation(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Profession, err = s.GetProfession(ctx, userID); err != nil {
		return nil, err
	}
	if snap.WorkExperience, err = s.GetWorkExperience(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Salary, err = s.GetSalary(ctx, userID); err != nil {
		return nil, err
	}
	return snap, nil
}
