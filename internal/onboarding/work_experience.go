package onboarding

import (
	"context"
	"fmt"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
)

// Position is time spent in one job option.
type Position struct {
	JobOptionID string `json:"jobOptionId"`
	YearsRange  string `json:"yearsRange"`
}

// WorkExperience is the read model of the work-experience step.
type WorkExperience struct {
	Summary   string     `json:"summary"`
	Positions []Position `json:"positions"`
}

// WorkExperienceInput is a submitted work-experience step. A nil Summary
// clears the stored one.
type WorkExperienceInput struct {
	Positions []Position
	Summary   *string
}

// GetWorkExperience returns the saved summary and positions in submission order.
func (s *Service) GetWorkExperience(ctx context.Context, userID uint) (WorkExperience, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return WorkExperience{}, err
	}

	var rows []models.UserWorkExperience
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position, job_option_id").
		Find(&rows).Error; err != nil {
		return WorkExperience{}, fmt.Errorf("failed to load work experience: %w", err)
	}

	out := WorkExperience{Positions: make([]Position, 0, len(rows))}
	if user.WorkExperienceSummary != nil {
		out.Summary = *user.WorkExperienceSummary
	}
	for _, row := range rows {
		out.Positions = append(out.Positions, Position{JobOptionID: row.JobOptionID, YearsRange: row.YearsRange})
	}
	return out, nil
}

// SaveWorkExperience replaces the user's positions and summary. Positions
// without a job option or with an unknown years range are dropped; when a
// job option repeats, the last years range wins. The summary is cut to
// SummaryMaxLength characters.
func (s *Service) SaveWorkExperience(ctx context.Context, userID uint, in WorkExperienceInput) error {
	positions := dedupePositions(in.Positions)
	rows := make([]models.UserWorkExperience, 0, len(positions))
	for i, p := range positions {
		rows = append(rows, models.UserWorkExperience{
			UserID:      userID,
			JobOptionID: p.JobOptionID,
			YearsRange:  p.YearsRange,
			Position:    i,
		})
	}

	var summary *string
	if in.Summary != nil {
		truncated := truncate(*in.Summary, SummaryMaxLength)
		summary = &truncated
	}

	fields := map[string]interface{}{"work_experience_summary": summary}
	return s.writeStep(ctx, userID, "work-experience", StepWorkExperience, fields, func(tx *gorm.DB) error {
		return replaceSet(tx, userID, rows)
	})
}

// dedupePositions keeps valid positions, one per job option. A repeated job
// option keeps the slot of its first occurrence and the value of its last.
func dedupePositions(in []Position) []Position {
	index := make(map[string]int, len(in))
	out := make([]Position, 0, len(in))
	for _, p := range in {
		if p.JobOptionID == "" || !models.ExperienceRanges.Contains(p.YearsRange) {
			continue
		}
		if i, ok := index[p.JobOptionID]; ok {
			out[i] = p
			continue
		}
		index[p.JobOptionID] = len(out)
		out = append(out, p)
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
