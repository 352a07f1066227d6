package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a job seeker going through onboarding. Profile and preference
// columns are nullable so that an unanswered question stays distinguishable
// from an empty answer.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex:idx_users_email_not_deleted,where:deleted_at IS NULL;not null"`
	PasswordHash string `gorm:"column:password_hash;not null;default:''"`
	Name         string `gorm:"not null;default:''"` // display name from OAuth

	FirstName  *string
	LastName   *string
	AgeRange   *string
	Gender     *string
	LocationID *string `gorm:"index"`

	WillingToRelocate           *bool
	HousingAssistancePreference *string
	Salary                      *string
	WorkExperienceSummary       *string `gorm:"type:varchar(500)"`

	OnboardingStep int `gorm:"not null;default:0"`
	LastLoginAt    *time.Time

	// Associations
	AuthIdentities     []AuthIdentity       `gorm:"constraint:OnDelete:CASCADE;"`
	JobSearchLocations []JobSearchLocation  `gorm:"constraint:OnDelete:CASCADE;"`
	TargetJobs         []UserJobOption      `gorm:"constraint:OnDelete:CASCADE;"`
	Opportunities      []UserOpportunity    `gorm:"constraint:OnDelete:CASCADE;"`
	EmploymentTypes    []UserEmploymentType `gorm:"constraint:OnDelete:CASCADE;"`
	WorkExperiences    []UserWorkExperience `gorm:"constraint:OnDelete:CASCADE;"`
	Submissions        []ProfileSubmission  `gorm:"constraint:OnDelete:CASCADE;"`
}
