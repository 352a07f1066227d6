package models

import "time"

// The tables below hold per-user sets. Each is keyed on (user_id, target) so
// a user can never reference the same target twice within one relation.

// JobSearchLocation is an area the user wants to find a job in.
type JobSearchLocation struct {
	UserID     uint   `gorm:"primaryKey;autoIncrement:false"`
	LocationID string `gorm:"primaryKey"`
	CreatedAt  time.Time
}

// UserJobOption is a target job the user is looking for.
type UserJobOption struct {
	UserID      uint   `gorm:"primaryKey;autoIncrement:false"`
	JobOptionID string `gorm:"primaryKey"`
	CreatedAt   time.Time
}

// UserOpportunity is an opportunity type (see OpportunityTypes) the user is open to.
type UserOpportunity struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Type      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// UserEmploymentType is an accepted employment type (see EmploymentTypes).
type UserEmploymentType struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Type      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// UserWorkExperience records how long the user has worked in a position.
// Position keeps the order the entries were submitted in.
type UserWorkExperience struct {
	UserID      uint   `gorm:"primaryKey;autoIncrement:false"`
	JobOptionID string `gorm:"primaryKey"`
	YearsRange  string `gorm:"not null"`
	Position    int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
}
