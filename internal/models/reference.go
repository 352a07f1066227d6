package models

import "time"

// Location is a reference area users can live in or search jobs in.
type Location struct {
	ID        string `gorm:"primaryKey"`
	Label     string `gorm:"not null"`
	SortOrder int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// JobOption is a reference job title used for target jobs and work experience.
type JobOption struct {
	ID        string `gorm:"primaryKey"`
	Label     string `gorm:"not null"`
	SortOrder int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
