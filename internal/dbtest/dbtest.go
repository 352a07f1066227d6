// Package dbtest opens throwaway SQLite databases carrying the application
// schema, for package tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns an in-memory database migrated with every model. The pool is
// limited to one connection because each SQLite memory connection is its own
// database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.AuthIdentity{},
		&models.JobSearchLocation{},
		&models.UserJobOption{},
		&models.UserOpportunity{},
		&models.UserEmploymentType{},
		&models.UserWorkExperience{},
		&models.Location{},
		&models.JobOption{},
		&models.ProfileSubmission{},
		&models.StepCompletion{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	return db
}

// CreateUser inserts a user at the registration step and returns it.
func CreateUser(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, OnboardingStep: 4}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
