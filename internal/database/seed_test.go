package database

import (
	"context"
	"testing"

	"github.com/jimdaga/first-step/internal/dbtest"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/jimdaga/first-step/internal/onboarding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDevData(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	require.NoError(t, SeedDevData(ctx, db))
	require.NoError(t, SeedDevData(ctx, db), "second run should be a no-op")

	var users []models.User
	require.NoError(t, db.Where("email = ?", DevUserEmail).Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, onboarding.StepProfession, users[0].OnboardingStep)

	prof, err := onboarding.NewService(db, nil, nil).GetProfession(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cook", "kitchen-assistant"}, prof.TargetJobs)
}
