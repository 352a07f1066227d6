package auth

import (
	"context"
	"testing"

	"github.com/jimdaga/first-step/internal/dbtest"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterCreatesUserAtRegisteredStep(t *testing.T) {
	svc := NewService(dbtest.New(t))

	user, err := svc.Register(context.Background(), "seeker@example.com", "Abcdef1!")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, RegisteredStep, user.OnboardingStep)
	assert.NotEqual(t, "Abcdef1!", user.PasswordHash)

	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t))

	_, err := svc.Register(ctx, "", "Abcdef1!")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "a@example.com", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "a@example.com", "abcdefgh")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, "a@example.com", "Abcdef1!")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@example.com", "Another1!")
	assert.ErrorIs(t, err, ErrUserExists)

	// The existing-email check runs before the password policy.
	_, err = svc.Register(ctx, "a@example.com", "weak")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t))

	_, err := svc.Register(ctx, "login@example.com", "Abcdef1!")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "login@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)

	_, err = svc.Authenticate(ctx, "login@example.com", "Wrong1!xx")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "Abcdef1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsOAuthOnlyAccount(t *testing.T) {
	db := dbtest.New(t)
	dbtest.CreateUser(t, db, "oauth@example.com")

	_, err := NewService(db).Authenticate(context.Background(), "oauth@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLinkOAuthUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	gothUser := goth.User{
		Provider:    "google",
		UserID:      "google-123",
		Email:       "oauth@example.com",
		Name:        "OAuth User",
		AccessToken: "access-1",
	}

	user, err := LinkOAuthUser(ctx, db, gothUser)
	require.NoError(t, err)
	assert.Equal(t, RegisteredStep, user.OnboardingStep)

	gothUser.Name = "Renamed"
	gothUser.AccessToken = "access-2"
	again, err := LinkOAuthUser(ctx, db, gothUser)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var identities []models.AuthIdentity
	require.NoError(t, db.Find(&identities).Error)
	require.Len(t, identities, 1)
	assert.Equal(t, "access-2", identities[0].AccessToken)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Renamed", stored.Name)
}

func TestLinkOAuthUserRequiresEmail(t *testing.T) {
	_, err := LinkOAuthUser(context.Background(), dbtest.New(t), goth.User{UserID: "x"})
	assert.Error(t, err)
}

func TestRegisterKeepsEmailVerbatim(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t))

	user, err := svc.Register(ctx, " seeker@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, " seeker@example.com", user.Email)

	_, err = svc.Authenticate(ctx, "seeker@example.com", "Abcdef1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "   ", "")
	assert.ErrorIs(t, err, ErrMissingCredentials, "the password is still required")
	_, err = svc.Register(ctx, "   ", "weak")
	assert.ErrorIs(t, err, ErrWeakPassword, "a blank-looking email passes the required check")
}
