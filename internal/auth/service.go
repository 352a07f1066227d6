package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimdaga/first-step/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is the work factor used for password hashes.
const BcryptCost = 10

// RegisteredStep is the onboarding step a new account starts at; steps
// 1-3 are the registration itself.
const RegisteredStep = 4

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrUserExists         = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password does not meet complexity requirements")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service registers and authenticates password accounts.
type Service struct {
	db *gorm.DB
}

// NewService creates a new Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates a password account. Checks run in order: required
// fields, existing email, password policy.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	if !ValidPassword(password) {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   string(hash),
		OnboardingStep: RegisteredStep,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks a password login and stamps the last login time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// OAuth-only accounts have no hash.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now

	return &user, nil
}
