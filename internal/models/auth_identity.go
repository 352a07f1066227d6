package models

import (
	"time"

	"github.com/jimdaga/first-step/internal/crypto"
	"gorm.io/gorm"
)

var encryptor *crypto.TokenEncryptor

// InitEncryption initializes the token encryptor for the models package.
// Without it OAuth tokens are stored as given.
func InitEncryption(encryptionKey string) error {
	var err error
	encryptor, err = crypto.NewTokenEncryptor(encryptionKey)
	return err
}

// AuthIdentity links a user to an external OAuth login. Tokens are
// encrypted at rest.
type AuthIdentity struct {
	gorm.Model
	UserID         uint   `gorm:"not null;index"`
	User           User   `gorm:"constraint:OnDelete:CASCADE;"`
	Provider       string `gorm:"not null;uniqueIndex:idx_auth_identities_provider_user,where:deleted_at IS NULL"`
	ProviderUserID string `gorm:"not null;uniqueIndex:idx_auth_identities_provider_user,where:deleted_at IS NULL"`
	AccessToken    string `gorm:"type:text"`
	RefreshToken   string `gorm:"type:text"`
	TokenExpiry    *time.Time
}

// BeforeSave encrypts tokens. GCM uses a random nonce, so the stored value
// changes on every save even when the token does not.
func (a *AuthIdentity) BeforeSave(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}
	return a.mapTokens(encryptor.Encrypt)
}

// AfterFind decrypts tokens loaded from the database.
func (a *AuthIdentity) AfterFind(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}
	return a.mapTokens(encryptor.Decrypt)
}

func (a *AuthIdentity) mapTokens(fn func(string) (string, error)) error {
	for _, token := range []*string{&a.AccessToken, &a.RefreshToken} {
		if *token == "" {
			continue
		}
		out, err := fn(*token)
		if err != nil {
			return err
		}
		*token = out
	}
	return nil
}
