package auth

import (
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/models"
)

// Session keys
const (
	sessionUserID    = "user_id"
	sessionUserEmail = "user_email"
)

// Identity is the authenticated caller resolved from the session.
type Identity struct {
	UserID uint
	Email  string
}

const identityKey = "auth.identity"

// SetIdentity stores id in the gin context for downstream handlers.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// CurrentUser returns the identity placed in the context by the session guard.
func CurrentUser(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}

// StartSession records user as logged in.
func StartSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUserEmail, user.Email)
	return session.Save()
}

// EndSession clears the session.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// SessionIdentity resolves the caller from the session cookie without
// requiring a guard to have run.
func SessionIdentity(c *gin.Context) (Identity, bool) {
	return identityFromSession(c)
}

// identityFromSession resolves the caller, accepting any integer encoding
// of the user ID the cookie codec may produce.
func identityFromSession(c *gin.Context) (Identity, bool) {
	session := sessions.Default(c)

	var userID uint
	switch v := session.Get(sessionUserID).(type) {
	case uint:
		userID = v
	case uint64:
		userID = uint(v)
	case int:
		if v > 0 {
			userID = uint(v)
		}
	case int64:
		if v > 0 {
			userID = uint(v)
		}
	case float64:
		if v > 0 {
			userID = uint(v)
		}
	case string:
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}
	if userID == 0 {
		return Identity{}, false
	}

	email, _ := session.Get(sessionUserEmail).(string)
	return Identity{UserID: userID, Email: email}, true
}
