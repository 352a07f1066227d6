package auth

import "unicode/utf8"

// Password length bounds, in characters.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// ValidPassword reports whether password satisfies the complexity policy:
// 8-128 characters with at least one ASCII lowercase letter, one ASCII
// uppercase letter, one digit and one character that is not an ASCII
// letter or digit.
func ValidPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
