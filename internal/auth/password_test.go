package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"meets policy", "Abcdef1!", true},
		{"underscore counts as symbol", "Abcdef1_", true},
		{"non-ascii letter counts as symbol", "Abcdef1é", true},
		{"lowercase only", "abcdefgh", false},
		{"too short", "Ab1!", false},
		{"no digit", "Abcdefg!", false},
		{"no uppercase", "abcdef1!", false},
		{"no lowercase", "ABCDEF1!", false},
		{"no symbol", "Abcdefg1", false},
		{"max length", "Aa1!" + strings.Repeat("x", 124), true},
		{"over max length", "Aa1!" + strings.Repeat("x", 125), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}
