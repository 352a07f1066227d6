package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTimezoneUTC(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "adds time zone",
			in:   "postgres://app:pw@db:5432/onboarding?sslmode=disable",
			want: "postgres://app:pw@db:5432/onboarding?TimeZone=UTC&sslmode=disable",
		},
		{
			name: "keeps explicit time zone",
			in:   "postgres://app:pw@db:5432/onboarding?TimeZone=Europe%2FRiga",
			want: "postgres://app:pw@db:5432/onboarding?TimeZone=Europe%2FRiga",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ensureTimezoneUTC(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactedHost(t *testing.T) {
	assert.Equal(t, "db:5432", redactedHost("postgres://app:secret@db:5432/onboarding"))
}

func TestInitRequiresURL(t *testing.T) {
	_, err := Init("", DefaultPool)
	assert.Error(t, err)
}
