package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumFilter(t *testing.T) {
	got := OpportunityTypes.Filter([]string{"COURSES", "BOGUS", "courses", "INTERNSHIPS", "COURSES"})
	assert.Equal(t, []string{"COURSES", "INTERNSHIPS"}, got)

	assert.Empty(t, EmploymentTypes.Filter(nil))
	assert.NotNil(t, EmploymentTypes.Filter(nil))
}

func TestEnumLabel(t *testing.T) {
	assert.Equal(t, "10+ years", ExperienceRanges.Label("YEARS_10_PLUS"))
	assert.Equal(t, "UNKNOWN", ExperienceRanges.Label("UNKNOWN"))
}

func TestEnumOptionsIsCopy(t *testing.T) {
	opts := AgeRanges.Options()
	opts[0].Label = "changed"

	assert.Equal(t, "18-24", AgeRanges.Label("AGE_18_24"))
	assert.Len(t, AgeRanges.Options(), 7)
}
