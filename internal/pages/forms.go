package pages

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/onboarding"
)

// minPositionRows is how many position rows the work-experience page shows
// at least; one blank row is always added after the saved ones.
const minPositionRows = 3

// optional returns nil for a blank form value.
func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// exclusive collapses values to just sole when sole was picked.
func exclusive(values []string, sole string) []string {
	for _, v := range values {
		if v == sole {
			return []string{sole}
		}
	}
	return values
}

// positionsFromForm pairs the jobOptionId and yearsRange rows, dropping any
// row where either select was left blank.
func positionsFromForm(c *gin.Context) []onboarding.Position {
	ids := c.PostFormArray("jobOptionId")
	ranges := c.PostFormArray("yearsRange")

	n := len(ids)
	if len(ranges) < n {
		n = len(ranges)
	}

	out := make([]onboarding.Position, 0, n)
	for i := 0; i < n; i++ {
		id := strings.TrimSpace(ids[i])
		years := strings.TrimSpace(ranges[i])
		if id == "" || years == "" {
			continue
		}
		out = append(out, onboarding.Position{JobOptionID: id, YearsRange: years})
	}
	return out
}

// positionRows pads saved positions with blank rows for the form.
func positionRows(saved []onboarding.Position) []onboarding.Position {
	n := len(saved) + 1
	if n < minPositionRows {
		n = minPositionRows
	}
	rows := make([]onboarding.Position, n)
	copy(rows, saved)
	return rows
}

func relocateAnswer(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "yes"
	default:
		return "no"
	}
}
