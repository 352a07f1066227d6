package onboarding

import (
	"fmt"

	"gorm.io/gorm"
)

// replaceSet deletes every row of T owned by userID and inserts rows in
// their place. Callers run it inside the step transaction.
func replaceSet[T any](tx *gorm.DB, userID uint, rows []T) error {
	var zero T
	if err := tx.Where("user_id = ?", userID).Delete(&zero).Error; err != nil {
		return fmt.Errorf("failed to delete %T rows: %w", zero, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert %T rows: %w", zero, err)
	}
	return nil
}

// uniqueStrings drops empty strings and repeats, keeping first-occurrence order.
func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
