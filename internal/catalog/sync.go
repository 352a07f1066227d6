package catalog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
)

// Sync upserts every catalog entry into its table. Sort order follows the
// file order. Entries removed from the file are left in place because
// users may still reference them.
func Sync(db *gorm.DB, cat *Catalog) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, e := range cat.Locations {
			row := models.Location{ID: e.ID, Label: e.Label, SortOrder: i}
			if err := upsert(tx, e.ID, &row, map[string]interface{}{"label": e.Label, "sort_order": i}); err != nil {
				return fmt.Errorf("failed to sync location %s: %w", e.ID, err)
			}
		}
		for i, e := range cat.JobOptions {
			row := models.JobOption{ID: e.ID, Label: e.Label, SortOrder: i}
			if err := upsert(tx, e.ID, &row, map[string]interface{}{"label": e.Label, "sort_order": i}); err != nil {
				return fmt.Errorf("failed to sync job option %s: %w", e.ID, err)
			}
		}

		slog.Info("Reference catalog synced",
			"locations", len(cat.Locations),
			"job_options", len(cat.JobOptions),
		)
		return nil
	})
}

// upsert creates row if no record with id exists, otherwise applies updates.
func upsert[T any](tx *gorm.DB, id string, row *T, updates map[string]interface{}) error {
	var existing T
	result := tx.Where("id = ?", id).Take(&existing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return tx.Create(row).Error
	} else if result.Error != nil {
		return result.Error
	}

	return tx.Model(&existing).Updates(updates).Error
}
