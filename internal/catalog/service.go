package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jimdaga/first-step/internal/models"
	"gorm.io/gorm"
)

const (
	keyLocations  = "locations"
	keyJobOptions = "job_options"
)

// Service reads reference lists from the database, through the cache when
// one is configured. Cache failures fall back to the database.
type Service struct {
	db    *gorm.DB
	cache Cache
	ttl   time.Duration
}

// NewService creates a Service. cache may be nil.
func NewService(db *gorm.DB, cache Cache, ttl time.Duration) *Service {
	return &Service{db: db, cache: cache, ttl: ttl}
}

// Locations returns every location in sort order.
func (s *Service) Locations(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, keyLocations, &models.Location{})
}

// JobOptions returns every job option in sort order.
func (s *Service) JobOptions(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, keyJobOptions, &models.JobOption{})
}

func (s *Service) list(ctx context.Context, key string, model interface{}) ([]Entry, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err != nil {
			slog.Warn("Catalog cache read failed", "key", key, "error", err)
		} else if ok {
			var entries []Entry
			if err := json.Unmarshal(data, &entries); err == nil {
				return entries, nil
			}
			slog.Warn("Discarding corrupt catalog cache entry", "key", key)
		}
	}

	entries := []Entry{}
	if err := s.db.WithContext(ctx).
		Model(model).
		Select("id, label").
		Order("sort_order, id").
		Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				slog.Warn("Catalog cache write failed", "key", key, "error", err)
			}
		}
	}
	return entries, nil
}

// LabelOptions converts entries to the {label, value} shape used by selects.
func LabelOptions(entries []Entry) []models.Option {
	out := make([]models.Option, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.Option{Value: e.ID, Label: e.Label})
	}
	return out
}
