package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/first-step/internal/dbtest"
	"github.com/jimdaga/first-step/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `
locations:
  - id: riga
    label: Riga
  - id: remote
    label: Remote
job_options:
  - id: cook
    label: Cook
`

func TestParseValidCatalog(t *testing.T) {
	cat, err := Parse([]byte(validCatalog))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{ID: "riga", Label: "Riga"}, {ID: "remote", Label: "Remote"}}, cat.Locations)
	assert.Equal(t, []Entry{{ID: "cook", Label: "Cook"}}, cat.JobOptions)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "locations: []\njob_options: []\nregions: []\n"},
		{"unknown entry field", "locations:\n  - id: riga\n    label: Riga\n    code: LV\njob_options: []\n"},
		{"missing label", "locations:\n  - id: riga\njob_options: []\n"},
		{"missing job options", "locations: []\n"},
		{"bad id", "locations:\n  - id: Riga City\n    label: Riga\njob_options: []\n"},
		{"duplicate id", "locations:\n  - id: riga\n    label: Riga\n  - id: riga\n    label: Again\njob_options: []\n"},
		{"not yaml", "locations: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileShippedCatalog(t *testing.T) {
	cat, err := LoadFile(filepath.Join("..", "..", "catalog", "reference.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Locations)
	assert.NotEmpty(t, cat.JobOptions)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyncIsIdempotentAndUpdatesLabels(t *testing.T) {
	db := dbtest.New(t)
	cat, err := Parse([]byte(validCatalog))
	require.NoError(t, err)

	require.NoError(t, Sync(db, cat))
	require.NoError(t, Sync(db, cat))

	var count int64
	require.NoError(t, db.Model(&models.Location{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	cat.Locations[0].Label = "Riga (centre)"
	cat.Locations[0], cat.Locations[1] = cat.Locations[1], cat.Locations[0]
	require.NoError(t, Sync(db, cat))

	entries, err := NewService(db, nil, 0).Locations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Entry{{ID: "remote", Label: "Remote"}, {ID: "riga", Label: "Riga (centre)"}}, entries)
}

type memoryCache struct {
	data   map[string][]byte
	gets   int
	getErr error
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.gets++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func TestServiceUsesCache(t *testing.T) {
	db := dbtest.New(t)
	cat, err := Parse([]byte(validCatalog))
	require.NoError(t, err)
	require.NoError(t, Sync(db, cat))

	cache := &memoryCache{data: map[string][]byte{}}
	svc := NewService(db, cache, time.Minute)

	first, err := svc.JobOptions(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cache.data, keyJobOptions)

	// Served from cache even after the table changes.
	require.NoError(t, db.Where("1 = 1").Delete(&models.JobOption{}).Error)
	second, err := svc.JobOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestServiceFallsBackWhenCacheFails(t *testing.T) {
	db := dbtest.New(t)
	cat, err := Parse([]byte(validCatalog))
	require.NoError(t, err)
	require.NoError(t, Sync(db, cat))

	cache := &memoryCache{data: map[string][]byte{}, getErr: errors.New("connection refused")}
	entries, err := NewService(db, cache, time.Minute).Locations(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t)
	cat, err := Parse([]byte(validCatalog))
	require.NoError(t, err)
	require.NoError(t, Sync(db, cat))

	svc := NewService(db, nil, 0)
	r := gin.New()
	r.GET("/api/meta/locations", LocationsHandler(svc))
	r.GET("/api/meta/job-options", JobOptionsHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/meta/locations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"options":[{"value":"riga","label":"Riga"},{"value":"remote","label":"Remote"}]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/meta/job-options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var options []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	assert.Equal(t, []map[string]string{{"id": "cook", "label": "Cook"}}, options)
}
