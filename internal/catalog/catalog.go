// Package catalog serves the reference data used by the onboarding forms:
// locations and job options.
package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one reference item.
type Entry struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Catalog is the parsed reference file.
type Catalog struct {
	Locations  []Entry `yaml:"locations" json:"locations"`
	JobOptions []Entry `yaml:"job_options" json:"job_options"`
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog strictly: unknown keys are rejected, the document
// must match the embedded JSON Schema and IDs must be unique per kind.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	if err := checkUnique("locations", cat.Locations); err != nil {
		return nil, err
	}
	if err := checkUnique("job_options", cat.JobOptions); err != nil {
		return nil, err
	}

	return &cat, nil
}

func checkUnique(kind string, entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("catalog %s: duplicate id %q", kind, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}
