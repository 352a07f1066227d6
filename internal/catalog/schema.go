package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.NewCompiler().Compile(schemaJSON)
	})
	return compiledSchema, schemaErr
}

// validateDocument checks a decoded catalog against the embedded schema.
func validateDocument(doc map[string]interface{}) error {
	schema, err := catalogSchema()
	if err != nil {
		return fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	result := schema.Validate(doc)
	if result.IsValid() {
		return nil
	}

	var messages []string
	for field, evalErr := range result.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
	}
	sort.Strings(messages)
	return fmt.Errorf("catalog validation failed: %s", strings.Join(messages, "; "))
}
