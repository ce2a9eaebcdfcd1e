package scenario

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// SchemaError lists every violation found in a scenario document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "scenario does not conform to schema: " + strings.Join(e.Problems, "; ")
}

// Validate checks sc against the embedded JSON schema.
func Validate(sc *Scenario) error {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	if schemaErr != nil {
		return fmt.Errorf("load scenario schema: %w", schemaErr)
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate scenario: %w", err)
	}
	if result.Valid() {
		return nil
	}
	serr := &SchemaError{}
	for _, e := range result.Errors() {
		serr.Problems = append(serr.Problems, e.String())
	}
	return serr
}

// WriteScenario writes a scenario to a YAML file
func WriteScenario(sc *Scenario, path string) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads and validates a scenario YAML file
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := Validate(&sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}
