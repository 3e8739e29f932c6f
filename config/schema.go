package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const configSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"images_dir": {"type": "string"},
		"labels_dir": {"type": "string"},
		"train_ratio": {"type": "number", "minimum": 0, "maximum": 1},
		"seed": {"type": "integer"},
		"ignore_ext_case": {"type": "boolean"},
		"log_level": {"type": "string", "enum": ["debug", "info", "warn", "warning", "error", "silent", "off"]},
		"events_file": {"type": "string"},
		"watch": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"enabled": {"type": "boolean"},
				"debounce_ms": {"type": "integer", "minimum": 1},
				"max_wait_ms": {"type": "integer", "minimum": 1}
			}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(configSchema)

// SchemaError lists every violation found in a configuration document.
type SchemaError struct {
	Path   string
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("config: %s does not match schema:\n%s", e.Path, strings.Join(e.Errors, "\n"))
}

// validateDocument checks a decoded YAML document against configSchema.
func validateDocument(path string, doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("config: validate %q: %w", path, err)
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{Path: path}
	for _, e := range result.Errors() {
		se.Errors = append(se.Errors, e.String())
	}
	return se
}
