package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// configSchema constrains the raw config tree before it is unmarshaled, so
// a mistyped key or out-of-range threshold fails with a schema error
// instead of silently falling back to a default.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "search": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "dirs": {"type": "array", "items": {"type": "string"}}
      }
    },
    "exclude": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "patterns": {"type": "array", "items": {"type": "string"}},
        "dirs": {"type": "array", "items": {"type": "string"}},
        "gitignore": {"type": "boolean"}
      }
    },
    "plan": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "min_confidence": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": {"enum": ["text", "json", "markdown", "toon", "yaml"]},
        "color": {"type": "boolean"},
        "verbose": {"type": "boolean"}
      }
    },
    "jobs": {"type": "integer", "minimum": 0}
  }
}`

// validate checks the raw koanf tree against the embedded schema.
func validate(raw map[string]any) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(configSchema))
	if err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("incdep://config.schema.json", doc); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	schema, err := compiler.Compile("incdep://config.schema.json")
	if err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	// Round-trip through JSON so numbers and nested maps match what the
	// validator expects.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
