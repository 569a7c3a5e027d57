// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	schemaErr      error
)

// SchemaID is the $id of the descriptor JSON Schema.
const SchemaID = "https://holomush.dev/schemas/module.schema.json"

// GenerateSchema generates a JSON Schema from the Descriptor struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&Descriptor{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Module Descriptor"
	schema.Description = "Schema for module descriptor files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// descriptorKeys are the descriptor fields checked by the schema. Other keys
// are ignored and never reach the validator.
var descriptorKeys = []string{"name", "protected", "providers", "files", "installer", "uninstaller"}

// ValidateSchema validates descriptor data against the descriptor JSON Schema.
// Null values are treated as absent and unknown keys are ignored.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("descriptor data is empty")
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	var lookup func(string) (any, bool)
	switch obj := raw.(type) {
	case map[string]any:
		lookup = func(k string) (any, bool) {
			v, ok := obj[k]
			return v, ok
		}
	case map[any]any:
		// Mappings with non-string keys decode this way.
		lookup = func(k string) (any, bool) {
			v, ok := obj[k]
			return v, ok
		}
	default:
		return fmt.Errorf("descriptor must be an object, got %T", raw)
	}
	known := make(map[string]any, len(descriptorKeys))
	for _, k := range descriptorKeys {
		if v, ok := lookup(k); ok && v != nil {
			known[k] = v
		}
	}

	// Round-trip through JSON so the validator sees JSON-native types.
	encoded, err := json.Marshal(known)
	if err != nil {
		return fmt.Errorf("descriptor is not representable as JSON: %w", err)
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("descriptor is not representable as JSON: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCompiled, schemaErr = compileSchema()
	})
	return schemaCompiled, schemaErr
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	schemaData, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("module.schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	sch, err := c.Compile("module.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// FormatSchemaError formats a schema validation error for display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "schema validation failed: ")
}
