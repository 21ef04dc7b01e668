package processfile

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed process.schema.json
var schemaJSON []byte

const schemaURL = "process.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// processSchema compiles the embedded schema once.
func processSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ValidateDocument checks a generic JSON document (as produced by
// jsonschema.UnmarshalJSON) against the process schema.
func ValidateDocument(doc any) error {
	s, err := processSchema()
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

// Schema returns the embedded JSON Schema text.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}
