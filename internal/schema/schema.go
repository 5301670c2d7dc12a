// Package schema validates serialized parse results against the stable
// JSON contract consumed by downstream tooling.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const resultSchemaFile = "schemas/result.schema.json"

var (
	resultOnce sync.Once
	resultComp *jsonschema.Schema
	resultErr  error
)

// Result returns the compiled parse result schema. Compilation happens
// once; subsequent calls return the cached schema.
func Result() (*jsonschema.Schema, error) {
	resultOnce.Do(func() {
		raw, err := schemaFS.ReadFile(resultSchemaFile)
		if err != nil {
			resultErr = fmt.Errorf("read embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("result.schema.json", bytes.NewReader(raw)); err != nil {
			resultErr = fmt.Errorf("failed to load result schema: %w", err)
			return
		}
		resultComp, resultErr = compiler.Compile("result.schema.json")
	})
	return resultComp, resultErr
}

// ValidateResult checks serialized parse output against the contract
// schema. The input must be a JSON document.
func ValidateResult(data []byte) error {
	schema, err := Result()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode result JSON for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("result does not match contract schema: %w", err)
	}
	return nil
}
