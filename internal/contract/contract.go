// Package contract checks rendered activity documents against the published JSON Schema.
package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "mem://contracts/activities.schema.json"

//go:embed activities.schema.json
var activitiesSchema string

// ErrContractViolation indicates a document does not match the activities schema.
var ErrContractViolation = errors.New("activities document violates contract")

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the compiled activities schema.
func Schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = jsonschema.CompileString(schemaURL, activitiesSchema)
	})
	return compiled, compileErr
}

// Validate decodes doc and checks it against the activities schema.
func Validate(doc []byte) error {
	schema, err := Schema()
	if err != nil {
		return fmt.Errorf("compile activities schema: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()

	var payload interface{}
	if err := decoder.Decode(&payload); err != nil {
		return fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrContractViolation, err)
	}

	return nil
}
