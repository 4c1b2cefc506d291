// SPDX-License-Identifier: Apache-2.0

// Package jsonschema compiles and exposes the MigrationIn request schema
// once per process, mirroring pgroll's internal/jsonschema but against
// the migration-request envelope instead of a migration file.
package jsonschema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// migrationInSchema is the JSON Schema for the request envelope
// consumed on the `task` routing key, matching the recognized fields
// table.
const migrationInSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "conn_string"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "conn_string": {"type": "string", "minLength": 1},
    "object_name": {"type": "string"},
    "object_db_path": {"type": "string"},
    "migration_pattern": {
      "type": "object",
      "properties": {
        "pk_pattern": {"type": "string"},
        "fk_pattern": {"type": "string"},
        "fk_table": {"type": "string"}
      },
      "additionalProperties": false
    },
    "source_guid": {"type": "string"},
    "source_name": {"type": "string"},
    "object_guid": {"type": "string"},
    "sync_type": {"type": "string"},
    "identity_id": {"type": "string"},
    "model": {"type": "string"}
  },
  "additionalProperties": false
}`

var (
	once       sync.Once
	compiled   *jsonschema.Schema
	compileErr error
)

// MigrationInSchema returns the compiled MigrationIn schema, compiling
// it exactly once per process.
func MigrationInSchema() (*jsonschema.Schema, error) {
	once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(migrationInSchema))
		if err != nil {
			compileErr = fmt.Errorf("parsing migration_in schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("migration_in.json", doc); err != nil {
			compileErr = fmt.Errorf("adding migration_in schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("migration_in.json")
	})
	return compiled, compileErr
}

// ValidateMigrationIn validates v (typically the result of
// json.Unmarshal into a map[string]any) against the MigrationIn schema.
func ValidateMigrationIn(v any) error {
	sch, err := MigrationInSchema()
	if err != nil {
		return err
	}
	return sch.Validate(v)
}
