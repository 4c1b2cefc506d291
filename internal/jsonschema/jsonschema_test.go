// SPDX-License-Identifier: Apache-2.0

package jsonschema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-codin/dwh-graph-db-migrater/internal/jsonschema"
)

func TestValidateMigrationIn(t *testing.T) {
	tests := []struct {
		name       string
		envelope   string
		shouldPass bool
	}{
		{
			name:       "minimal valid envelope",
			envelope:   `{"name": "sync customers", "conn_string": "postgresql://source"}`,
			shouldPass: true,
		},
		{
			name: "full envelope with migration_pattern and correlation fields",
			envelope: `{
				"name": "sync customers",
				"conn_string": "postgresql://source",
				"object_name": "customer",
				"object_db_path": "source.public.customer",
				"migration_pattern": {"pk_pattern": "hash_key", "fk_pattern": "^(?:id)?(\\w*)_hash_fkey$"},
				"source_guid": "abc-123",
				"sync_type": "incremental"
			}`,
			shouldPass: true,
		},
		{
			name:       "missing required name",
			envelope:   `{"conn_string": "postgresql://source"}`,
			shouldPass: false,
		},
		{
			name:       "missing required conn_string",
			envelope:   `{"name": "sync customers"}`,
			shouldPass: false,
		},
		{
			name:       "empty name fails minLength",
			envelope:   `{"name": "", "conn_string": "postgresql://source"}`,
			shouldPass: false,
		},
		{
			name:       "unrecognized top-level field rejected",
			envelope:   `{"name": "sync customers", "conn_string": "postgresql://source", "unexpected": true}`,
			shouldPass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			require.NoError(t, json.Unmarshal([]byte(tt.envelope), &v))

			err := jsonschema.ValidateMigrationIn(v)
			if tt.shouldPass {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
