// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/metadata"
)

func TestDiffCreate(t *testing.T) {
	source := map[string]metadata.Table{
		"customer_hub": {Name: "customer_hub", DB: "public", FieldToType: map[string]string{"hash_key": "str"}},
	}
	graph := map[string]metadata.Table{}

	schema := Diff(source, graph)

	require.Len(t, schema.Tables, 1)
	table := schema.Tables[0]
	assert.Equal(t, "", table.OldName)
	assert.Equal(t, "customer_hub", table.NewName)
	require.Len(t, table.Fields, 1)
	assert.Equal(t, "hash_key", table.Fields[0].NewName)
	assert.Equal(t, "str", table.Fields[0].NewType)
}

func TestDiffDelete(t *testing.T) {
	source := map[string]metadata.Table{}
	graph := map[string]metadata.Table{
		"stale_hub": {Name: "stale_hub", DB: "public", FieldToType: map[string]string{"hash_key": "str"}},
	}

	schema := Diff(source, graph)

	require.Len(t, schema.Tables, 1)
	assert.Equal(t, "stale_hub", schema.Tables[0].OldName)
	assert.Equal(t, "", schema.Tables[0].NewName)
}

func TestDiffAlterFieldTypeChange(t *testing.T) {
	source := map[string]metadata.Table{
		"customer_sat": {Name: "customer_sat", DB: "public", FieldToType: map[string]string{"hash_key": "str", "email": "str"}},
	}
	graph := map[string]metadata.Table{
		"customer_sat": {Name: "customer_sat", DB: "public", FieldToType: map[string]string{"hash_key": "str", "email": "int"}},
	}

	schema := Diff(source, graph)

	require.Len(t, schema.Tables, 1)
	table := schema.Tables[0]
	assert.Equal(t, "customer_sat", table.OldName)
	assert.Equal(t, "customer_sat", table.NewName)
	require.Len(t, table.Fields, 1)
	assert.Equal(t, "email", table.Fields[0].NewName)
	assert.Equal(t, "int", table.Fields[0].OldType)
	assert.Equal(t, "str", table.Fields[0].NewType)
}

func TestDiffAlterFieldAddAndDrop(t *testing.T) {
	source := map[string]metadata.Table{
		"customer_sat": {Name: "customer_sat", DB: "public", FieldToType: map[string]string{"hash_key": "str", "phone": "str"}},
	}
	graph := map[string]metadata.Table{
		"customer_sat": {Name: "customer_sat", DB: "public", FieldToType: map[string]string{"hash_key": "str", "email": "str"}},
	}

	schema := Diff(source, graph)

	require.Len(t, schema.Tables, 1)
	fields := schema.Tables[0].Fields
	require.Len(t, fields, 2)

	var created, deleted bool
	for _, f := range fields {
		if f.NewName == "phone" && f.OldName == "" {
			created = true
		}
		if f.OldName == "email" && f.NewName == "" {
			deleted = true
		}
	}
	assert.True(t, created, "expected phone to be a created field")
	assert.True(t, deleted, "expected email to be a deleted field")
}

func TestDiffNoChange(t *testing.T) {
	table := metadata.Table{Name: "customer_hub", DB: "public", FieldToType: map[string]string{"hash_key": "str"}}
	source := map[string]metadata.Table{"customer_hub": table}
	graph := map[string]metadata.Table{"customer_hub": table}

	schema := Diff(source, graph)

	assert.Empty(t, schema.Tables)
}
