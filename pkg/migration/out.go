// SPDX-License-Identifier: Apache-2.0

package migration

// MigrationOut is the read-only rendering of a persisted Migration
// returned over HTTP and on the result routing key: per-schema table
// names bucketed by create/alter/delete, without the field-level detail
// only the Classifier/Applier need.
type MigrationOut struct {
	Name    string          `json:"name"`
	Schemas []SchemaOutEntry `json:"schemas"`
}

// SchemaOutEntry buckets one Schema's Table diff records by their
// three-state interpretation (see Table's doc comment).
type SchemaOutEntry struct {
	Name           string   `json:"name"`
	TablesToCreate []string `json:"tables_to_create"`
	TablesToAlter  []string `json:"tables_to_alter"`
	TablesToDelete []string `json:"tables_to_delete"`
}

// Out renders m into its read-only MigrationOut form.
func (m *Migration) Out() MigrationOut {
	out := MigrationOut{Name: m.Name}
	for _, schema := range m.Schemas {
		entry := SchemaOutEntry{Name: schema.Name}
		for _, table := range schema.Tables {
			switch {
			case table.OldName == "" && table.NewName != "":
				entry.TablesToCreate = append(entry.TablesToCreate, table.NewName)
			case table.NewName == "" && table.OldName != "":
				entry.TablesToDelete = append(entry.TablesToDelete, table.OldName)
			default:
				entry.TablesToAlter = append(entry.TablesToAlter, table.NewName)
			}
		}
		out.Schemas = append(out.Schemas, entry)
	}
	return out
}
