// SPDX-License-Identifier: Apache-2.0

// Package differ computes the set-algebra diff between a source
// snapshot and a graph snapshot: which tables are new, which are gone,
// and which persist with field-level changes. It performs no I/O; its
// inputs are already-fetched snapshots from pkg/metadata and
// pkg/graphstore, mirroring crud/migration.py's pure diff helpers.
package differ

import (
	"github.com/co-codin/dwh-graph-db-migrater/pkg/metadata"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

// Diff computes the schema-diff set algebra for one namespace:
//
//	toCreate = source - graph   (by table name)
//	toDelete = graph - source   (by table name)
//	toAlter  = graph ∩ source   (by table name, with a field-level sub-diff)
func Diff(source, graph map[string]metadata.Table) migration.Schema {
	var schema migration.Schema

	for name, sourceTable := range source {
		graphTable, inGraph := graph[name]
		if !inGraph {
			schema.Tables = append(schema.Tables, tableToCreate(sourceTable))
			continue
		}
		if alter, changed := tableToAlter(graphTable, sourceTable); changed {
			schema.Tables = append(schema.Tables, alter)
		}
	}

	for name, graphTable := range graph {
		if _, inSource := source[name]; !inSource {
			schema.Tables = append(schema.Tables, tableToDelete(graphTable))
		}
	}

	return schema
}

func tableToCreate(t metadata.Table) migration.Table {
	table := migration.Table{NewName: t.Name, DB: t.DB}
	for _, name := range t.FieldNames() {
		table.Fields = append(table.Fields, migration.Field{NewName: name, NewType: t.FieldToType[name]})
	}
	return table
}

func tableToDelete(t metadata.Table) migration.Table {
	return migration.Table{OldName: t.Name, DB: t.DB}
}

// tableToAlter computes the field-level sub-diff between the table as it
// exists in the graph and as it exists in the source. Returns changed ==
// false when the two snapshots are structurally identical, in which case
// the table contributes nothing to the Schema diff.
func tableToAlter(graphTable, sourceTable metadata.Table) (migration.Table, bool) {
	if graphTable.Equal(sourceTable) {
		return migration.Table{}, false
	}

	table := migration.Table{OldName: graphTable.Name, NewName: sourceTable.Name, DB: sourceTable.DB}

	for _, name := range sourceTable.FieldNames() {
		newType := sourceTable.FieldToType[name]
		oldType, existed := graphTable.FieldToType[name]
		switch {
		case !existed:
			table.Fields = append(table.Fields, migration.Field{NewName: name, NewType: newType})
		case oldType != newType:
			table.Fields = append(table.Fields, migration.Field{OldName: name, NewName: name, OldType: oldType, NewType: newType})
		}
	}

	for _, name := range graphTable.FieldNames() {
		if _, stillExists := sourceTable.FieldToType[name]; !stillExists {
			table.Fields = append(table.Fields, migration.Field{OldName: name, OldType: graphTable.FieldToType[name]})
		}
	}

	return table, true
}
