// SPDX-License-Identifier: Apache-2.0

package querybuilder

import (
	"fmt"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

// DeleteNodes builds the query that detaches and deletes every Table
// node named in names along with its ATTR-linked Field nodes, mirroring
// node_queries.delete_nodes_query / construct_delete_nodes_query. It
// matches by name only, regardless of the node's former Hub/Satellite/
// Link role.
func DeleteNodes(names []string) string {
	return fmt.Sprintf(`
MATCH (obj)
WHERE obj.name IN %s
OPTIONAL MATCH (obj)-[:ATTR]->(f:Field)
DETACH DELETE obj, f`, stringList(names))
}

// CreateFields builds the query that adds newly-discovered fields to an
// existing node, mirroring node_queries.alter_nodes_query_create_fields.
func CreateFields(tableName string, fields []migration.Field) string {
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldDB := f.NewName
		items = append(items, cypherMap(
			field("name", f.NewName),
			field("db", fieldDB),
			field("dbtype", f.NewType),
		))
	}

	return fmt.Sprintf(`
MATCH (obj {name: %s})
UNWIND %s AS newField
MERGE (obj)-[:ATTR]->(:Field {name: newField.name, db: newField.db, dbtype: newField.dbtype})`,
		quoteString(tableName), cypherList(items))
}

// DeleteFields builds the query that removes fields no longer present in
// the source from an existing node, mirroring
// node_queries.alter_nodes_query_delete_fields.
func DeleteFields(tableName string, fieldNames []string) string {
	return fmt.Sprintf(`
MATCH (obj {name: %s})-[:ATTR]->(f:Field)
WHERE f.name IN %s
DETACH DELETE f`, quoteString(tableName), stringList(fieldNames))
}

// AlterFields builds the query that updates the dbtype of fields whose
// type changed, mirroring node_queries.alter_nodes_query_alter_fields.
func AlterFields(tableName string, fields []migration.Field) string {
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, cypherMap(
			field("name", f.NewName),
			field("dbtype", f.NewType),
		))
	}

	return fmt.Sprintf(`
UNWIND %s AS upd
MATCH (obj {name: %s})-[:ATTR]->(f:Field {name: upd.name})
SET f.dbtype = upd.dbtype`, cypherList(items), quoteString(tableName))
}
