// SPDX-License-Identifier: Apache-2.0

package querybuilder

import (
	"fmt"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
)

// CreateLinkedSats builds the batched query for Satellites whose owning
// Hub was resolved: it matches the existing Hub node (a Satellite whose
// Hub node is absent is not created by this statement), merges the
// Satellite's Table and Field nodes, and creates the antiparallel
// ONE_TO_MANY/MANY_TO_ONE edge pair through pk/fk, mirroring
// sat_queries.create_sats_with_hubs_query.
func CreateLinkedSats(sats []classify.Sat) string {
	items := make([]string, 0, len(sats))
	for _, sat := range sats {
		items = append(items, satLiteral(sat))
	}

	return fmt.Sprintf(`
UNWIND %s AS sat
MATCH (hub:Table {name: sat.hub})
MERGE (s:Table {name: sat.name})
SET s.db = sat.db
WITH hub, s, sat
UNWIND sat.fields AS newField
MERGE (s)-[:ATTR]->(:Field {name: newField.name, db: newField.db, dbtype: newField.dbtype})
WITH DISTINCT hub, s, sat
MERGE (hub)-[:ONE_TO_MANY {on: [sat.refTablePk, sat.fk]}]->(s)
MERGE (s)-[:MANY_TO_ONE {on: [sat.refTablePk, sat.fk]}]->(hub)`,
		cypherList(items))
}

// CreateIsolatedSats builds the batched query for Satellites whose owning
// Hub could not be resolved: the Satellite is still created so that a
// later migration can converge it once its Hub reference can be
// resolved, but no relationship edge is created, mirroring
// sat_queries.create_sats_query.
func CreateIsolatedSats(sats []classify.Sat) string {
	items := make([]string, 0, len(sats))
	for _, sat := range sats {
		fieldItems := make([]string, 0, len(sat.Fields))
		for _, f := range sat.Fields {
			fieldItems = append(fieldItems, cypherMap(
				field("name", f.NewName),
				field("db", sat.Name+"."+f.NewName),
				field("dbtype", f.NewType),
			))
		}
		items = append(items, cypherMap(
			field("name", sat.Name),
			field("db", sat.Name),
			mapEntry{key: "fields", value: cypherList(fieldItems)},
		))
	}

	return fmt.Sprintf(`
UNWIND %s AS sat
MERGE (s:Table {name: sat.name})
SET s.db = sat.db
WITH s, sat
UNWIND sat.fields AS newField
MERGE (s)-[:ATTR]->(:Field {name: newField.name, db: newField.db, dbtype: newField.dbtype})`,
		cypherList(items))
}

func satLiteral(sat classify.Sat) string {
	fieldItems := make([]string, 0, len(sat.Fields))
	for _, f := range sat.Fields {
		fieldItems = append(fieldItems, cypherMap(
			field("name", f.NewName),
			field("db", sat.Name+"."+f.NewName),
			field("dbtype", f.NewType),
		))
	}

	return cypherMap(
		field("name", sat.Name),
		field("db", sat.Name),
		field("hub", sat.Link.Hub),
		field("fk", sat.Link.FK),
		field("refTablePk", sat.Link.RefTablePK),
		mapEntry{key: "fields", value: cypherList(fieldItems)},
	)
}
