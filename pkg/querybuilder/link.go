// SPDX-License-Identifier: Apache-2.0

package querybuilder

import (
	"fmt"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
)

// CreateLinksWithHubs builds the batched query for Links whose both Hub
// ends were resolved: it matches both existing Hub nodes (a Link whose
// Hub nodes are absent is not created by this statement), merges the
// Link's Table and Field nodes, and creates the antiparallel ONE_TO_MANY/MANY_TO_ONE edge
// pair for each end, mirroring link_queries.create_links_with_hubs_query.
func CreateLinksWithHubs(links []classify.Link) string {
	items := make([]string, 0, len(links))
	for _, link := range links {
		items = append(items, linkLiteral(link))
	}

	return fmt.Sprintf(`
UNWIND %s AS link
MATCH (mainHub:Table {name: link.mainHub})
MATCH (pairedHub:Table {name: link.pairedHub})
MERGE (l:Table {name: link.name})
SET l.db = link.db, l.pk = link.pk
WITH mainHub, pairedHub, l, link
UNWIND link.fields AS newField
MERGE (l)-[:ATTR]->(:Field {name: newField.name, db: newField.db, dbtype: newField.dbtype})
WITH DISTINCT mainHub, pairedHub, l, link
MERGE (mainHub)-[:ONE_TO_MANY {on: [link.mainRefTablePk, link.mainFk]}]->(l)
MERGE (l)-[:MANY_TO_ONE {on: [link.mainRefTablePk, link.mainFk]}]->(mainHub)
MERGE (pairedHub)-[:ONE_TO_MANY {on: [link.pairedRefTablePk, link.pairedFk]}]->(l)
MERGE (l)-[:MANY_TO_ONE {on: [link.pairedRefTablePk, link.pairedFk]}]->(pairedHub)`,
		cypherList(items))
}

// CreateIsolatedLinks builds the batched query for Links whose Hub ends
// could not both be resolved: the Link's Table and Field nodes are still
// created, but no relationship edges are, mirroring
// link_queries.create_links_query.
func CreateIsolatedLinks(links []classify.Link) string {
	items := make([]string, 0, len(links))
	for _, link := range links {
		fieldItems := make([]string, 0, len(link.Fields))
		for _, f := range link.Fields {
			fieldItems = append(fieldItems, cypherMap(
				field("name", f.NewName),
				field("db", link.Name+"."+f.NewName),
				field("dbtype", f.NewType),
			))
		}
		items = append(items, cypherMap(
			field("name", link.Name),
			field("db", link.Name),
			mapEntry{key: "fields", value: cypherList(fieldItems)},
		))
	}

	return fmt.Sprintf(`
UNWIND %s AS link
MERGE (l:Table {name: link.name})
SET l.db = link.db
WITH l, link
UNWIND link.fields AS newField
MERGE (l)-[:ATTR]->(:Field {name: newField.name, db: newField.db, dbtype: newField.dbtype})`,
		cypherList(items))
}

func linkLiteral(link classify.Link) string {
	fieldItems := make([]string, 0, len(link.Fields))
	for _, f := range link.Fields {
		fieldItems = append(fieldItems, cypherMap(
			field("name", f.NewName),
			field("db", link.Name+"."+f.NewName),
			field("dbtype", f.NewType),
		))
	}

	return cypherMap(
		field("name", link.Name),
		field("db", link.Name),
		field("pk", link.PK),
		field("mainHub", link.MainLink.Hub),
		field("mainFk", link.MainLink.FK),
		field("mainRefTablePk", link.MainLink.RefTablePK),
		field("pairedHub", link.PairedLink.Hub),
		field("pairedFk", link.PairedLink.FK),
		field("pairedRefTablePk", link.PairedLink.RefTablePK),
		mapEntry{key: "fields", value: cypherList(fieldItems)},
	)
}

// IsFullyResolved reports whether a Link's both Hub ends were resolved
// by the Classifier, deciding whether the Applier should use
// CreateLinksWithHubs or CreateIsolatedLinks for it.
func IsFullyResolved(link classify.Link) bool {
	return link.MainLink != nil && link.PairedLink != nil
}
