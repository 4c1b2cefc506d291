// SPDX-License-Identifier: Apache-2.0

package querybuilder

import (
	"fmt"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
)

// CreateHubs builds the batched query that merges each Hub's Table node
// and creates its Field nodes, mirroring
// hub_queries.construct_create_hubs_query.
func CreateHubs(hubs []classify.Hub) string {
	items := make([]string, 0, len(hubs))
	for _, hub := range hubs {
		fieldItems := make([]string, 0, len(hub.Fields))
		for _, f := range hub.Fields {
			fieldItems = append(fieldItems, cypherMap(
				field("name", f.NewName),
				field("db", hub.Name+"."+f.NewName),
				field("dbtype", f.NewType),
			))
		}
		items = append(items, cypherMap(
			field("name", hub.Name),
			field("db", hub.Name),
			field("pk", hub.PK),
			mapEntry{key: "fields", value: cypherList(fieldItems)},
		))
	}

	return fmt.Sprintf(`
UNWIND %s AS hub
MERGE (h:Table {name: hub.name})
SET h.db = hub.db, h.pk = hub.pk
WITH h, hub
UNWIND hub.fields AS newField
MERGE (h)-[:ATTR]->(:Field {name: newField.name, db: newField.db, dbtype: newField.dbtype})`,
		cypherList(items))
}
