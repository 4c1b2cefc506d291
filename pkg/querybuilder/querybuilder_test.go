// SPDX-License-Identifier: Apache-2.0

package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

func TestQuoteStringEscapesQuotesAndBackslashes(t *testing.T) {
	assert.Equal(t, `'o\'brien'`, quoteString("o'brien"))
	assert.Equal(t, `'a\\b'`, quoteString(`a\b`))
}

func TestDeleteNodesEmbedsNamesSafely(t *testing.T) {
	query := DeleteNodes([]string{"customer_hub", "o'malley_hub"})
	assert.Contains(t, query, "'customer_hub'")
	assert.Contains(t, query, `'o\'malley_hub'`)
	assert.Contains(t, query, "DETACH DELETE obj, f")
}

func TestCreateHubsIncludesEachHub(t *testing.T) {
	hubs := []classify.Hub{
		{Name: "customer_hub", PK: "hash_key", Fields: []migration.Field{{NewName: "hash_key", NewType: "str"}}},
		{Name: "order_hub", PK: "hash_key", Fields: []migration.Field{{NewName: "hash_key", NewType: "str"}}},
	}
	query := CreateHubs(hubs)
	assert.Contains(t, query, "'customer_hub'")
	assert.Contains(t, query, "'order_hub'")
	assert.Contains(t, query, "MERGE (h:Table")
}

func TestCreateLinkedSatsReferencesHubAndFK(t *testing.T) {
	sats := []classify.Sat{
		{
			Name:   "customer_sat",
			Fields: []migration.Field{{NewName: "email", NewType: "str"}},
			Link:   &classify.OneWayLink{Hub: "customer_hub", FK: "customer_hash_fkey", RefTablePK: "hash_key"},
		},
	}
	query := CreateLinkedSats(sats)
	assert.Contains(t, query, "'customer_hub'")
	assert.Contains(t, query, "'customer_hash_fkey'")
	assert.Contains(t, query, "ONE_TO_MANY")
	assert.Contains(t, query, "MANY_TO_ONE")
}

func TestCreateIsolatedLinksOmitsHubMatch(t *testing.T) {
	links := []classify.Link{
		{Name: "mystery_link", Fields: []migration.Field{{NewName: "hash_key", NewType: "str"}}},
	}
	query := CreateIsolatedLinks(links)
	assert.NotContains(t, query, "ONE_TO_MANY")
	assert.Contains(t, query, "'mystery_link'")
}
