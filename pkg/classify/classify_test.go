// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

func TestClassifyHub(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "customer_hub", DB: "public", Fields: []migration.Field{
			{NewName: "hash_key", NewType: "str"},
			{NewName: "customer_id", NewType: "int"},
		}},
	}}

	plan, errs := Classify(schema, "ns", nil, nil, DefaultPattern())

	assert.Empty(t, errs)
	require.Len(t, plan.HubsToCreate, 1)
	assert.Equal(t, "customer_hub", plan.HubsToCreate[0].Name)
	assert.Equal(t, "hash_key", plan.HubsToCreate[0].PK)
}

func TestClassifySatResolvesHub(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "customer_sat", DB: "public", Fields: []migration.Field{
			{NewName: "hash_key", NewType: "str"},
			{NewName: "customer_hash_fkey", NewType: "str"},
			{NewName: "email", NewType: "str"},
		}},
	}}

	plan, errs := Classify(schema, "ns", []string{"customer_hub"}, nil, DefaultPattern())

	assert.Empty(t, errs)
	require.Len(t, plan.SatsToCreate, 1)
	require.NotNil(t, plan.SatsToCreate[0].Link)
	assert.Equal(t, "customer_hub", plan.SatsToCreate[0].Link.Hub)
}

func TestClassifySatUsesResolvedHubPKFromSameDiff(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "customer_hub", DB: "public", Fields: []migration.Field{
			{NewName: "customer_hash_key", NewType: "str"},
		}},
		{NewName: "customer_sat", DB: "public", Fields: []migration.Field{
			{NewName: "hash_key", NewType: "str"},
			{NewName: "customer_hash_fkey", NewType: "str"},
		}},
	}}

	plan, errs := Classify(schema, "ns", []string{"customer_hub"}, nil, DefaultPattern())

	assert.Empty(t, errs)
	require.Len(t, plan.SatsToCreate, 1)
	require.NotNil(t, plan.SatsToCreate[0].Link)
	assert.Equal(t, "customer_hash_key", plan.SatsToCreate[0].Link.RefTablePK)
}

func TestClassifySatResolvesHubPKFromExistingHubs(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "customer_sat", DB: "public", Fields: []migration.Field{
			{NewName: "hash_key", NewType: "str"},
			{NewName: "customer_hash_fkey", NewType: "str"},
		}},
	}}

	existingHubPKs := map[string]string{"customer_hub": "customer_hash_key"}
	plan, errs := Classify(schema, "ns", []string{"customer_hub"}, existingHubPKs, DefaultPattern())

	assert.Empty(t, errs)
	require.Len(t, plan.SatsToCreate, 1)
	require.NotNil(t, plan.SatsToCreate[0].Link)
	assert.Equal(t, "customer_hash_key", plan.SatsToCreate[0].Link.RefTablePK)
}

func TestClassifyMarksIsKeyOnPKPatternField(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "customer_hub", DB: "public", Fields: []migration.Field{
			{NewName: "customer_hash_key", NewType: "str"},
			{NewName: "name", NewType: "str"},
		}},
	}}

	_, errs := Classify(schema, "ns", nil, nil, DefaultPattern())
	assert.Empty(t, errs)

	for _, f := range schema.Tables[0].Fields {
		if f.NewName == "customer_hash_key" {
			assert.True(t, f.IsKey)
		} else {
			assert.False(t, f.IsKey)
		}
	}
}

func TestClassifySatFallsBackWhenHubUnresolved(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "customer_sat", DB: "public", Fields: []migration.Field{
			{NewName: "hash_key", NewType: "str"},
			{NewName: "customer_hash_fkey", NewType: "str"},
		}},
	}}

	plan, errs := Classify(schema, "ns", nil, nil, DefaultPattern())

	require.Len(t, errs, 1)
	require.Len(t, plan.SatsToCreate, 1)
	assert.Nil(t, plan.SatsToCreate[0].Link)
}

func TestClassifyLinkResolvesBothHubs(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "order_customer_link", DB: "public", Fields: []migration.Field{
			{NewName: "hash_key", NewType: "str"},
			{NewName: "customer_hash_fkey", NewType: "str"},
			{NewName: "order_hash_fkey", NewType: "str"},
		}},
	}}

	plan, errs := Classify(schema, "ns", []string{"customer_hub", "order_hub"}, nil, DefaultPattern())

	assert.Empty(t, errs)
	require.Len(t, plan.LinksToCreate, 1)
	link := plan.LinksToCreate[0]
	require.NotNil(t, link.MainLink)
	require.NotNil(t, link.PairedLink)
	assert.Equal(t, "customer_hub", link.MainLink.Hub)
	assert.Equal(t, "order_hub", link.PairedLink.Hub)
}

func TestClassifyTooManyForeignKeysDropsTable(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{NewName: "weird_table", DB: "public", Fields: []migration.Field{
			{NewName: "a_hash_fkey", NewType: "str"},
			{NewName: "b_hash_fkey", NewType: "str"},
			{NewName: "c_hash_fkey", NewType: "str"},
		}},
	}}

	plan, errs := Classify(schema, "ns", nil, nil, DefaultPattern())

	require.Len(t, errs, 1)
	assert.Empty(t, plan.HubsToCreate)
	assert.Empty(t, plan.SatsToCreate)
	assert.Empty(t, plan.LinksToCreate)
}

func TestClassifyDeleteIsRoleAgnostic(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{OldName: "old_hub"},
		{OldName: "old_link"},
	}}

	plan, errs := Classify(schema, "ns", nil, nil, DefaultPattern())

	assert.Empty(t, errs)
	assert.ElementsMatch(t, []string{"old_hub", "old_link"}, plan.TablesToDelete)
}

func TestClassifyAlterPassesThrough(t *testing.T) {
	schema := migration.Schema{Tables: []migration.Table{
		{OldName: "customer_sat", NewName: "customer_sat", Fields: []migration.Field{
			{OldName: "email", NewName: "email", OldType: "int", NewType: "str"},
		}},
	}}

	plan, errs := Classify(schema, "ns", nil, nil, DefaultPattern())

	assert.Empty(t, errs)
	require.Len(t, plan.TablesToAlter, 1)
}
