// SPDX-License-Identifier: Apache-2.0

package apply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/apply"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

type fakeBatcher struct {
	calls []string
	fail  map[int]bool
}

func (f *fakeBatcher) ExecuteBatch(_ context.Context, namespace, cypher string) error {
	idx := len(f.calls)
	f.calls = append(f.calls, cypher)
	if f.fail[idx] {
		return assert.AnError
	}
	return nil
}

func TestApplyRunsPhasesInOrder(t *testing.T) {
	plan := classify.ApplyPlan{
		Namespace:      "source.public",
		TablesToDelete: []string{"stale_hub"},
		HubsToCreate: []classify.Hub{
			{Name: "customer_hub", PK: "hash_key", Fields: []migration.Field{{NewName: "hash_key", NewType: "str"}}},
		},
		LinksToCreate: []classify.Link{
			{
				Name:       "order_customer_link",
				PK:         "hash_key",
				MainLink:   &classify.OneWayLink{Hub: "customer_hub", FK: "customer_hash_fkey", RefTablePK: "hash_key"},
				PairedLink: &classify.OneWayLink{Hub: "order_hub", FK: "order_hash_fkey", RefTablePK: "hash_key"},
			},
			{Name: "isolated_link"},
		},
		SatsToCreate: []classify.Sat{
			{Name: "customer_details_sat", Link: &classify.OneWayLink{Hub: "customer_hub", FK: "customer_hash_fkey", RefTablePK: "hash_key"}},
			{Name: "isolated_sat"},
		},
		TablesToAlter: []migration.Table{
			{
				OldName: "customer_hub",
				NewName: "customer_hub",
				Fields: []migration.Field{
					{NewName: "email", NewType: "str"},
					{OldName: "legacy_flag"},
					{OldName: "status", NewName: "status", OldType: "str", NewType: "int"},
				},
			},
		},
	}

	batcher := &fakeBatcher{}
	applier := apply.New(batcher, apply.NewNoopLogger())

	err := applier.Apply(context.Background(), plan)
	require.NoError(t, err)

	// delete, create hubs, create links (resolved + isolated), create
	// sats (linked + isolated), then create/delete/alter fields for the
	// one altered table: 8 ExecuteBatch calls total.
	assert.Len(t, batcher.calls, 8)
	assert.Contains(t, batcher.calls[0], "DETACH DELETE")
	assert.Contains(t, batcher.calls[1], "MERGE (h:Table")
}

func TestApplyStopsAtFirstFailingPhase(t *testing.T) {
	plan := classify.ApplyPlan{
		Namespace:      "source.public",
		TablesToDelete: []string{"stale_hub"},
		HubsToCreate:   []classify.Hub{{Name: "customer_hub"}},
	}

	batcher := &fakeBatcher{fail: map[int]bool{0: true}}
	applier := apply.New(batcher, apply.NewNoopLogger())

	err := applier.Apply(context.Background(), plan)
	require.Error(t, err)
	assert.Len(t, batcher.calls, 1, "should not proceed past the failing delete phase")
}

func TestApplyEmptyPlanIsNoop(t *testing.T) {
	batcher := &fakeBatcher{}
	applier := apply.New(batcher, nil)

	err := applier.Apply(context.Background(), classify.ApplyPlan{Namespace: "source.public"})
	require.NoError(t, err)
	assert.Empty(t, batcher.calls)
}
