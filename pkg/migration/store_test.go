// SPDX-License-Identifier: Apache-2.0

package migration_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func TestSaveAndGetRoundTrips(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(_ *sql.DB, connStr string) {
		ctx := context.Background()

		store, err := migration.New(ctx, connStr, "migration_audit")
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Init(ctx))

		m := &migration.Migration{
			Name:     "initial sync",
			DBSource: "postgresql://source",
			Schemas: []migration.Schema{
				{
					Name: "public",
					Tables: []migration.Table{
						{
							NewName: "customer_hub",
							DB:      "public",
							Fields: []migration.Field{
								{NewName: "hash_key", NewType: "str", IsKey: true},
							},
						},
					},
				},
			},
		}

		require.NoError(t, store.Save(ctx, m))
		assert.NotEmpty(t, m.Guid)

		loaded, err := store.Get(ctx, m.Guid)
		require.NoError(t, err)
		require.Len(t, loaded.Schemas, 1)
		require.Len(t, loaded.Schemas[0].Tables, 1)
		require.Len(t, loaded.Schemas[0].Tables[0].Fields, 1)
		assert.Equal(t, "customer_hub", loaded.Schemas[0].Tables[0].NewName)
		assert.Equal(t, "hash_key", loaded.Schemas[0].Tables[0].Fields[0].NewName)
	})
}

func TestGetUnknownGuidReturnsNotFound(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(_ *sql.DB, connStr string) {
		ctx := context.Background()

		store, err := migration.New(ctx, connStr, "migration_audit")
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Init(ctx))

		_, err = store.Get(ctx, "does-not-exist")
		assert.Error(t, err)
	})
}

func TestGetLastByDBSourceTracksMostRecent(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(_ *sql.DB, connStr string) {
		ctx := context.Background()

		store, err := migration.New(ctx, connStr, "migration_audit")
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Init(ctx))

		first := &migration.Migration{Name: "first", DBSource: "postgresql://source"}
		require.NoError(t, store.Save(ctx, first))

		second := &migration.Migration{Name: "second", DBSource: "postgresql://source", PrevMigration: &first.Guid}
		require.NoError(t, store.Save(ctx, second))

		last, err := store.GetLastByDBSource(ctx, "postgresql://source")
		require.NoError(t, err)
		assert.Equal(t, second.Guid, last.Guid)
		require.NotNil(t, last.PrevMigration)
		assert.Equal(t, first.Guid, *last.PrevMigration)
	})
}
