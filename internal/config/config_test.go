// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/co-codin/dwh-graph-db-migrater/internal/config"
)

func TestLoadFallsBackToFlagDefaults(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, config.RegisterFlags(cmd))

	cfg := config.Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "migrations", cfg.MigrationExchange)
	assert.False(t, cfg.Debug)
}

func TestLoadReadsEnvironmentOverPrefixedVariable(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, config.RegisterFlags(cmd))

	t.Setenv("dwh_graph_db_migrater_port", "9090")
	t.Setenv("dwh_graph_db_migrater_db_connection_string", "postgres://audit")

	cfg := config.Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://audit", cfg.DBConnectionString)
}
