// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/co-codin/dwh-graph-db-migrater/internal/config"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

const auditSchema = "dwh_graph_db_migrater"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Creates the audit schema that stores migration records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		store, err := migration.New(cmd.Context(), cfg.DBConnectionString, auditSchema)
		if err != nil {
			return err
		}
		defer store.Close()

		sp, _ := pterm.DefaultSpinner.WithText("Initializing audit schema...").Start()
		if err := store.Init(cmd.Context()); err != nil {
			sp.Fail(fmt.Sprintf("Failed to initialize audit schema: %s", err))
			return err
		}

		sp.Success("Initialization complete")
		return nil
	},
}
