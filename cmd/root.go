// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/co-codin/dwh-graph-db-migrater/internal/config"
)

// Version is the application version, set at build time via -ldflags.
var Version = "development"

var rootCmd = &cobra.Command{
	Use:          "dwh-graph-db-migrater",
	Short:        "Synchronizes a relational source schema into a Data Vault property graph",
	SilenceUsage: true,
	Version:      Version,
}

func init() {
	if err := config.RegisterFlags(rootCmd); err != nil {
		panic(err)
	}
}

// Execute registers every subcommand and runs the root command.
func Execute() error {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)

	return rootCmd.Execute()
}
