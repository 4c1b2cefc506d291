// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/co-codin/dwh-graph-db-migrater/internal/config"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the read-only HTTP surface over the migration audit store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		store, err := newAuditStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		engine.Use(gin.Recovery())

		httpapi.New(store, nil).Register(engine)

		addr := fmt.Sprintf(":%d", cfg.Port)
		pterm.Info.Printfln("listening on %s", addr)
		return http.ListenAndServe(addr, engine)
	},
}
