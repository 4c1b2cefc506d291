// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/co-codin/dwh-graph-db-migrater/internal/config"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/lifecycle"
)

// ptermLifecycleLogger adapts pterm to lifecycle.Logger.
type ptermLifecycleLogger struct{ logger pterm.Logger }

func (l ptermLifecycleLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args))
}

func (l ptermLifecycleLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, l.logger.Args(args))
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes migration-request messages and drives the schema-diff and graph-apply pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		application, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		conn, err := amqp.Dial(cfg.MQConnectionString)
		if err != nil {
			return fmt.Errorf("connecting to message bus: %w", err)
		}
		defer conn.Close()

		consumer, err := lifecycle.New(
			conn,
			cfg.MigrationExchange,
			cfg.MigrationRequestQueue,
			cfg.MigrationsResultQueue,
			application.pipeline,
			ptermLifecycleLogger{logger: pterm.DefaultLogger},
		)
		if err != nil {
			return fmt.Errorf("starting lifecycle consumer: %w", err)
		}
		defer consumer.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		pterm.Info.Println("worker started, consuming migration requests")
		return consumer.Consume(ctx)
	},
}
