// SPDX-License-Identifier: Apache-2.0

// Package config binds the process configuration from environment
// variables and command-line flags through viper, mirroring pgroll's
// cmd/root.go wiring but against the dwh_graph_db_migrater_ prefixed
// variable table instead of PGROLL_*.
package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "dwh_graph_db_migrater"

// Config holds every setting the worker and HTTP processes need, bound
// through viper so flags and environment variables resolve to the same
// keys. No config file is read.
type Config struct {
	Port                  int
	Debug                 bool
	DBConnectionString    string
	AGEConnectionString   string
	MQConnectionString    string
	MigrationExchange     string
	MigrationRequestQueue string
	MigrationsResultQueue string
	APIIAM                string
}

// keys lists every bound setting name, used both to register flags and
// to explicitly bind each environment variable (BindEnv rather than
// AutomaticEnv's uppercased-prefix guess, since the variable table uses
// an all-lowercase prefix).
var keys = []string{
	"port", "debug", "db_connection_string", "age_connection_string",
	"mq_connection_string", "migration_exchange", "migration_request_queue",
	"migrations_result_queue", "api_iam",
}

// RegisterFlags adds one persistent flag per setting to cmd and binds
// each to its environment variable and viper key.
func RegisterFlags(cmd *cobra.Command) error {
	cmd.PersistentFlags().Int("port", 8080, "HTTP listen port")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("db-connection-string", "", "Audit Postgres connection string")
	cmd.PersistentFlags().String("age-connection-string", "", "Apache AGE-enabled Postgres connection string")
	cmd.PersistentFlags().String("mq-connection-string", "", "Message bus connection string")
	cmd.PersistentFlags().String("migration-exchange", "migrations", "Direct exchange for migration request/result messages")
	cmd.PersistentFlags().String("migration-request-queue", "migration_requests", "Queue bound to the task routing key")
	cmd.PersistentFlags().String("migrations-result-queue", "migration_results", "Queue bound to the result routing key")
	cmd.PersistentFlags().String("api-iam", "", "IAM service URL used by the HTTP auth middleware")

	flagByKey := map[string]string{
		"port":                     "port",
		"debug":                    "debug",
		"db_connection_string":     "db-connection-string",
		"age_connection_string":    "age-connection-string",
		"mq_connection_string":     "mq-connection-string",
		"migration_exchange":       "migration-exchange",
		"migration_request_queue":  "migration-request-queue",
		"migrations_result_queue":  "migrations-result-queue",
		"api_iam":                  "api-iam",
	}

	for _, key := range keys {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flagByKey[key])); err != nil {
			return fmt.Errorf("binding flag for %s: %w", key, err)
		}
		if err := viper.BindEnv(key, fmt.Sprintf("%s_%s", envPrefix, key)); err != nil {
			return fmt.Errorf("binding env var for %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the bound settings into a Config.
func Load() Config {
	return Config{
		Port:                  viper.GetInt("port"),
		Debug:                 viper.GetBool("debug"),
		DBConnectionString:    viper.GetString("db_connection_string"),
		AGEConnectionString:   viper.GetString("age_connection_string"),
		MQConnectionString:    viper.GetString("mq_connection_string"),
		MigrationExchange:     viper.GetString("migration_exchange"),
		MigrationRequestQueue: viper.GetString("migration_request_queue"),
		MigrationsResultQueue: viper.GetString("migrations_result_queue"),
		APIIAM:                viper.GetString("api_iam"),
	}
}
