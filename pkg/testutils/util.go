// SPDX-License-Identifier: Apache-2.0

// Package testutils provides shared Postgres test-container helpers for
// the pkg/db and pkg/migration integration tests, adapted from
// pgroll's pkg/testutils to start an Apache AGE-enabled image instead of
// plain Postgres.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// The AGE-enabled Postgres image used for tests unless AGE_IMAGE is set.
const defaultAGEImage = "apache/age:release_PG15_1.5.0"

// tConnStr holds the connection string to the test container created in
// TestMain.
var tConnStr string

// SharedTestMain starts an Apache AGE-enabled Postgres container to be
// used by all tests in a package. Each test connects to the container
// and creates its own database.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(5 * time.Second)

	image := os.Getenv("AGE_IMAGE")
	if image == "" {
		image = defaultAGEImage
	}

	ctr, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(image),
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	if err != nil {
		os.Exit(1)
	}

	tConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		os.Exit(1)
	}

	db, err := sql.Open("postgres", tConnStr)
	if err != nil {
		os.Exit(1)
	}
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS age"); err != nil {
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := ctr.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate container: %v", err)
	}

	os.Exit(exitCode)
}

// WithConnectionToContainer runs fn with a connection to a fresh
// database created in the shared test container.
func WithConnectionToContainer(t *testing.T, fn func(*sql.DB, string)) {
	t.Helper()
	db, connStr, _ := setupTestDatabase(t)
	fn(db, connStr)
}

// WithGraphConnectionToContainer runs fn with a connection to a fresh
// AGE-enabled database created in the shared test container.
func WithGraphConnectionToContainer(t *testing.T, fn func(connStr string)) {
	t.Helper()
	ctx := context.Background()

	db, connStr, _ := setupTestDatabase(t)
	_, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS age")
	require(t, err)

	fn(connStr)
}

func require(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// setupTestDatabase creates a new database in the test container and
// returns a connection to it, its connection string, and its name.
func setupTestDatabase(t *testing.T) (*sql.DB, string, string) {
	t.Helper()
	ctx := context.Background()

	tDB, err := sql.Open("postgres", tConnStr)
	require(t, err)
	t.Cleanup(func() { tDB.Close() })

	dbName := randomDBName()

	_, err = tDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	require(t, err)

	u, err := url.Parse(tConnStr)
	require(t, err)
	u.Path = "/" + dbName
	connStr := u.String()

	db, err := sql.Open("postgres", connStr)
	require(t, err)
	t.Cleanup(func() { db.Close() })

	return db, connStr, dbName
}
