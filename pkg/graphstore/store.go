// SPDX-License-Identifier: Apache-2.0

// Package graphstore wraps an Apache AGE-enabled Postgres connection: it
// ensures each namespace has a bootstrapped sub-graph, serializes
// mutating Cypher batches per process, and retries on transient
// connection loss, mirroring app.py's check_on_conn_alive and
// utils/graph_db_utils.py's namespace-scoped query helpers.
package graphstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/apperrors"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/db"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/metadata"
)

// GraphStore is a single Postgres+AGE connection shared across
// namespaces. Mutating calls are serialized through a capacity-1
// semaphore by default so that two migrations never race to mutate the
// same (or different) namespace's sub-graph within one process.
type GraphStore struct {
	conn          db.DB
	ageConnString string

	mu           sync.Mutex
	bootstrapped map[string]bool

	sem chan struct{}
}

// Option configures a GraphStore constructed by New.
type Option func(*GraphStore)

// WithWorkerCapacity sets how many mutating batches may be in flight at
// once. The default is 1.
func WithWorkerCapacity(n int) Option {
	return func(g *GraphStore) { g.sem = make(chan struct{}, n) }
}

// New opens a connection to the AGE-enabled Postgres instance named by
// ageConnString and returns a GraphStore over it.
func New(ctx context.Context, ageConnString string, opts ...Option) (*GraphStore, error) {
	conn, err := openAgeConn(ctx, ageConnString)
	if err != nil {
		return nil, err
	}

	g := &GraphStore{
		conn:          conn,
		ageConnString: ageConnString,
		bootstrapped:  map[string]bool{},
		sem:           make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// openAgeConn opens a fresh Postgres connection and loads the AGE
// extension into its search_path. Shared by New and EnsureConnection's
// reopen-on-stale-connection path so both set up a connection the same
// way.
func openAgeConn(ctx context.Context, ageConnString string) (db.DB, error) {
	conn, err := sql.Open("postgres", ageConnString)
	if err != nil {
		return nil, apperrors.GraphUnavailableError{Err: err}
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, apperrors.GraphUnavailableError{Err: err}
	}

	if _, err := conn.ExecContext(ctx, "LOAD 'age'"); err != nil {
		conn.Close()
		return nil, apperrors.GraphUnavailableError{Err: fmt.Errorf("loading age extension: %w", err)}
	}
	if _, err := conn.ExecContext(ctx, "SET search_path = ag_catalog, \"$user\", public"); err != nil {
		conn.Close()
		return nil, apperrors.GraphUnavailableError{Err: err}
	}

	return &db.RDB{DB: conn}, nil
}

// Close releases the underlying connection.
func (g *GraphStore) Close() error {
	return g.conn.Close()
}

// EnsureConnection issues a liveness check and is a no-op if the
// connection is healthy. On a stale or dropped connection (a *pq.Error
// or sql.ErrConnDone) it silently reopens the connection once, mirroring
// app.py's check_on_conn_alive; any other error (or a failure to
// reopen) is returned as a GraphUnavailableError. Called before every
// batch so a dead connection is repaired ahead of the work that needs
// it rather than discovered mid-transaction.
func (g *GraphStore) EnsureConnection(ctx context.Context) error {
	_, err := g.conn.QueryContext(ctx, "SELECT 1")
	if err == nil {
		return nil
	}
	if !isStaleConnectionError(err) {
		return apperrors.GraphUnavailableError{Err: err}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fresh, err := openAgeConn(ctx, g.ageConnString)
	if err != nil {
		return err
	}
	g.conn.Close()
	g.conn = fresh
	return nil
}

// isStaleConnectionError reports whether err indicates the underlying
// connection itself died rather than e.g. a rejected statement.
func isStaleConnectionError(err error) bool {
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr)
}

// ensureGraph bootstraps namespace's sub-graph via
// ag_catalog.create_graph if it doesn't already exist, and caches the
// result so repeat calls for the same namespace are free.
func (g *GraphStore) ensureGraph(ctx context.Context, namespace string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.bootstrapped[namespace] {
		return nil
	}

	rows, err := g.conn.QueryContext(ctx, "SELECT count(*) FROM ag_catalog.ag_graph WHERE name = $1", namespace)
	if err != nil {
		return apperrors.GraphUnavailableError{Namespace: namespace, Err: err}
	}
	var count int
	if err := db.ScanFirstValue(rows, &count); err != nil {
		return apperrors.GraphUnavailableError{Namespace: namespace, Err: err}
	}

	if count == 0 {
		if _, err := g.conn.ExecContext(ctx, "SELECT ag_catalog.create_graph($1)", namespace); err != nil {
			return apperrors.GraphUnavailableError{Namespace: namespace, Err: err}
		}
	}

	g.bootstrapped[namespace] = true
	return nil
}

// ExecuteBatch runs a single Cypher statement (as built by
// pkg/querybuilder) against namespace's sub-graph inside a retryable
// transaction, serialized against every other mutating call on this
// GraphStore.
func (g *GraphStore) ExecuteBatch(ctx context.Context, namespace, cypher string) error {
	select {
	case g.sem <- struct{}{}:
		defer func() { <-g.sem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := g.EnsureConnection(ctx); err != nil {
		return err
	}
	if err := g.ensureGraph(ctx, namespace); err != nil {
		return err
	}

	stmt := fmt.Sprintf("SELECT * FROM cypher(%s, $cy$%s$cy$) AS (v ag_catalog.agtype)", pq.QuoteLiteral(namespace), cypher)

	err := g.conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	})
	if err != nil {
		return apperrors.GraphUnavailableError{Namespace: namespace, Err: err}
	}
	return nil
}

// Snapshot returns every Table and its Field names/types currently
// stored in namespace's sub-graph, read with a single query (the
// counterpart of graph_db_utils.get_graph_db_table_col_type), for the
// Differ to compare against the source snapshot. A Table node with no
// ATTR-linked Field is not returned.
func (g *GraphStore) Snapshot(ctx context.Context, namespace string) (map[string]metadata.Table, error) {
	if err := g.EnsureConnection(ctx); err != nil {
		return nil, err
	}
	if err := g.ensureGraph(ctx, namespace); err != nil {
		return nil, err
	}

	query := `
MATCH (obj)-[:ATTR]->(f:Field)
RETURN obj.name, obj.db, f.name, f.dbtype`
	stmt := fmt.Sprintf("SELECT * FROM cypher(%s, $cy$%s$cy$) AS (object_name ag_catalog.agtype, object_db ag_catalog.agtype, field_name ag_catalog.agtype, field_type ag_catalog.agtype)",
		pq.QuoteLiteral(namespace), query)

	rows, err := g.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, apperrors.GraphUnavailableError{Namespace: namespace, Err: err}
	}
	defer rows.Close()

	tables := map[string]metadata.Table{}
	for rows.Next() {
		var objName, objDB, fieldName, fieldType string
		if err := rows.Scan(&objName, &objDB, &fieldName, &fieldType); err != nil {
			return nil, apperrors.GraphUnavailableError{Namespace: namespace, Err: err}
		}

		table, ok := tables[objName]
		if !ok {
			table = metadata.Table{Name: objName, DB: objDB, FieldToType: map[string]string{}}
		}
		table.FieldToType[fieldName] = fieldType
		tables[objName] = table
	}
	return tables, rows.Err()
}
