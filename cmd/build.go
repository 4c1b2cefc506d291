// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/co-codin/dwh-graph-db-migrater/internal/config"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/apply"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/graphstore"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/pipeline"
)

// app bundles every long-lived connection the worker process needs, so
// they are built and closed together. The serve command opens only the
// audit store, through newAuditStore.
type app struct {
	graph    *graphstore.GraphStore
	store    *migration.Store
	pipeline *pipeline.Pipeline
}

func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	graph, err := graphstore.New(ctx, cfg.AGEConnectionString)
	if err != nil {
		return nil, fmt.Errorf("connecting to graph store: %w", err)
	}

	store, err := migration.New(ctx, cfg.DBConnectionString, auditSchema)
	if err != nil {
		graph.Close()
		return nil, fmt.Errorf("connecting to audit store: %w", err)
	}

	applier := apply.New(graph, apply.NewLogger())

	p := pipeline.New(graph, store, applier, nil, func(namespace string, err error) {
		pterm.Warning.Printfln("classification warning in %s: %s", namespace, err)
	})

	return &app{graph: graph, store: store, pipeline: p}, nil
}

func (a *app) Close() {
	a.graph.Close()
	a.store.Close()
}

// newAuditStore opens just the audit connection, for commands (like
// serve) that only ever read migration records and never touch the
// graph store.
func newAuditStore(ctx context.Context, cfg config.Config) (*migration.Store, error) {
	store, err := migration.New(ctx, cfg.DBConnectionString, auditSchema)
	if err != nil {
		return nil, fmt.Errorf("connecting to audit store: %w", err)
	}
	return store, nil
}
