// SPDX-License-Identifier: Apache-2.0

// Package apply is the five-phase batched executor that turns a
// classify.ApplyPlan into graph mutations, mirroring app.py's
// apply_migration orchestration: Delete, then CreateHubs, then
// CreateLinks, then CreateSats, then Alter, each batched and run
// sequentially against a single namespace so that a Link can always
// find the Hub it references and a Satellite can always find its Hub.
package apply

import (
	"context"
	"fmt"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/graphstore"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/querybuilder"
)

// batcher is satisfied by *graphstore.GraphStore; declared here so tests
// can substitute a fake without pulling in an AGE connection.
type batcher interface {
	ExecuteBatch(ctx context.Context, namespace, cypher string) error
}

var _ batcher = (*graphstore.GraphStore)(nil)

// Applier runs an ApplyPlan's five phases against a GraphStore.
type Applier struct {
	store  batcher
	logger Logger
}

// New returns an Applier writing through store. A nil logger is
// replaced with a no-op one.
func New(store batcher, logger Logger) *Applier {
	if logger == nil {
		logger = NewNoopLogger()
	}
	return &Applier{store: store, logger: logger}
}

const (
	phaseDelete      = "delete"
	phaseCreateHubs  = "create_hubs"
	phaseCreateLinks = "create_links"
	phaseCreateSats  = "create_sats"
	phaseAlter       = "alter"
)

// Apply runs plan's five phases in the fixed order Delete, CreateHubs,
// CreateLinks, CreateSats, Alter against plan.Namespace. It stops at the
// first phase that errors, leaving later phases unapplied: a partially
// applied plan is always safe to re-run, since every Cypher statement
// the phases emit is built from MERGE, not CREATE-only, semantics.
func (a *Applier) Apply(ctx context.Context, plan classify.ApplyPlan) error {
	if err := a.runDelete(ctx, plan.Namespace, plan.TablesToDelete); err != nil {
		return err
	}
	if err := a.runCreateHubs(ctx, plan.Namespace, plan.HubsToCreate); err != nil {
		return err
	}
	if err := a.runCreateLinks(ctx, plan.Namespace, plan.LinksToCreate); err != nil {
		return err
	}
	if err := a.runCreateSats(ctx, plan.Namespace, plan.SatsToCreate); err != nil {
		return err
	}
	if err := a.runAlter(ctx, plan.Namespace, plan.TablesToAlter); err != nil {
		return err
	}
	return nil
}

func (a *Applier) runDelete(ctx context.Context, namespace string, names []string) error {
	a.logger.LogPhaseStart(namespace, phaseDelete, len(names))
	for i, batch := range batchesOf(names, batchSize) {
		a.logger.LogBatch(namespace, phaseDelete, i, len(batch))
		if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.DeleteNodes(batch)); err != nil {
			return fmt.Errorf("deleting nodes: %w", err)
		}
	}
	a.logger.LogPhaseComplete(namespace, phaseDelete, len(names))
	return nil
}

func (a *Applier) runCreateHubs(ctx context.Context, namespace string, hubs []classify.Hub) error {
	a.logger.LogPhaseStart(namespace, phaseCreateHubs, len(hubs))
	for i, batch := range batchesOf(hubs, batchSize) {
		a.logger.LogBatch(namespace, phaseCreateHubs, i, len(batch))
		if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.CreateHubs(batch)); err != nil {
			return fmt.Errorf("creating hubs: %w", err)
		}
	}
	a.logger.LogPhaseComplete(namespace, phaseCreateHubs, len(hubs))
	return nil
}

// runCreateLinks splits links into fully-resolved (both Hub ends known)
// and isolated groups, since the two groups need different Cypher
// (IsFullyResolved decides which), but both still batch and run within
// this one phase.
func (a *Applier) runCreateLinks(ctx context.Context, namespace string, links []classify.Link) error {
	a.logger.LogPhaseStart(namespace, phaseCreateLinks, len(links))

	var resolved, isolated []classify.Link
	for _, link := range links {
		if querybuilder.IsFullyResolved(link) {
			resolved = append(resolved, link)
		} else {
			isolated = append(isolated, link)
		}
	}

	for i, batch := range batchesOf(resolved, batchSize) {
		a.logger.LogBatch(namespace, phaseCreateLinks, i, len(batch))
		if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.CreateLinksWithHubs(batch)); err != nil {
			return fmt.Errorf("creating links with hubs: %w", err)
		}
	}
	for i, batch := range batchesOf(isolated, batchSize) {
		a.logger.LogBatch(namespace, phaseCreateLinks, i, len(batch))
		if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.CreateIsolatedLinks(batch)); err != nil {
			return fmt.Errorf("creating isolated links: %w", err)
		}
	}

	a.logger.LogPhaseComplete(namespace, phaseCreateLinks, len(links))
	return nil
}

// runCreateSats splits sats the same way runCreateLinks splits links:
// by whether the owning Hub reference was resolved.
func (a *Applier) runCreateSats(ctx context.Context, namespace string, sats []classify.Sat) error {
	a.logger.LogPhaseStart(namespace, phaseCreateSats, len(sats))

	var linked, isolated []classify.Sat
	for _, sat := range sats {
		if sat.Link != nil {
			linked = append(linked, sat)
		} else {
			isolated = append(isolated, sat)
		}
	}

	for i, batch := range batchesOf(linked, batchSize) {
		a.logger.LogBatch(namespace, phaseCreateSats, i, len(batch))
		if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.CreateLinkedSats(batch)); err != nil {
			return fmt.Errorf("creating linked sats: %w", err)
		}
	}
	for i, batch := range batchesOf(isolated, batchSize) {
		a.logger.LogBatch(namespace, phaseCreateSats, i, len(batch))
		if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.CreateIsolatedSats(batch)); err != nil {
			return fmt.Errorf("creating isolated sats: %w", err)
		}
	}

	a.logger.LogPhaseComplete(namespace, phaseCreateSats, len(sats))
	return nil
}

// runAlter applies each altered table's field-level sub-diff: new
// fields are created, dropped fields deleted, and fields whose type
// changed updated in place, mirroring node_queries' three-way split.
func (a *Applier) runAlter(ctx context.Context, namespace string, tables []migration.Table) error {
	a.logger.LogPhaseStart(namespace, phaseAlter, len(tables))

	for _, table := range tables {
		var toCreate, toAlter []migration.Field
		var toDeleteNames []string

		for _, f := range table.Fields {
			switch {
			case f.OldName == "" && f.NewName != "":
				toCreate = append(toCreate, f)
			case f.NewName == "" && f.OldName != "":
				toDeleteNames = append(toDeleteNames, f.OldName)
			case f.OldType != f.NewType:
				toAlter = append(toAlter, f)
			}
		}

		if len(toCreate) > 0 {
			if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.CreateFields(table.NewName, toCreate)); err != nil {
				return fmt.Errorf("altering table %s: creating fields: %w", table.NewName, err)
			}
		}
		if len(toDeleteNames) > 0 {
			if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.DeleteFields(table.NewName, toDeleteNames)); err != nil {
				return fmt.Errorf("altering table %s: deleting fields: %w", table.NewName, err)
			}
		}
		if len(toAlter) > 0 {
			if err := a.store.ExecuteBatch(ctx, namespace, querybuilder.AlterFields(table.NewName, toAlter)); err != nil {
				return fmt.Errorf("altering table %s: changing field types: %w", table.NewName, err)
			}
		}
	}

	a.logger.LogPhaseComplete(namespace, phaseAlter, len(tables))
	return nil
}
