// SPDX-License-Identifier: Apache-2.0

// Package pipeline wires MetadataExtractor, GraphStore, Differ,
// MigrationStore, Classifier and Applier into the single Run call the
// Lifecycle consumer (and any other caller) drives, mirroring the
// control flow from app.py: Lifecycle -> (Differ <- MetadataExtractor +
// GraphStore) -> MigrationStore.save -> Formatter -> Applier ->
// GraphStore.
package pipeline

import (
	"context"
	"regexp"
	"sort"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/apperrors"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/apply"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/differ"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/metadata"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

// graphReader is the subset of *graphstore.GraphStore the pipeline
// needs to read a namespace's current state; kept narrow so tests can
// substitute a fake.
type graphReader interface {
	Snapshot(ctx context.Context, namespace string) (map[string]metadata.Table, error)
}

// migrationStore is the subset of *migration.Store the pipeline needs.
type migrationStore interface {
	Save(ctx context.Context, m *migration.Migration) error
	GetLastByDBSource(ctx context.Context, dbSource string) (*migration.Migration, error)
}

// applier is the subset of *apply.Applier the pipeline needs.
type applier interface {
	Apply(ctx context.Context, plan classify.ApplyPlan) error
}

var _ applier = (*apply.Applier)(nil)

// Request is the decoded MigrationIn envelope, matching the recognized
// fields table.
type Request struct {
	Name             string
	ConnString       string
	ObjectName       string
	ObjectDBPath     string
	MigrationPattern classify.Pattern
	SourceGuid       string
	SourceName       string
	ObjectGuid       string
	SyncType         string
	IdentityID       string
	Model            string
}

// Pipeline runs the diff-persist-classify-apply sequence for one
// Request against a single source/graph pair.
type Pipeline struct {
	graph          graphReader
	store          migrationStore
	apply          applier
	build          metadata.Factory
	onClassifyWarn func(namespace string, err error)
}

// New returns a Pipeline. build defaults to metadata.Build (the
// scheme-based registry) when nil, letting tests inject a fake
// Extractor factory instead. onClassifyWarn, if non-nil, is called once
// per non-fatal apperrors.ClassificationError the Classifier raises;
// pass nil to ignore them.
func New(graph graphReader, store migrationStore, applier applier, build metadata.Factory, onClassifyWarn func(namespace string, err error)) *Pipeline {
	if build == nil {
		build = metadata.Build
	}
	return &Pipeline{graph: graph, store: store, apply: applier, build: build, onClassifyWarn: onClassifyWarn}
}

// Run executes the full pipeline for req and returns the persisted
// Migration (ready to be rendered into a MigrationOut envelope).
func (p *Pipeline) Run(ctx context.Context, req Request) (*migration.Migration, error) {
	pattern := req.MigrationPattern
	if pattern == (classify.Pattern{}) {
		pattern = classify.DefaultPattern()
	}

	extractor, err := p.build(ctx, req.ConnString)
	if err != nil {
		if schemeErr, ok := err.(metadata.UnsupportedSchemeError); ok {
			return nil, apperrors.UnsupportedBackendError{Scheme: schemeErr.Scheme}
		}
		return nil, apperrors.SourceUnavailableError{DBSource: req.ConnString, Err: err}
	}
	defer extractor.Close()

	sourceBySchema, err := p.listSource(ctx, extractor, req)
	if err != nil {
		return nil, err
	}

	tableCount, err := extractor.CountTables(ctx)
	if err != nil {
		return nil, apperrors.SourceUnavailableError{DBSource: req.ConnString, Err: err}
	}

	dbSourceLabel := req.SourceName
	if dbSourceLabel == "" {
		dbSourceLabel = req.ConnString
	}

	m := &migration.Migration{Name: req.Name, DBSource: dbSourceLabel, TableCount: tableCount}

	prev, err := p.store.GetLastByDBSource(ctx, dbSourceLabel)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		m.PrevMigration = &prev.Guid
	}

	type namespacedSchema struct {
		namespace   string
		schema      migration.Schema
		graphTables map[string]metadata.Table
	}
	var diffs []namespacedSchema

	for schemaName, sourceTables := range sourceBySchema {
		namespace := dbSourceLabel + "." + schemaName

		graphTables, err := p.graph.Snapshot(ctx, namespace)
		if err != nil {
			return nil, err
		}

		sourceMap := make(map[string]metadata.Table, len(sourceTables))
		for _, t := range sourceTables {
			sourceMap[t.Name] = t
		}

		schema := differ.Diff(sourceMap, graphTables)
		if len(schema.Tables) == 0 {
			continue
		}
		schema.Name = schemaName
		diffs = append(diffs, namespacedSchema{namespace: namespace, schema: schema, graphTables: graphTables})
	}

	hubPattern := regexp.MustCompile(pattern.HubPattern)
	hubPKPattern := regexp.MustCompile(pattern.HubPKPattern)

	var plans []classify.ApplyPlan
	for _, d := range diffs {
		candidateHubs := candidateHubNames(d.schema, d.graphTables, hubPattern)
		hubPKs := existingHubPKs(d.graphTables, hubPattern, hubPKPattern)

		plan, classifyErrs := classify.Classify(d.schema, d.namespace, candidateHubs, hubPKs, pattern)
		if p.onClassifyWarn != nil {
			for _, cerr := range classifyErrs {
				p.onClassifyWarn(d.namespace, cerr)
			}
		}

		m.Schemas = append(m.Schemas, d.schema)
		plans = append(plans, plan)
	}

	if err := p.store.Save(ctx, m); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		if err := p.apply.Apply(ctx, plan); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// existingHubPKs scans a namespace's current graph snapshot for tables
// matching the Hub naming pattern and returns each one's detected PK
// field name, seeding the Classifier's resolver for Hubs that aren't
// part of the current diff.
func existingHubPKs(graphTables map[string]metadata.Table, hubPattern, hubPKPattern *regexp.Regexp) map[string]string {
	pks := make(map[string]string)
	for name, table := range graphTables {
		if !hubPattern.MatchString(name) {
			continue
		}
		for field := range table.FieldToType {
			if hubPKPattern.MatchString(field) {
				pks[name] = field
				break
			}
		}
	}
	return pks
}

// listSource returns the source tables grouped by schema, restricted to
// a single table when ObjectName/ObjectDBPath narrow the request.
func (p *Pipeline) listSource(ctx context.Context, extractor metadata.Extractor, req Request) (map[string][]metadata.Table, error) {
	if req.ObjectName == "" {
		tables, err := extractor.ListTables(ctx)
		if err != nil {
			return nil, apperrors.SourceUnavailableError{DBSource: req.ConnString, Err: err}
		}
		return tables, nil
	}

	namespace := req.ObjectDBPath
	if namespace == "" {
		return nil, apperrors.InvalidMigrationRequestError{Reason: "object_name set without object_db_path"}
	}

	table, err := extractor.ListTable(ctx, namespace, req.ObjectName)
	if err != nil {
		return nil, apperrors.SourceUnavailableError{DBSource: req.ConnString, Err: err}
	}
	return map[string][]metadata.Table{namespace: {table}}, nil
}

// candidateHubNames returns every table name in schema or in the
// namespace's graph snapshot that looks like a Hub by naming convention,
// each name once, sorted for deterministic similarity resolution when
// ratios tie.
func candidateHubNames(schema migration.Schema, graphTables map[string]metadata.Table, hubPattern *regexp.Regexp) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] && hubPattern.MatchString(name) {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, table := range schema.Tables {
		name := table.NewName
		if name == "" {
			name = table.OldName
		}
		add(name)
	}
	for name := range graphTables {
		add(name)
	}
	sort.Strings(names)
	return names
}
