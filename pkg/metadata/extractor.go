// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"context"
	"fmt"
	"net/url"
)

// Extractor discovers tables and their column types from a source
// database. Implementations are registered against the scheme of the
// source's connection string (e.g. "postgresql").
type Extractor interface {
	// ListTables returns every table visible to the connection, grouped
	// by source schema name (without the db_source prefix).
	ListTables(ctx context.Context) (map[string][]Table, error)

	// ListTable returns a single named table, used for the
	// object_name/object_db_path single-table restriction path.
	ListTable(ctx context.Context, namespace, tableName string) (Table, error)

	// CountTables returns the total number of base tables visible to the
	// connection, excluding system schemas, for the result envelope.
	CountTables(ctx context.Context) (int, error)

	// Close releases the underlying connection.
	Close() error
}

// Factory constructs an Extractor from a connection string.
type Factory func(ctx context.Context, connString string) (Extractor, error)

// registry maps a connection string URL scheme to the Factory that can
// build an Extractor for it, mirroring the original
// MetaDataExtractorFactory.build dispatch.
var registry = map[string]Factory{
	"postgres":   NewPostgresExtractor,
	"postgresql": NewPostgresExtractor,
}

// Register adds or replaces the Factory used for a connection string
// scheme. Exported so that a host binary can register additional
// backends without modifying this package.
func Register(scheme string, factory Factory) {
	registry[scheme] = factory
}

// Build dispatches to the Factory registered for connString's scheme.
func Build(ctx context.Context, connString string) (Extractor, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	factory, ok := registry[u.Scheme]
	if !ok {
		return nil, UnsupportedSchemeError{Scheme: u.Scheme}
	}
	return factory(ctx, connString)
}

// UnsupportedSchemeError is returned by Build when no Extractor is
// registered for the connection string's scheme.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("no metadata extractor registered for scheme %q", e.Scheme)
}
