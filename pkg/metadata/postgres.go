// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/db"
)

// postgresToSystemType mirrors the original PostgresExtractor's
// _postgres_to_system_types table: it normalizes information_schema
// column types down to the small portable vocabulary the Differ and
// Classifier reason about.
var postgresToSystemType = map[string]string{
	"boolean":                  "bool",
	"character varying":        "str",
	"character":                "str",
	"uuid":                     "str",
	"text":                     "str",
	"smallint":                 "int",
	"integer":                  "int",
	"bigint":                   "int",
	"double precision":         "float",
	"real":                     "float",
	"numeric":                  "float",
	"decimal":                  "float",
	"date":                     "date",
	"timestamp without time zone": "datetime",
	"timestamp with time zone":    "datetime",
	"jsonb":                    "json",
	"json":                     "json",
	"xml":                      "xml",
	"array":                    "list",
}

// PostgresExtractor discovers tables via information_schema, the same
// approach as the original PostgresExtractor.
type PostgresExtractor struct {
	db *sql.DB
}

// NewPostgresExtractor opens a connection to the source Postgres
// database and returns an Extractor over it. It satisfies the
// metadata.Factory signature.
func NewPostgresExtractor(ctx context.Context, connString string) (Extractor, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres source: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres source: %w", err)
	}
	return &PostgresExtractor{db: db}, nil
}

const columnsQuery = `
SELECT table_schema, table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`

// ListTables groups every column visible to the connection into Tables
// keyed by the schema they belong to, mirroring the original's
// create_dataclass_tables helper (which assumes rows pre-sorted by
// table).
func (e *PostgresExtractor) ListTables(ctx context.Context) (map[string][]Table, error) {
	rows, err := e.db.QueryContext(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("listing source columns: %w", err)
	}
	defer rows.Close()

	byNamespace := map[string]map[string]Table{}
	for rows.Next() {
		var schemaName, tableName, columnName, dataType string
		if err := rows.Scan(&schemaName, &tableName, &columnName, &dataType); err != nil {
			return nil, fmt.Errorf("scanning source column: %w", err)
		}

		tables, ok := byNamespace[schemaName]
		if !ok {
			tables = map[string]Table{}
			byNamespace[schemaName] = tables
		}

		table, ok := tables[tableName]
		if !ok {
			table = Table{Name: tableName, DB: schemaName, FieldToType: map[string]string{}}
		}
		table.FieldToType[columnName] = normalizeType(dataType, columnName)
		tables[tableName] = table
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading source columns: %w", err)
	}

	result := make(map[string][]Table, len(byNamespace))
	for ns, tables := range byNamespace {
		list := make([]Table, 0, len(tables))
		for _, t := range tables {
			list = append(list, t)
		}
		result[ns] = list
	}
	return result, nil
}

const countTablesQuery = `
SELECT count(*)
FROM information_schema.tables
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
AND table_type = 'BASE TABLE'`

// CountTables returns the total number of base tables visible to the
// connection, excluding system schemas, for the result envelope's count
// field.
func (e *PostgresExtractor) CountTables(ctx context.Context) (int, error) {
	rows, err := e.db.QueryContext(ctx, countTablesQuery)
	if err != nil {
		return 0, fmt.Errorf("counting source tables: %w", err)
	}
	defer rows.Close()

	var count int
	if err := db.ScanFirstValue(rows, &count); err != nil {
		return 0, fmt.Errorf("scanning source table count: %w", err)
	}
	return count, nil
}

// ListTable implements the object_name/object_db_path single-table
// restriction path: the caller already knows the exact namespace and
// table name and only wants that one table's column types refreshed.
func (e *PostgresExtractor) ListTable(ctx context.Context, namespace, tableName string) (Table, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2`, namespace, tableName)
	if err != nil {
		return Table{}, fmt.Errorf("listing columns for %s.%s: %w", namespace, tableName, err)
	}
	defer rows.Close()

	table := Table{Name: tableName, DB: namespace, FieldToType: map[string]string{}}
	for rows.Next() {
		var columnName, dataType string
		if err := rows.Scan(&columnName, &dataType); err != nil {
			return Table{}, fmt.Errorf("scanning column for %s.%s: %w", namespace, tableName, err)
		}
		table.FieldToType[columnName] = normalizeType(dataType, columnName)
	}
	return table, rows.Err()
}

func (e *PostgresExtractor) Close() error {
	return e.db.Close()
}

// normalizeType maps a Postgres information_schema data_type to the
// portable type vocabulary. columnName is consulted only to apply the
// is_b64 heuristic from the original extractor, which reclassifies
// text/character-varying columns that look like base64 blobs as
// "b64binary" rather than "str".
func normalizeType(dataType, columnName string) string {
	dataType = strings.ToLower(dataType)
	if strings.HasPrefix(dataType, "array") {
		return "list"
	}
	systemType, ok := postgresToSystemType[dataType]
	if !ok {
		return ""
	}
	if systemType == "str" && looksBase64(columnName) {
		return "b64binary"
	}
	return systemType
}

// looksBase64 mirrors the original's is_b64 heuristic. The original
// inspected sample row values; information_schema gives us no row data,
// so the naming-convention fallback is all that's available here.
func looksBase64(columnName string) bool {
	lower := strings.ToLower(columnName)
	for _, suffix := range []string{"_b64", "_base64", "_blob", "_binary"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
