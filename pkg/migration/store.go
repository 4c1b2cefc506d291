// SPDX-License-Identifier: Apache-2.0

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/co-codin/dwh-graph-db-migrater/internal/connstr"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/apperrors"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/db"
)

// Store persists Migration records to the audit Postgres database,
// eagerly loading the full Schema/Table/Field tree on every read so
// callers never need a second round trip, mirroring crud/migration.py's
// selectinload-chained queries.
type Store struct {
	conn   db.DB
	schema string
}

// New opens a connection to the audit database, scoped to schema via the
// same search_path-injection trick as pkg/state.New.
func New(ctx context.Context, auditConnString, schema string) (*Store, error) {
	scopedConnStr, err := connstr.AppendSearchPathOption(auditConnString, schema)
	if err != nil {
		return nil, fmt.Errorf("scoping audit connection string: %w", err)
	}

	conn, err := sql.Open("postgres", scopedConnStr)
	if err != nil {
		return nil, apperrors.AuditUnavailableError{Err: err}
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, apperrors.AuditUnavailableError{Err: err}
	}

	return &Store{conn: &db.RDB{DB: conn}, schema: schema}, nil
}

// Init bootstraps the audit schema, guarded by a single-initializer
// advisory lock so that concurrent processes racing to start up don't
// both try to create the same tables.
func (s *Store) Init(ctx context.Context) error {
	return s.conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", initLockKey); err != nil {
			return err
		}

		stmt := fmt.Sprintf(sqlInit, pq.QuoteIdentifier(s.schema))
		_, err := tx.ExecContext(ctx, stmt)
		return err
	})
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Save persists a new Migration. Guid and CreatedAt/UpdatedAt are set by
// this call if unset; the caller provides everything else including the
// already-computed PrevMigration link.
func (s *Store) Save(ctx context.Context, m *Migration) error {
	if m.Guid == "" {
		m.Guid = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	err := s.conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var migrationID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO migrations (guid, name, db_source, prev_migration, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			m.Guid, m.Name, m.DBSource, m.PrevMigration, m.CreatedAt, m.UpdatedAt).Scan(&migrationID)
		if err != nil {
			return err
		}

		for i, schema := range m.Schemas {
			var schemaID int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO schemas (migration_id, name) VALUES ($1, $2) RETURNING id`,
				migrationID, schema.Name).Scan(&schemaID)
			if err != nil {
				return err
			}
			m.Schemas[i].ID = schemaID

			for j, table := range schema.Tables {
				var tableID int64
				err := tx.QueryRowContext(ctx, `
					INSERT INTO tables (schema_id, old_name, new_name, db) VALUES ($1, $2, $3, $4) RETURNING id`,
					schemaID, table.OldName, table.NewName, table.DB).Scan(&tableID)
				if err != nil {
					return err
				}
				m.Schemas[i].Tables[j].ID = tableID

				for k, f := range table.Fields {
					var fieldID int64
					err := tx.QueryRowContext(ctx, `
						INSERT INTO fields (table_id, old_name, new_name, old_type, new_type, is_key)
						VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
						tableID, f.OldName, f.NewName, f.OldType, f.NewType, f.IsKey).Scan(&fieldID)
					if err != nil {
						return err
					}
					m.Schemas[i].Tables[j].Fields[k].ID = fieldID
				}
			}
		}

		return nil
	})
	if err != nil {
		return apperrors.AuditUnavailableError{Err: err}
	}
	return nil
}

// Get loads a single Migration by guid, eagerly loading its full
// Schema/Table/Field tree.
func (s *Store) Get(ctx context.Context, guid string) (*Migration, error) {
	m, err := s.loadMigrationRow(ctx, "SELECT id, guid, name, db_source, prev_migration, created_at, updated_at FROM migrations WHERE guid = $1", guid)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.MigrationNotFoundError{Guid: guid}
	}
	return m, nil
}

// GetLastByDBSource loads the most recently created Migration for
// dbSource, or nil if none exists yet, mirroring
// _select_last_migration_by_db_source.
func (s *Store) GetLastByDBSource(ctx context.Context, dbSource string) (*Migration, error) {
	return s.loadMigrationRow(ctx, `
		SELECT id, guid, name, db_source, prev_migration, created_at, updated_at
		FROM migrations
		WHERE db_source = $1
		ORDER BY created_at DESC
		LIMIT 1`, dbSource)
}

// loadMigrationRow runs query (expected to return at most one row with
// the Migration's scalar columns), and if found, eagerly loads its
// Schemas/Tables/Fields tree: one query for the Schemas, then one Tables
// query per Schema and one Fields query per Table.
func (s *Store) loadMigrationRow(ctx context.Context, query string, args ...any) (*Migration, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.AuditUnavailableError{Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	var migrationID int64
	var prevMigration sql.NullString
	m := &Migration{}
	if err := rows.Scan(&migrationID, &m.Guid, &m.Name, &m.DBSource, &prevMigration, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, apperrors.AuditUnavailableError{Err: err}
	}
	rows.Close()
	if prevMigration.Valid {
		m.PrevMigration = &prevMigration.String
	}

	schemas, err := s.loadSchemas(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	m.Schemas = schemas
	return m, nil
}

func (s *Store) loadSchemas(ctx context.Context, migrationID int64) ([]Schema, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, name FROM schemas WHERE migration_id = $1 ORDER BY id", migrationID)
	if err != nil {
		return nil, apperrors.AuditUnavailableError{Err: err}
	}
	defer rows.Close()

	var schemas []Schema
	var schemaIDs []int64
	for rows.Next() {
		var sc Schema
		if err := rows.Scan(&sc.ID, &sc.Name); err != nil {
			return nil, apperrors.AuditUnavailableError{Err: err}
		}
		schemas = append(schemas, sc)
		schemaIDs = append(schemaIDs, sc.ID)
	}

	for i, schemaID := range schemaIDs {
		tables, err := s.loadTables(ctx, schemaID)
		if err != nil {
			return nil, err
		}
		schemas[i].Tables = tables
	}
	return schemas, nil
}

func (s *Store) loadTables(ctx context.Context, schemaID int64) ([]Table, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, old_name, new_name, db FROM tables WHERE schema_id = $1 ORDER BY id", schemaID)
	if err != nil {
		return nil, apperrors.AuditUnavailableError{Err: err}
	}
	defer rows.Close()

	var tables []Table
	var tableIDs []int64
	for rows.Next() {
		var tbl Table
		if err := rows.Scan(&tbl.ID, &tbl.OldName, &tbl.NewName, &tbl.DB); err != nil {
			return nil, apperrors.AuditUnavailableError{Err: err}
		}
		tables = append(tables, tbl)
		tableIDs = append(tableIDs, tbl.ID)
	}

	for i, tableID := range tableIDs {
		fields, err := s.loadFields(ctx, tableID)
		if err != nil {
			return nil, err
		}
		tables[i].Fields = fields
	}
	return tables, nil
}

func (s *Store) loadFields(ctx context.Context, tableID int64) ([]Field, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, old_name, new_name, old_type, new_type, is_key FROM fields WHERE table_id = $1 ORDER BY id", tableID)
	if err != nil {
		return nil, apperrors.AuditUnavailableError{Err: err}
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.ID, &f.OldName, &f.NewName, &f.OldType, &f.NewType, &f.IsKey); err != nil {
			return nil, apperrors.AuditUnavailableError{Err: err}
		}
		fields = append(fields, f)
	}
	return fields, nil
}
