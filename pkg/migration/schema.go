// SPDX-License-Identifier: Apache-2.0

package migration

// sqlInit bootstraps the audit schema that holds the migrations,
// schemas, tables and fields tables. It is templated with %[1]s (the
// quoted schema identifier), mirroring pkg/state's sqlInit bootstrap
// constant.
const sqlInit = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.migrations (
	id              BIGSERIAL PRIMARY KEY,
	guid            TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL,
	db_source       TEXT NOT NULL,
	prev_migration  TEXT REFERENCES %[1]s.migrations (guid),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS migrations_db_source_idx ON %[1]s.migrations (db_source, created_at);

CREATE TABLE IF NOT EXISTS %[1]s.schemas (
	id            BIGSERIAL PRIMARY KEY,
	migration_id  BIGINT NOT NULL REFERENCES %[1]s.migrations (id) ON DELETE CASCADE,
	name          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS %[1]s.tables (
	id         BIGSERIAL PRIMARY KEY,
	schema_id  BIGINT NOT NULL REFERENCES %[1]s.schemas (id) ON DELETE CASCADE,
	old_name   TEXT NOT NULL DEFAULT '',
	new_name   TEXT NOT NULL DEFAULT '',
	db         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS %[1]s.fields (
	id         BIGSERIAL PRIMARY KEY,
	table_id   BIGINT NOT NULL REFERENCES %[1]s.tables (id) ON DELETE CASCADE,
	old_name   TEXT NOT NULL DEFAULT '',
	new_name   TEXT NOT NULL DEFAULT '',
	old_type   TEXT NOT NULL DEFAULT '',
	new_type   TEXT NOT NULL DEFAULT '',
	is_key     BOOLEAN NOT NULL DEFAULT false
);
`

// initLockKey is the fixed advisory lock key used to serialize concurrent
// Init calls against the same audit schema, mirroring pkg/state's use of
// pg_advisory_xact_lock during bootstrap.
const initLockKey = 0x6477685f6d677261 // "dwh_mgra" as hex, arbitrary but stable
