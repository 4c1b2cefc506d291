// SPDX-License-Identifier: Apache-2.0

// Package migration defines the persisted Migration/Schema/Table/Field
// diff records and the Store that loads and saves them, mirroring the
// original SQLAlchemy models in models/migrations.py and the audit
// queries in crud/migration.py.
package migration

import "time"

// Field is a single-column diff record. A Field that only appears in
// NewName/NewType is a create; one that only appears in OldName/OldType
// is a delete; one with both set (and differing) is an alter.
type Field struct {
	ID      int64
	OldName string
	NewName string
	OldType string
	NewType string
	IsKey   bool
}

// Table is a diff record for a single source table: a rename (OldName
// != NewName), a pure create (OldName == ""), a pure delete (NewName ==
// ""), or an in-place alter (OldName == NewName, non-empty Fields).
type Table struct {
	ID      int64
	OldName string
	NewName string
	DB      string
	Fields  []Field
}

// Schema groups every Table diff record discovered for one namespace
// (db_source.schema) within a single migration.
type Schema struct {
	ID     int64
	Name   string
	Tables []Table
}

// Migration is an immutable, versioned record of a schema diff. Each
// Migration for a given DBSource may point at the Migration that
// preceded it, forming a singly linked list ordered by CreatedAt.
type Migration struct {
	Guid          string
	Name          string
	DBSource      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PrevMigration *string
	Schemas       []Schema

	// TableCount is the MetadataExtractor's count_tables() result at the
	// time this Migration ran: the total number of base tables visible
	// on the source, not the number of tables this diff touched. It is
	// not persisted by Store.Save/Get — it only matters for the instant
	// the pipeline renders its result envelope.
	TableCount int
}
