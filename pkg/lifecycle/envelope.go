// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"github.com/co-codin/dwh-graph-db-migrater/pkg/classify"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

// requestEnvelope is the wire shape of a message on the task routing
// key, matching the recognized fields table.
type requestEnvelope struct {
	Name             string                `json:"name"`
	ConnString       string                `json:"conn_string"`
	ObjectName       string                `json:"object_name,omitempty"`
	ObjectDBPath     string                `json:"object_db_path,omitempty"`
	MigrationPattern *migrationPatternJSON `json:"migration_pattern,omitempty"`
	SourceGuid       string                `json:"source_guid,omitempty"`
	SourceName       string                `json:"source_name,omitempty"`
	ObjectGuid       string                `json:"object_guid,omitempty"`
	SyncType         string                `json:"sync_type,omitempty"`
	IdentityID       string                `json:"identity_id,omitempty"`
	Model            string                `json:"model,omitempty"`
}

type migrationPatternJSON struct {
	PKPattern string `json:"pk_pattern,omitempty"`
	FKPattern string `json:"fk_pattern,omitempty"`
	FKTable   string `json:"fk_table,omitempty"`
}

func (p *migrationPatternJSON) toClassifyPattern() classify.Pattern {
	defaults := classify.DefaultPattern()
	pattern := defaults
	if p == nil {
		return pattern
	}
	if p.PKPattern != "" {
		pattern.HubPKPattern = p.PKPattern
	}
	if p.FKPattern != "" {
		pattern.FKPattern = p.FKPattern
	}
	if p.FKTable != "" {
		pattern.SatPattern = p.FKTable
	}
	return pattern
}

// resultEnvelope is the wire shape of a message on the result routing
// key.
type resultEnvelope struct {
	Status         string              `json:"status"`
	SourceGuid     string              `json:"source_guid,omitempty"`
	SourceName     string              `json:"source_name,omitempty"`
	ObjectGuid     string              `json:"object_guid,omitempty"`
	SyncType       string              `json:"sync_type,omitempty"`
	IdentityID     string              `json:"identity_id,omitempty"`
	Model          string              `json:"model,omitempty"`
	GraphMigration *migration.MigrationOut `json:"graph_migration,omitempty"`
	Count          *int                `json:"count,omitempty"`
	Error          string              `json:"error,omitempty"`
}
