// SPDX-License-Identifier: Apache-2.0

// Package apperrors defines the typed error taxonomy shared by every
// component of the migration pipeline: client-caused errors, non-fatal
// classification errors, and fatal backend errors.
package apperrors

import "fmt"

// ClientError is returned when the caller supplied something the pipeline
// cannot act on: an unknown migration guid, a malformed request envelope.
type ClientError interface {
	error
	isClientError()
}

// MigrationNotFoundError is returned when a migration guid does not exist
// in the audit store.
type MigrationNotFoundError struct {
	Guid string
}

func (e MigrationNotFoundError) Error() string {
	return fmt.Sprintf("migration %q not found", e.Guid)
}

func (e MigrationNotFoundError) isClientError() {}

// InvalidMigrationRequestError is returned when a MigrationIn envelope
// is malformed JSON, fails schema validation, or sets object_name
// without object_db_path.
type InvalidMigrationRequestError struct {
	Reason string
}

func (e InvalidMigrationRequestError) Error() string {
	return fmt.Sprintf("invalid migration request: %s", e.Reason)
}

func (e InvalidMigrationRequestError) isClientError() {}

// UnsupportedBackendError is returned when db_source's connection string
// scheme has no registered MetadataExtractor.
type UnsupportedBackendError struct {
	Scheme string
}

func (e UnsupportedBackendError) Error() string {
	return fmt.Sprintf("unsupported source backend %q", e.Scheme)
}

func (e UnsupportedBackendError) isClientError() {}

// ClassificationError is raised by the Classifier when a table's shape
// cannot be resolved to a Hub, Satellite, or Link role. Non-fatal: the
// caller degrades the affected table to an isolated node (or, for
// TooManyForeignKeysError, leaves it out of the plan) and continues.
type ClassificationError interface {
	error
	isClassificationError()
}

// TooManyForeignKeysError is raised when a table has more than two
// foreign keys and therefore has no Data Vault role.
type TooManyForeignKeysError struct {
	Table string
	Count int
}

func (e TooManyForeignKeysError) Error() string {
	return fmt.Sprintf("table %q has %d foreign keys, cannot be classified", e.Table, e.Count)
}

func (e TooManyForeignKeysError) isClassificationError() {}

// AmbiguousLinkReferenceError is raised when a Link's foreign key cannot
// be resolved to exactly one candidate Hub by name similarity.
type AmbiguousLinkReferenceError struct {
	Table string
	Field string
}

func (e AmbiguousLinkReferenceError) Error() string {
	return fmt.Sprintf("field %q of table %q does not resolve to exactly one hub", e.Field, e.Table)
}

func (e AmbiguousLinkReferenceError) isClassificationError() {}

// BackendError represents a fatal failure reaching an external system:
// the source database, the graph store, or the audit store.
type BackendError interface {
	error
	isBackendError()
	Unwrap() error
}

// SourceUnavailableError wraps a failure to connect to or query db_source.
type SourceUnavailableError struct {
	DBSource string
	Err      error
}

func (e SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %s", e.DBSource, e.Err)
}

func (e SourceUnavailableError) Unwrap() error { return e.Err }
func (e SourceUnavailableError) isBackendError() {}

// GraphUnavailableError wraps a failure to connect to or mutate the AGE
// graph store.
type GraphUnavailableError struct {
	Namespace string
	Err       error
}

func (e GraphUnavailableError) Error() string {
	return fmt.Sprintf("graph store unavailable for namespace %q: %s", e.Namespace, e.Err)
}

func (e GraphUnavailableError) Unwrap() error { return e.Err }
func (e GraphUnavailableError) isBackendError() {}

// AuditUnavailableError wraps a failure to read from or write to the
// migration audit store.
type AuditUnavailableError struct {
	Err error
}

func (e AuditUnavailableError) Error() string {
	return fmt.Sprintf("audit store unavailable: %s", e.Err)
}

func (e AuditUnavailableError) Unwrap() error { return e.Err }
func (e AuditUnavailableError) isBackendError() {}

// InternalError is the catch-all for errors that don't fit the taxonomy
// above: programmer errors, unexpected panics recovered at a boundary.
type InternalError struct {
	Err error
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Err)
}

func (e InternalError) Unwrap() error { return e.Err }
