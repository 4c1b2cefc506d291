// SPDX-License-Identifier: Apache-2.0

// Package metadata discovers the tables and columns of a relational
// source database and normalizes their column types to a small, portable
// type vocabulary so that the Differ never has to reason about
// source-specific type names.
package metadata

import "sort"

// Table is a structural snapshot of a source-side table: its name, the
// namespace it belongs to ("db") and a map of field name to normalized
// type. Two Tables with the same name, db and field types are considered
// equal regardless of field order.
type Table struct {
	Name         string
	DB           string
	FieldToType  map[string]string
}

// Equal reports whether two tables have the same name, db and field set.
func (t Table) Equal(other Table) bool {
	if t.Name != other.Name || t.DB != other.DB {
		return false
	}
	if len(t.FieldToType) != len(other.FieldToType) {
		return false
	}
	for field, typ := range t.FieldToType {
		otherTyp, ok := other.FieldToType[field]
		if !ok || otherTyp != typ {
			return false
		}
	}
	return true
}

// FieldNames returns the table's field names in sorted order.
func (t Table) FieldNames() []string {
	names := make([]string, 0, len(t.FieldToType))
	for name := range t.FieldToType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FKCount returns the number of fields whose name matches fkPattern,
// mirroring the original ORM model's Table.fk_count(pattern) method.
// pkg/classify does not call it: the Classifier counts foreign keys on
// the migration.Table diff record with its own pattern match.
func (t Table) FKCount(fkPattern Pattern) int {
	count := 0
	for field := range t.FieldToType {
		if fkPattern.MatchString(field) {
			count++
		}
	}
	return count
}

// Pattern is satisfied by *regexp.Regexp; it is expressed as an
// interface so that FKCount's signature does not depend on regexp.
type Pattern interface {
	MatchString(string) bool
}
