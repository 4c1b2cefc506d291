// SPDX-License-Identifier: Apache-2.0

// Package querybuilder assembles the Cypher statements the Applier sends
// to GraphStore, transcribing the shape of the original's
// age_queries/{hub,sat,link,node}_queries.py templates. Every value that
// originates from discovered schema metadata (table names, field names,
// type names) is rendered through quoteString, never interpolated raw,
// mirroring the original's use of psycopg2.sql.Literal for the same
// purpose.
package querybuilder

import "strings"

// quoteString renders s as a single-quoted Cypher string literal, with
// backslashes and single quotes escaped. This is the only place in the
// package that turns a Go string into Cypher source text.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// mapEntry is one key/value pair of a Cypher map literal; value must
// already be a valid Cypher literal (quoted if it's a string).
type mapEntry struct {
	key   string
	value string
}

func field(key, value string) mapEntry {
	return mapEntry{key: key, value: quoteString(value)}
}

// cypherMap renders entries as a Cypher map literal, e.g.
// {name: 'customer_hub', db: 'public'}.
func cypherMap(entries ...mapEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.key + ": " + e.value
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// cypherList renders items, each already a Cypher literal (typically
// produced by cypherMap), as a Cypher list literal.
func cypherList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// stringList renders a list of plain strings as a Cypher list-of-string
// literal, used for WHERE ... IN [...] clauses.
func stringList(values []string) string {
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = quoteString(v)
	}
	return cypherList(items)
}
