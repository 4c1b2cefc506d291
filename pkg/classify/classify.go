// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"regexp"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/apperrors"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

// Classify routes every table in a Schema diff to a Data Vault role by
// foreign-key count and resolves Satellite/Link foreign keys to
// candidateHubs by name similarity. existingHubPKs seeds the resolver
// with the real PK field name of Hubs that exist in the graph already
// but aren't part of this diff (e.g. an unmodified Hub being referenced
// by a brand-new Satellite); Hubs created within this same diff are
// detected and take precedence over that seed. Pass nil when
// no such Hubs are known. Errors returned are always
// apperrors.ClassificationError values: they are non-fatal, and the
// affected table is still present in the returned ApplyPlan, created as
// an isolated node (Sat.Link or Link.MainLink/PairedLink left nil) when
// its role couldn't be fully resolved, or dropped entirely when it has
// more than two foreign keys and therefore has no Data Vault role at
// all.
func Classify(schema migration.Schema, namespace string, candidateHubs []string, existingHubPKs map[string]string, pattern Pattern) (ApplyPlan, []error) {
	hubPK := regexp.MustCompile(pattern.HubPKPattern)
	fk := regexp.MustCompile(pattern.FKPattern)

	plan := ApplyPlan{Namespace: namespace}
	var errs []error

	hubPKByName := make(map[string]string, len(existingHubPKs))
	for name, pk := range existingHubPKs {
		hubPKByName[name] = pk
	}

	type satWork struct {
		table   migration.Table
		fkField migration.Field
	}
	type linkWork struct {
		table    migration.Table
		fkFields []migration.Field
	}
	var sats []satWork
	var links []linkWork

	// First pass: route every table, marking is_key fields as we go and
	// recording each created Hub's actual PK field name so the second
	// pass resolves Sat/Link edges against the real field, not the PK
	// pattern literal.
	for _, table := range schema.Tables {
		markKeyFields(table.Fields, hubPK)

		switch {
		case table.NewName == "" && table.OldName != "":
			plan.TablesToDelete = append(plan.TablesToDelete, table.OldName)

		case table.OldName != "" && table.NewName != "":
			plan.TablesToAlter = append(plan.TablesToAlter, table)

		case table.NewName != "":
			fkFields := matchingFields(table.Fields, fk)
			switch len(fkFields) {
			case 0:
				hub := buildHub(table, hubPK)
				plan.HubsToCreate = append(plan.HubsToCreate, hub)
				if hub.PK != "" {
					hubPKByName[hub.Name] = hub.PK
				}
			case 1:
				sats = append(sats, satWork{table, fkFields[0]})
			case 2:
				links = append(links, linkWork{table, fkFields})
			default:
				errs = append(errs, apperrors.TooManyForeignKeysError{Table: table.NewName, Count: len(fkFields)})
			}
		}
	}

	// Second pass: resolve Sat/Link FKs now that every Hub created in
	// this diff has contributed its PK field name to hubPKByName.
	for _, w := range sats {
		sat, err := buildSat(w.table, w.fkField, candidateHubs, fk, hubPKByName)
		if err != nil {
			errs = append(errs, err)
		}
		plan.SatsToCreate = append(plan.SatsToCreate, sat)
	}
	for _, w := range links {
		link, err := buildLink(w.table, w.fkFields, candidateHubs, fk, hubPKByName)
		if err != nil {
			errs = append(errs, err)
		}
		plan.LinksToCreate = append(plan.LinksToCreate, link)
	}

	return plan, errs
}

// markKeyFields sets IsKey on every field whose name matches the Hub PK
// pattern, in place, so the change is visible to the migration.Table the
// caller is about to persist.
func markKeyFields(fields []migration.Field, hubPK *regexp.Regexp) {
	for i := range fields {
		name := fields[i].NewName
		if name == "" {
			name = fields[i].OldName
		}
		if hubPK.MatchString(name) {
			fields[i].IsKey = true
		}
	}
}

func matchingFields(fields []migration.Field, fk *regexp.Regexp) []migration.Field {
	var matched []migration.Field
	for _, f := range fields {
		if f.NewName != "" && fk.MatchString(f.NewName) {
			matched = append(matched, f)
		}
	}
	return matched
}

func buildHub(table migration.Table, hubPK *regexp.Regexp) Hub {
	hub := Hub{Name: table.NewName, Fields: table.Fields}
	for _, f := range table.Fields {
		if f.NewName != "" && hubPK.MatchString(f.NewName) {
			hub.PK = f.NewName
			break
		}
	}
	return hub
}

func buildSat(table migration.Table, fkField migration.Field, candidateHubs []string, fk *regexp.Regexp, hubPKByName map[string]string) (Sat, error) {
	sat := Sat{Name: table.NewName, Fields: table.Fields}

	stem := fkStem(fkField.NewName, fk)
	hubName, ok := highestSimilarityTable(stem, candidateHubs, table.NewName)
	if !ok {
		return sat, apperrors.AmbiguousLinkReferenceError{Table: table.NewName, Field: fkField.NewName}
	}

	sat.Link = &OneWayLink{Hub: hubName, FK: fkField.NewName, RefTablePK: hubPKByName[hubName]}
	return sat, nil
}

func buildLink(table migration.Table, fkFields []migration.Field, candidateHubs []string, fk *regexp.Regexp, hubPKByName map[string]string) (Link, error) {
	link := Link{Name: table.NewName, Fields: table.Fields}
	var firstErr error

	mainStem := fkStem(fkFields[0].NewName, fk)
	if hubName, ok := highestSimilarityTable(mainStem, candidateHubs, table.NewName); ok {
		link.MainLink = &OneWayLink{Hub: hubName, FK: fkFields[0].NewName, RefTablePK: hubPKByName[hubName]}
	} else {
		firstErr = apperrors.AmbiguousLinkReferenceError{Table: table.NewName, Field: fkFields[0].NewName}
	}

	pairedStem := fkStem(fkFields[1].NewName, fk)
	if hubName, ok := highestSimilarityTable(pairedStem, candidateHubs, table.NewName); ok {
		link.PairedLink = &OneWayLink{Hub: hubName, FK: fkFields[1].NewName, RefTablePK: hubPKByName[hubName]}
	} else if firstErr == nil {
		firstErr = apperrors.AmbiguousLinkReferenceError{Table: table.NewName, Field: fkFields[1].NewName}
	}

	return link, firstErr
}

// fkStem extracts the hub-name stem from a foreign key field name using
// the second capture group of the FK pattern, e.g. "customer_hash_fkey"
// -> "customer" for the default pattern.
func fkStem(fieldName string, fk *regexp.Regexp) string {
	m := fk.FindStringSubmatch(fieldName)
	if len(m) >= 3 {
		return m[2]
	}
	return fieldName
}
