// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableEqual(t *testing.T) {
	a := Table{Name: "customer_hub", DB: "public", FieldToType: map[string]string{"hash_key": "str", "customer_id": "int"}}
	b := Table{Name: "customer_hub", DB: "public", FieldToType: map[string]string{"customer_id": "int", "hash_key": "str"}}
	c := Table{Name: "customer_hub", DB: "public", FieldToType: map[string]string{"hash_key": "str"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestTableFKCount(t *testing.T) {
	fkPattern := regexp.MustCompile(`^(id)?(.*)_hash_fkey$`)

	hub := Table{FieldToType: map[string]string{"hash_key": "str", "name": "str"}}
	sat := Table{FieldToType: map[string]string{"hash_key": "str", "customer_hash_fkey": "str"}}
	link := Table{FieldToType: map[string]string{"hash_key": "str", "customer_hash_fkey": "str", "order_hash_fkey": "str"}}

	assert.Equal(t, 0, hub.FKCount(fkPattern))
	assert.Equal(t, 1, sat.FKCount(fkPattern))
	assert.Equal(t, 2, link.FKCount(fkPattern))
}

func TestTableFieldNames(t *testing.T) {
	table := Table{FieldToType: map[string]string{"b": "str", "a": "int"}}
	assert.Equal(t, []string{"a", "b"}, table.FieldNames())
}
