//go:build unit

package main

import (
	"strings"
	"testing"

	"hotel-booking/internal/domain/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func TestParseSeed(t *testing.T) {
	t.Run("正常系: inventory and admin", func(t *testing.T) {
		doc := `
inventory:
  standard: 20
  Deluxe: 10
  suite: 0
admin:
  email: admin@hotel.example
  password_env: ADMIN_PASSWORD
`
		s, err := parseSeed(strings.NewReader(doc), env(map[string]string{"ADMIN_PASSWORD": "s3cret-pass"}))
		require.NoError(t, err)
		assert.Equal(t, inventory.Counts{
			inventory.RoomStandard: 20,
			inventory.RoomDeluxe:   10,
			inventory.RoomSuite:    0,
		}, s.counts)
		require.NotNil(t, s.admin)
		assert.Equal(t, "admin", s.admin.Role)
		assert.Equal(t, "s3cret-pass", s.password)
	})

	t.Run("正常系: inventory only", func(t *testing.T) {
		s, err := parseSeed(strings.NewReader("inventory: {standard: 1, deluxe: 1, suite: 1}"), env(nil))
		require.NoError(t, err)
		assert.Nil(t, s.admin)
	})

	tests := []struct {
		name string
		doc  string
		env  map[string]string
	}{
		{name: "unknown field", doc: "inventory: {standard: 1, deluxe: 1, suite: 1}\nrooms: 3"},
		{name: "unknown room type", doc: "inventory: {standard: 1, deluxe: 1, suite: 1, penthouse: 1}"},
		{name: "negative count", doc: "inventory: {standard: -1, deluxe: 1, suite: 1}"},
		{name: "missing room type", doc: "inventory: {standard: 1, deluxe: 1}"},
		{name: "admin without password env", doc: "inventory: {standard: 1, deluxe: 1, suite: 1}\nadmin: {email: a@b.co}"},
		{name: "admin password env unset", doc: "inventory: {standard: 1, deluxe: 1, suite: 1}\nadmin: {email: a@b.co, password_env: NOPE}"},
	}
	for _, tt := range tests {
		t.Run("異常系: "+tt.name, func(t *testing.T) {
			_, err := parseSeed(strings.NewReader(tt.doc), env(tt.env))
			assert.Error(t, err)
		})
	}
}
