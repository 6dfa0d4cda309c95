package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name string
		root string
		pk   string
		rk   string
		want string
	}{
		{"Plain", "idx", "gat", "42", "idx/people/gat/42"},
		{"NoRoot", "", "gat", "42", "people/gat/42"},
		{"Slash", "idx/", "a/b", "x/y", "idx/people/a%2Fb/x%2Fy"},
		{"Dots", "idx", "..", ".", "idx/people/../."},
		{"Space", "idx", "bill g", "7", "idx/people/bill%20g/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey(tt.root, "people", tt.pk, tt.rk)
			assert.Equal(t, tt.want, key)

			pk, rk, err := ParseObjectKey(tt.root, "people", key)
			require.NoError(t, err)
			assert.Equal(t, tt.pk, pk)
			assert.Equal(t, tt.rk, rk)
		})
	}
}

func TestParseObjectKey_Malformed(t *testing.T) {
	_, _, err := ParseObjectKey("idx", "people", "other/gat/42")
	require.Error(t, err)

	_, _, err = ParseObjectKey("idx", "people", "idx/people/gat")
	require.Error(t, err)
}
