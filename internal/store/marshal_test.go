package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalColumns(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		want string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"plain", []string{"a", "b"}, `["a","b"]`},
		{"no html escaping", []string{"<x>&"}, `["<x>&"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalColumns(tt.cols)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalColumns(t *testing.T) {
	got, err := unmarshalColumns("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	got, err = unmarshalColumns(`["a","b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = unmarshalColumns("{")
	assert.Error(t, err)
}
