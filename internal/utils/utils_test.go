package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"nil", nil, nil},
		{"keeps order", []string{"b", "a", "c"}, []string{"b", "a", "c"}},
		{"trims", []string{"  foo ", "bar"}, []string{"foo", "bar"}},
		{"drops repeats after trim", []string{"foo", " foo", "bar", "foo "}, []string{"foo", "bar"}},
		{"drops empties", []string{"", "  ", "x"}, []string{"x"}},
		{"all empty", []string{"", " "}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.values))
		})
	}
}

func TestOrderedMapMarshal(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("z", 1)
	m.Set("m", 3)
	m.Set("a", 2)
	m.Set("z", 4)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":4,"m":3,"a":2}`, string(b))
	assert.Equal(t, []string{"z", "m", "a"}, m.Keys())
}

func TestOrderedMapUnmarshal(t *testing.T) {
	var m OrderedMap[[]string]
	err := json.Unmarshal([]byte(`{"b": ["x"], "a": [], "c": ["y", "z"]}`), &m)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	v, ok := m.Get("c")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "z"}, v)

	assert.Error(t, json.Unmarshal([]byte(`["b"]`), &m))
	assert.Error(t, json.Unmarshal([]byte(`{"b": 1}`), &m))
}
