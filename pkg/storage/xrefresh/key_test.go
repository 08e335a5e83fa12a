package xrefresh

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKey(t *testing.T) {
	type tuple struct {
		Group string `json:"group"`
		Day   int    `json:"day"`
	}

	tests := []struct {
		name string
		arg  any
		want string
	}{
		{name: "String", arg: "KB-11", want: "s:KB-11"},
		{name: "EmptyString", arg: "", want: "s:"},
		{name: "Int", arg: 1, want: "j:int:1"},
		{name: "Nil", arg: nil, want: "j:<nil>:null"},
		{name: "Slice", arg: []any{"KB-11", 3}, want: `j:[]interface {}:["KB-11",3]`},
		{name: "Struct", arg: tuple{Group: "KB-11", Day: 3}, want: `j:xrefresh.tuple:{"group":"KB-11","day":3}`},
		{name: "MapSorted", arg: map[string]int{"b": 2, "a": 1}, want: `j:map[string]int:{"a":1,"b":2}`},
		{name: "Time", arg: time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC), want: `j:time.Time:"2024-09-02T08:00:00Z"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultKey(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultKey_StringAndNumberDiffer(t *testing.T) {
	s, err := DefaultKey("1")
	require.NoError(t, err)
	n, err := DefaultKey(1)
	require.NoError(t, err)
	assert.NotEqual(t, s, n)
}

func TestDefaultKey_SameJSONDifferentType(t *testing.T) {
	type day int
	a, err := DefaultKey(3)
	require.NoError(t, err)
	b, err := DefaultKey(day(3))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDefaultKey_UnexportedFields(t *testing.T) {
	type group struct{ name string }
	type mixed struct {
		Week int
		name string
	}
	type inner struct{ Group string }
	type embedded struct {
		inner
		Week int
	}
	type nested struct {
		Groups []any
	}

	tests := []struct {
		name string
		arg  any
	}{
		{name: "AllUnexported", arg: group{name: "A"}},
		{name: "Mixed", arg: mixed{Week: 1, name: "A"}},
		{name: "Pointer", arg: &group{name: "A"}},
		{name: "InSlice", arg: []group{{name: "A"}}},
		{name: "InMap", arg: map[string]group{"a": {name: "A"}}},
		{name: "BehindInterface", arg: nested{Groups: []any{"KB", group{name: "A"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultKey(tt.arg)
			require.ErrorIs(t, err, ErrKey)
			assert.Contains(t, err.Error(), `unexported field "name"`)
		})
	}

	t.Run("EmbeddedStructPromotesFields", func(t *testing.T) {
		a, err := DefaultKey(embedded{inner: inner{Group: "A"}, Week: 1})
		require.NoError(t, err)
		b, err := DefaultKey(embedded{inner: inner{Group: "B"}, Week: 1})
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestDefaultKey_Cycle(t *testing.T) {
	type node struct {
		Name string
		Next *node
	}
	n := &node{Name: "a"}
	n.Next = n

	_, err := DefaultKey(n)
	require.ErrorIs(t, err, ErrKey)
}

func TestDefaultKey_Unencodable(t *testing.T) {
	_, err := DefaultKey(func() {})
	require.ErrorIs(t, err, ErrKey)
}

func FuzzDefaultKey(f *testing.F) {
	f.Add("KB-11")
	f.Add("")
	f.Add(`{"a":1}`)
	f.Fuzz(func(t *testing.T, s string) {
		got, err := DefaultKey(s)
		require.NoError(t, err)
		assert.Equal(t, "s:"+s, got)

		wrapped, err := DefaultKey([]string{s})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(wrapped, "j:"))

		again, err := DefaultKey([]string{s})
		require.NoError(t, err)
		assert.Equal(t, wrapped, again)
	})
}
