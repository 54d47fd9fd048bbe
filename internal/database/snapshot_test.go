package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Children(t *testing.T) {
	ref := New(nil, nil, nil).Ref("items")
	snap := newSnapshot(ref, map[string]any{
		"b":   "bee",
		"10":  "ten",
		"a":   "ay",
		"2":   "two",
		"-1":  "minus one",
		"007": "bond",
	})

	assert.Equal(t, []string{"-1", "2", "10", "007", "a", "b"}, childKeys(snap))
	assert.Equal(t, 6, snap.Size())
	assert.True(t, snap.HasChildren())
	assert.Equal(t, "/items/10", snap.Children()[2].Ref().Path())
}

func TestSnapshot_ArrayChildren(t *testing.T) {
	snap := newSnapshot(New(nil, nil, nil).Ref("list"), []any{"a", nil, "c"})

	assert.Equal(t, 2, snap.Size())
	assert.Equal(t, []string{"0", "2"}, childKeys(snap))
	assert.Equal(t, "c", snap.Child("2").Val())
	assert.False(t, snap.HasChild("1"))
	assert.False(t, snap.HasChild("7"))
	assert.False(t, snap.HasChild("x"))
}

func TestSnapshot_Child(t *testing.T) {
	snap := newSnapshot(New(nil, nil, nil).Ref("users"), map[string]any{
		"alice": map[string]any{"profile": map[string]any{"name": "Alice"}},
	})

	name := snap.Child("alice/profile/name")
	assert.True(t, name.Exists())
	assert.Equal(t, "Alice", name.Val())
	assert.Equal(t, "name", name.Key())
	assert.Equal(t, "/users/alice/profile/name", name.Ref().Path())

	missing := snap.Child("bob/profile")
	assert.False(t, missing.Exists())
	assert.Equal(t, "/users/bob/profile", missing.Ref().Path())
	assert.True(t, snap.HasChild("alice/profile"))

	leaf := snap.Child("alice/profile/name/first")
	assert.False(t, leaf.Exists())
	assert.False(t, name.HasChildren())
}

func TestSnapshot_ForEachStops(t *testing.T) {
	snap := newSnapshot(New(nil, nil, nil).Ref("n"), map[string]any{"a": 1.0, "b": 2.0, "c": 3.0})

	var seen []string
	cancelled := snap.ForEach(func(c *DataSnapshot) bool {
		seen = append(seen, c.Key())
		return c.Key() == "b"
	})
	assert.True(t, cancelled)
	assert.Equal(t, []string{"a", "b"}, seen)

	assert.False(t, snap.ForEach(func(*DataSnapshot) bool { return false }))
}

func TestSnapshot_Priority(t *testing.T) {
	ref := New(nil, nil, nil).Ref("p")

	tests := []struct {
		name      string
		raw       any
		wantValue any
		wantPrio  Priority
	}{
		{"none", "plain", "plain", nil},
		{"leaf number", map[string]any{".value": "v", ".priority": 3.0}, "v", NumberPriority(3)},
		{"leaf string", map[string]any{".value": 1.0, ".priority": "high"}, 1.0, StringPriority("high")},
		{"object", map[string]any{"a": 1.0, ".priority": 2.0}, map[string]any{"a": 1.0}, NumberPriority(2)},
		{"value only", map[string]any{".value": true}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := newSnapshot(ref, tt.raw)
			assert.Equal(t, tt.wantValue, snap.Val())
			p, err := snap.Priority()
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrio, p)
		})
	}

	bad := newSnapshot(ref, map[string]any{".value": 1.0, ".priority": true})
	_, err := bad.Priority()
	assert.ErrorIs(t, err, ErrUnexpectedPriority)
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   any
		want Priority
	}{
		{nil, nil},
		{1.5, NumberPriority(1.5)},
		{float32(2), NumberPriority(2)},
		{7, NumberPriority(7)},
		{int64(8), NumberPriority(8)},
		{json.Number("9.5"), NumberPriority(9.5)},
		{"x", StringPriority("x")},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	for _, in := range []any{true, []any{1}, map[string]any{}, json.Number("nope")} {
		_, err := ParsePriority(in)
		assert.ErrorIs(t, err, ErrUnexpectedPriority, "%#v", in)
	}

	assert.Equal(t, 4.0, NumberPriority(4).Value())
	assert.Equal(t, "s", StringPriority("s").Value())
}

func TestCompareKeys(t *testing.T) {
	assert.Negative(t, compareKeys("9", "10"))
	assert.Negative(t, compareKeys("2147483647", "a"))
	assert.Positive(t, compareKeys("2147483648", "3"), "out of 32-bit range sorts as a string")
	assert.Positive(t, compareKeys("01", "1"))
	assert.Zero(t, compareKeys("k", "k"))
}
