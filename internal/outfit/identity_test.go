package outfit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name     string
		outfit   Outfit
		expected string
	}{
		{
			name:     "prefers image",
			outfit:   Outfit{Name: "Look", Image: "https://cdn/a.png"},
			expected: "image:https://cdn/a.png",
		},
		{
			name:     "trims image",
			outfit:   Outfit{Image: "  a.png "},
			expected: "image:a.png",
		},
		{
			name:     "falls back to name",
			outfit:   Outfit{Name: "Street Style", Image: "   "},
			expected: "name:Street Style",
		},
		{
			name:     "empty record serializes",
			outfit:   Outfit{},
			expected: "{}",
		},
		{
			name: "record with only extras serializes sorted",
			outfit: Outfit{Extra: map[string]json.RawMessage{
				"z": json.RawMessage(`1`),
				"a": json.RawMessage(`"x"`),
			}},
			expected: `{"a":"x","z":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IdentityKey(tt.outfit))
		})
	}
}

func TestIdentityKeyInvalidExtrasStayDistinct(t *testing.T) {
	a := Outfit{Extra: map[string]json.RawMessage{"id": json.RawMessage(`{bad`)}}
	b := Outfit{Extra: map[string]json.RawMessage{"id": json.RawMessage(`{worse`)}}
	c := Outfit{Extra: map[string]json.RawMessage{"id": json.RawMessage(`{bad`)}}

	assert.NotEqual(t, IdentityKey(a), IdentityKey(b))
	assert.Equal(t, IdentityKey(a), IdentityKey(c))
	assert.Len(t, Dedupe([]Outfit{a, b, c}), 2)
}

func TestDedupePreservesFirstOccurrence(t *testing.T) {
	in := []Outfit{
		{Image: "a.png", Name: "first"},
		{Image: "b.png"},
		{Image: "a.png", Name: "second"},
		{Name: "named"},
		{Name: "named", Tags: []string{"x"}},
		{},
		{},
		{Extra: map[string]json.RawMessage{"id": json.RawMessage(`7`)}},
	}

	out := Dedupe(in)

	require.Len(t, out, 5)
	assert.Equal(t, "first", out[0].Name)
	assert.Equal(t, "b.png", out[1].Image)
	assert.Equal(t, "named", out[2].Name)
	assert.Nil(t, out[2].Tags)
	assert.Equal(t, Outfit{}, out[3])
	assert.Contains(t, out[4].Extra, "id")
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := []Outfit{
		{Image: "a.png"}, {Image: "a.png"}, {Name: "n"}, {Image: "c.png"}, {Name: "n"},
	}
	once := Dedupe(in)
	assert.Equal(t, once, Dedupe(once))
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}

func TestInferFilename(t *testing.T) {
	tests := []struct {
		name     string
		outfit   Outfit
		expected string
	}{
		{"uses name", Outfit{Name: " Sunday Brunch ", Image: "https://cdn/x.png"}, "Sunday Brunch"},
		{"uses url path", Outfit{Image: "https://cdn.example.com/looks/42.png?v=3"}, "42.png"},
		{"uses relative path", Outfit{Image: "looks/43.png?size=large"}, "43.png"},
		{"falls back", Outfit{}, "wardrobe_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InferFilename(tt.outfit, "wardrobe_1"))
		})
	}
}
