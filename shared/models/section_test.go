package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestNormalizeSectionsDefaults(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{
			"name":    "Hero",
			"content": map[string]interface{}{"title": "Hi"},
		},
	}

	out := NormalizeSections(input)
	require.Len(t, out, 1)

	section := out[0]
	assert.NotEmpty(t, section["id"], "id should be generated when absent")
	assert.Equal(t, "Hero", section["name"])
	assert.Equal(t, "Hero", section["type"], "type falls back to name")
	assert.Equal(t, "", section["description"])
	assert.Equal(t, map[string]interface{}{"title": "Hi"}, section["content"])
}

func TestNormalizeSectionsRawEntryWins(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{
			"id":     "fixed-id",
			"name":   "Hero",
			"type":   "Banner",
			"custom": "kept",
			"nested": map[string]interface{}{"a": float64(1)},
		},
	}

	out := NormalizeSections(input)
	require.Len(t, out, 1)

	section := out[0]
	assert.Equal(t, "fixed-id", section["id"], "explicit id beats the generated one")
	assert.Equal(t, "Banner", section["type"], "explicit type beats the name fallback")
	assert.Equal(t, "kept", section["custom"], "unrecognized keys pass through")
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, section["nested"])
}

func TestNormalizeSectionsUnwrapsDocument(t *testing.T) {
	wrapped := map[string]interface{}{
		"sections": []interface{}{
			map[string]interface{}{"name": "One"},
			map[string]interface{}{"name": "Two"},
		},
	}

	out := NormalizeSections(wrapped)
	require.Len(t, out, 2)
	assert.Equal(t, "One", out[0]["name"])
	assert.Equal(t, "Two", out[1]["name"])
}

func TestNormalizeSectionsEmptyInputs(t *testing.T) {
	assert.Empty(t, NormalizeSections(nil))
	assert.Empty(t, NormalizeSections("not an array"))
	assert.Empty(t, NormalizeSections(map[string]interface{}{"other": 1}))
	assert.Empty(t, NormalizeSections([]interface{}{"not an object"}))
}

func TestNormalizeSectionsPreservesOrder(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"name": "c"},
		map[string]interface{}{"name": "a"},
		map[string]interface{}{"name": "b"},
	}

	out := NormalizeSections(input)
	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0]["name"])
	assert.Equal(t, "a", out[1]["name"])
	assert.Equal(t, "b", out[2]["name"])
}

func TestNormalizeSectionsIdempotent(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"name": "Hero", "content": map[string]interface{}{"title": "Hi"}},
		map[string]interface{}{"type": "Text", "body": "extra"},
	}

	once := NormalizeSections(input)

	asInterface := make([]interface{}, len(once))
	for i, m := range once {
		asInterface[i] = m
	}
	twice := NormalizeSections(asInterface)

	assert.Equal(t, once, twice)
}

func TestNormalizeDocument(t *testing.T) {
	raw := datatypes.JSON([]byte(`{"sections":[{"name":"Hero"}]}`))

	normalized := NormalizeDocument(raw)

	var doc SectionDoc
	require.NoError(t, json.Unmarshal(normalized, &doc))
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Hero", doc.Sections[0]["name"])
	assert.Equal(t, "Hero", doc.Sections[0]["type"])
	assert.NotEmpty(t, doc.Sections[0]["id"])
}

func TestNormalizeDocumentInvalidJSON(t *testing.T) {
	normalized := NormalizeDocument(datatypes.JSON([]byte(`{not json`)))

	var doc SectionDoc
	require.NoError(t, json.Unmarshal(normalized, &doc))
	assert.Empty(t, doc.Sections)
}

func TestParseSection(t *testing.T) {
	entry := map[string]interface{}{
		"id":          "s1",
		"name":        "Hero",
		"type":        "hero",
		"description": "top banner",
		"content":     map[string]interface{}{"title": "Hi"},
		"custom":      true,
	}

	section := ParseSection(entry)
	assert.Equal(t, "s1", section.ID)
	assert.Equal(t, "Hero", section.Name)
	assert.Equal(t, "hero", section.Type)
	assert.Equal(t, "top banner", section.Description)
	assert.Equal(t, "Hi", section.Content["title"])
	assert.Equal(t, true, section.Raw["custom"])
}
