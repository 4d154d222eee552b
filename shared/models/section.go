package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SectionDoc is the persisted shape of a page document: an ordered list of
// sections. Array order is display order.
type SectionDoc struct {
	Sections []map[string]interface{} `json:"sections"`
}

// Section is the typed view of one raw section entry, used by the renderer.
// Raw is the full entry including any keys outside the recognized schema.
type Section struct {
	ID          string
	Name        string
	Type        string
	Description string
	Content     map[string]interface{}
	Raw         map[string]interface{}
}

// NormalizeSections turns an arbitrary decoded JSON value into an ordered
// section list. Accepted inputs: an array of section objects, an object
// wrapping {"sections": [...]}, or anything else (treated as empty).
//
// Each entry gets defaults (generated id, empty name/description, type
// falling back to name, empty content map) and then the raw entry is merged
// over the defaults, so every key present in the input wins and unrecognized
// keys survive the round trip. Normalizing already-normalized input returns
// it unchanged apart from map identity.
func NormalizeSections(raw interface{}) []map[string]interface{} {
	entries := sectionEntries(raw)
	out := make([]map[string]interface{}, 0, len(entries))

	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}

		section := map[string]interface{}{
			"id":          uuid.NewString(),
			"name":        "",
			"description": "",
			"type":        defaultSectionType(m),
			"content":     map[string]interface{}{},
		}
		for k, v := range m {
			section[k] = v
		}
		out = append(out, section)
	}
	return out
}

// sectionEntries unwraps the supported input shapes into a plain slice.
func sectionEntries(raw interface{}) []interface{} {
	switch v := raw.(type) {
	case []interface{}:
		return v
	case []map[string]interface{}:
		entries := make([]interface{}, len(v))
		for i, m := range v {
			entries[i] = m
		}
		return entries
	case map[string]interface{}:
		if inner, ok := v["sections"]; ok {
			return sectionEntries(inner)
		}
	}
	return nil
}

// defaultSectionType picks the type default for an entry: its own type,
// falling back to its name, falling back to the empty string.
func defaultSectionType(entry map[string]interface{}) string {
	if t, ok := entry["type"].(string); ok && t != "" {
		return t
	}
	if n, ok := entry["name"].(string); ok {
		return n
	}
	return ""
}

// ParseSection lifts a normalized entry into its typed view.
func ParseSection(entry map[string]interface{}) Section {
	s := Section{Raw: entry, Content: map[string]interface{}{}}
	if v, ok := entry["id"].(string); ok {
		s.ID = v
	}
	if v, ok := entry["name"].(string); ok {
		s.Name = v
	}
	if v, ok := entry["type"].(string); ok {
		s.Type = v
	}
	if v, ok := entry["description"].(string); ok {
		s.Description = v
	}
	if v, ok := entry["content"].(map[string]interface{}); ok {
		s.Content = v
	}
	return s
}

// NormalizeDocument decodes a stored jsonb page document, normalizes its
// sections and re-encodes it. Invalid JSON yields an empty document.
func NormalizeDocument(data datatypes.JSON) datatypes.JSON {
	var decoded interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			decoded = nil
		}
	}

	doc := SectionDoc{Sections: NormalizeSections(decoded)}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return datatypes.JSON([]byte(`{"sections":[]}`))
	}
	return datatypes.JSON(encoded)
}

// DocumentSections decodes a stored jsonb page document into its normalized
// section list.
func DocumentSections(data datatypes.JSON) []map[string]interface{} {
	var decoded interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil
		}
	}
	return NormalizeSections(decoded)
}
