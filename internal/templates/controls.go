package templates

import (
	"encoding/json"
	"strings"
)

// NormalizeControls turns raw control metadata into descriptors.
//
// Template rows carry controls either as a structured list or as a serialized
// JSON string (sometimes encoded twice). Anything that cannot be read as a
// list of objects yields an empty, non-nil slice. Elements that are not
// objects are skipped.
func NormalizeControls(raw any) []ControlDescriptor {
	switch v := raw.(type) {
	case nil:
		return []ControlDescriptor{}
	case []ControlDescriptor:
		out := make([]ControlDescriptor, len(v))
		copy(out, v)
		return out
	case json.RawMessage:
		return normalizeJSON([]byte(v), 0)
	case []byte:
		return normalizeJSON(v, 0)
	case string:
		return normalizeJSON([]byte(v), 0)
	case []map[string]any:
		out := make([]ControlDescriptor, 0, len(v))
		for _, m := range v {
			out = append(out, descriptorFromMap(m))
		}
		return out
	case []any:
		return normalizeList(v)
	default:
		return []ControlDescriptor{}
	}
}

// maxEncodingDepth bounds how many times a JSON string is unwrapped.
const maxEncodingDepth = 2

func normalizeJSON(b []byte, depth int) []ControlDescriptor {
	if len(strings.TrimSpace(string(b))) == 0 {
		return []ControlDescriptor{}
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return []ControlDescriptor{}
	}
	switch v := decoded.(type) {
	case []any:
		return normalizeList(v)
	case string:
		if depth >= maxEncodingDepth {
			return []ControlDescriptor{}
		}
		return normalizeJSON([]byte(v), depth+1)
	default:
		return []ControlDescriptor{}
	}
}

func normalizeList(items []any) []ControlDescriptor {
	out := make([]ControlDescriptor, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, descriptorFromMap(m))
	}
	return out
}

func descriptorFromMap(m map[string]any) ControlDescriptor {
	var d ControlDescriptor
	if s, ok := m["type"].(string); ok {
		d.Type = s
	}
	if s, ok := m["description"].(string); ok {
		d.Description = s
	}
	switch keys := m["keys"].(type) {
	case []any:
		for _, k := range keys {
			if s, ok := k.(string); ok {
				d.Keys = append(d.Keys, s)
			}
		}
	case []string:
		d.Keys = append(d.Keys, keys...)
	}
	return d
}
