package shotprompt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Structured is the open shot-description tree exchanged with the FIBO API.
// The merge and render operations only touch the keys below; everything else
// in the tree survives byte-for-byte, so a tree can round-trip through tuning
// and regeneration without losing provider-side fields.
type Structured map[string]any

const (
	groupPhotographic = "photographic_characteristics"
	groupAesthetics   = "aesthetics"
	groupLighting     = "lighting"

	keyShortDescription = "short_description"
	keyContext          = "context"
	keyCameraAngle      = "camera_angle"
	keyLensFocalLength  = "lens_focal_length"
	keyMoodAtmosphere   = "mood_atmosphere"
	keyColorScheme      = "color_scheme"
	keyConditions       = "conditions"
	keyShadows          = "shadows"
)

// Clone returns a deep copy. Nested maps and slices are copied recursively so
// mutating the clone never aliases the receiver.
func (s Structured) Clone() Structured {
	if s == nil {
		return Structured{}
	}
	return Structured(cloneMap(s))
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Structured:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// group returns the named child map, creating it when absent. A child that
// exists under that key but is not a map is replaced.
func (s Structured) group(name string) map[string]any {
	if existing := groupView(s[name]); existing != nil {
		return existing
	}
	g := map[string]any{}
	s[name] = g
	return g
}

func groupView(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case Structured:
		return t
	default:
		return nil
	}
}

// Decode parses wire bytes that carry the tree either as a JSON object or as
// a JSON string containing the object. A JSON null decodes to a nil tree.
func Decode(raw []byte) (Structured, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("shotprompt: decode wrapper string: %w", err)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}
	var tree map[string]any
	if err := json.Unmarshal(trimmed, &tree); err != nil {
		return nil, fmt.Errorf("shotprompt: decode tree: %w", err)
	}
	return Structured(tree), nil
}
