package pellet_stove

import (
	"encoding/json"
	"fmt"
)

// Keys whose values are composite descriptors the platform consumes as
// an opaque blob (e.g. heating characteristic curves, WLAN feature
// descriptors). They are serialized to their JSON form instead of being
// recursed into.
var compositeKeys = map[string]bool{
	"ht_char":       true,
	"wlan_features": true,
}

// Flatten walks the status document and produces a flat mapping from
// dotted key to scalar. Arrays and allow-listed composite keys are
// serialized to strings, every other nested object is recursed into.
func Flatten(doc StatusDocument) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", map[string]any(doc))
	return flat
}

func flattenInto(flat map[string]any, prefix string, node map[string]any) {
	for key, value := range node {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			if compositeKeys[key] {
				flat[fullKey] = stringifyComposite(v)
			} else {
				flattenInto(flat, fullKey, v)
			}
		case []any:
			flat[fullKey] = stringifyComposite(v)
		default:
			flat[fullKey] = v
		}
	}
}

func stringifyComposite(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(encoded)
}
