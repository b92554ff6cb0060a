package pellet_stove

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenNestedObjects(t *testing.T) {
	doc := StatusDocument{
		"prg":     true,
		"sp_temp": 21.0,
		"meta": map[string]any{
			"sw_version": "V60.14",
			"nonce":      "abc",
			"error": map[string]any{
				"nr": 21.0,
			},
		},
	}

	flat := Flatten(doc)

	assert.Equal(t, true, flat["prg"])
	assert.Equal(t, 21.0, flat["sp_temp"])
	assert.Equal(t, "V60.14", flat["meta.sw_version"])
	assert.Equal(t, 21.0, flat["meta.error.nr"])
	assert.NotContains(t, flat, "meta")
}

func TestFlattenArraysSerializedToJSON(t *testing.T) {
	doc := StatusDocument{
		"zone": []any{true, false},
	}

	flat := Flatten(doc)

	assert.Equal(t, "[true,false]", flat["zone"])
}

func TestFlattenCompositeAllowList(t *testing.T) {
	doc := StatusDocument{
		"ht_char": map[string]any{
			"slope": 1.5,
		},
		"meta": map[string]any{
			"wlan_features": []any{"wps"},
		},
	}

	flat := Flatten(doc)

	// composites are kept whole, not recursed
	assert.Equal(t, `{"slope":1.5}`, flat["ht_char"])
	assert.Equal(t, `["wps"]`, flat["meta.wlan_features"])
	assert.NotContains(t, flat, "ht_char.slope")
}
