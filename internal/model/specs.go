package model

import (
	"encoding/json"
	"fmt"
)

// Specs is the open attribute map carried by extracted entities and stored
// records. Keys are snake_case attribute names; values are restricted to a
// small closed set of kinds, enforced by Normalize at the extraction
// boundary: float64, string, bool, []string, and nested Provenance (under
// the "provenance" key only).
type Specs map[string]any

// Normalize coerces values into the allowed kinds. Integers become float64,
// []any of strings becomes []string, and anything else is stringified.
// Nil values are dropped: extraction never asserts absence.
func (s Specs) Normalize() Specs {
	out := make(Specs, len(s))
	for k, v := range s {
		if v == nil {
			continue
		}
		switch val := v.(type) {
		case float64, string, bool, []string, Provenance:
			out[k] = val
		case float32:
			out[k] = float64(val)
		case int:
			out[k] = float64(val)
		case int64:
			out[k] = float64(val)
		case json.Number:
			if f, err := val.Float64(); err == nil {
				out[k] = f
			} else {
				out[k] = val.String()
			}
		case []any:
			strs := make([]string, 0, len(val))
			for _, item := range val {
				strs = append(strs, fmt.Sprint(item))
			}
			out[k] = strs
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// Clone returns a shallow copy of the spec map.
func (s Specs) Clone() Specs {
	out := make(Specs, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Record is a stored catalog row: a model family, a vehicle variant, or a
// color unit, depending on which table it came from. Specs carries the open
// attribute map including the nested provenance object.
type Record struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Specs  Specs  `json:"specs"`
}

// ExternalID returns the provenance external id embedded in the record's
// specs, or "" if the record was created by hand.
func (r Record) ExternalID() string {
	prov, ok := r.Specs["provenance"]
	if !ok {
		return ""
	}
	switch p := prov.(type) {
	case Provenance:
		return p.ExternalID
	case map[string]any:
		if id, ok := p["external_id"].(string); ok {
			return id
		}
	}
	return ""
}

// SourceSnapshot is one saved raw payload for an item or brand, retained so
// extraction can be re-run and audited without re-fetching.
type SourceSnapshot struct {
	ID        string `json:"id"`
	SourceURL string `json:"sourceUrl"`
	Payload   string `json:"sourceHtml"`
}
