package reconcile

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// ComputeDiffs compares current stored specs against incoming extracted
// specs field by field. A nil or absent incoming value produces no diff:
// extraction never asserts absence. Equal values (by JSON encoding, so 150
// and 150.0 compare equal) produce no diff. Protected fields yield rejected
// diffs so the divergence stays visible to reviewers.
func ComputeDiffs(current, incoming model.Specs, policy Policy) []model.FieldDiff {
	keys := make(map[string]bool, len(current)+len(incoming))
	for k := range current {
		keys[k] = true
	}
	for k := range incoming {
		keys[k] = true
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var diffs []model.FieldDiff
	for _, key := range sorted {
		if policy.IsSkipped(key) {
			continue
		}
		incomingVal, ok := incoming[key]
		if !ok || incomingVal == nil {
			continue
		}
		currentVal := current[key]
		if jsonEqual(currentVal, incomingVal) {
			continue
		}

		action := model.DiffAccept
		if policy.IsProtected(key) {
			action = model.DiffReject
		}
		diffs = append(diffs, model.FieldDiff{
			Field:    key,
			Current:  currentVal,
			Incoming: incomingVal,
			Action:   action,
		})
	}
	return diffs
}

// MergeSpecs applies the accepted diffs on top of base and stamps the new
// provenance. Base is never mutated; rejected diffs leave the base value in
// place, and base fields without diffs survive untouched.
func MergeSpecs(base model.Specs, diffs []model.FieldDiff, prov model.Provenance) model.Specs {
	merged := base.Clone()
	if merged == nil {
		merged = model.Specs{}
	}
	for _, d := range diffs {
		if d.Action == model.DiffAccept {
			merged[d.Field] = d.Incoming
		}
	}
	merged["provenance"] = prov
	return merged
}

func jsonEqual(a, b any) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
