// Package reconcile compares extracted catalog trees against stored records
// and turns the differences into reviewable sync plans. Nothing in this
// package writes to storage except the executor, and the executor only
// applies diffs a plan has already recorded as accepted.
package reconcile

// Policy decides which spec fields reconciliation may touch. Protected
// fields hold curated content and are never overwritten by ingestion; their
// diffs are recorded as rejected so reviewers still see the divergence.
// Skip keys are structural blobs that are managed elsewhere and excluded
// from diffing entirely.
type Policy struct {
	Protected map[string]bool
	SkipKeys  map[string]bool
}

// DefaultPolicy returns the standard protection rules.
func DefaultPolicy() Policy {
	return Policy{
		Protected: map[string]bool{
			"notes":                 true,
			"manual_price_override": true,
			"custom_description":    true,
			"internal_notes":        true,
		},
		SkipKeys: map[string]bool{
			"provenance": true,
			"gallery":    true,
			"media":      true,
			"video_urls": true,
			"pdf_urls":   true,
		},
	}
}

// IsProtected reports whether ingestion may never overwrite the field.
func (p Policy) IsProtected(field string) bool {
	return p.Protected[field]
}

// IsSkipped reports whether the key is excluded from diffing.
func (p Policy) IsSkipped(key string) bool {
	return p.SkipKeys[key]
}
