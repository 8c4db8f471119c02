package reconcile

import (
	"regexp"
	"strings"

	"github.com/bookmybike/catalog-cli/internal/model"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// normalizeName lowers a name and strips everything but letters and digits,
// so "Apache RTR-160" and "apache rtr 160" collapse to the same key.
func normalizeName(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// MatchRecord finds the stored record corresponding to an extracted entity.
// Precedence: provenance external id, exact lowercase name, normalized
// name. Returns nil when nothing matches; the caller treats that as CREATE.
func MatchRecord(existing []model.Record, externalID, name string) *model.Record {
	if externalID != "" {
		for i := range existing {
			if existing[i].ExternalID() == externalID {
				return &existing[i]
			}
		}
	}

	lower := strings.ToLower(name)
	for i := range existing {
		if strings.ToLower(existing[i].Name) == lower {
			return &existing[i]
		}
	}

	normalized := normalizeName(name)
	for i := range existing {
		if normalizeName(existing[i].Name) == normalized {
			return &existing[i]
		}
	}
	return nil
}

// findByID resolves a reviewer's match override to a record.
func findByID(existing []model.Record, id string) *model.Record {
	for i := range existing {
		if existing[i].ID == id {
			return &existing[i]
		}
	}
	return nil
}
