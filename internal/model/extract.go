// Package model defines the shared types for the catalog ingestion pipeline:
// the extracted document tree, the audit log, sync plans, and stored records.
package model

import "time"

// Category classifies a vehicle family.
type Category string

const (
	CategoryMotorcycle Category = "MOTORCYCLE"
	CategoryScooter    Category = "SCOOTER"
	CategoryMoped      Category = "MOPED"
)

// Provenance proves where and when an extracted fact came from. It is
// attached to every extracted entity, immutable once created, and persisted
// inside a record's specs so later runs can re-match by external id.
type Provenance struct {
	SourceURL     string    `json:"source_url"`
	FetchedAt     time.Time `json:"fetched_at"`
	ParserVersion string    `json:"parser_version"`
	ExternalID    string    `json:"external_id"`
	BrandSlug     string    `json:"brand_slug"`
}

// ExtractedColor is one color unit of a variant.
type ExtractedColor struct {
	Name         string     `json:"name"`
	HexPrimary   string     `json:"hex_primary,omitempty"`
	HexSecondary string     `json:"hex_secondary,omitempty"`
	Finish       string     `json:"finish,omitempty"`
	MediaURLs    []string   `json:"media_urls"`
	VideoURLs    []string   `json:"video_urls,omitempty"`
	Provenance   Provenance `json:"provenance"`
}

// ExtractedVariant is one trim level of a model.
type ExtractedVariant struct {
	Name       string           `json:"name"`
	Specs      Specs            `json:"specs"`
	Price      float64          `json:"price,omitempty"`
	HasPrice   bool             `json:"has_price,omitempty"`
	Colors     []ExtractedColor `json:"colors"`
	Provenance Provenance       `json:"provenance"`
}

// ExtractedModel is one vehicle family extracted from a source payload.
type ExtractedModel struct {
	Name          string             `json:"name"`
	Category      Category           `json:"category,omitempty"`
	Specs         Specs              `json:"specs"`
	Variants      []ExtractedVariant `json:"variants"`
	Provenance    Provenance         `json:"provenance"`
	RelatedModels []ExtractedModel   `json:"related_models,omitempty"`
}

// ExtractionResult is the outcome of parsing one source payload.
// Success implies at least one model was extracted; a no-extractor match
// returns success=false with RawJSON populated for manual inspection.
type ExtractionResult struct {
	Success   bool             `json:"success"`
	BrandSlug string           `json:"brand_slug"`
	Models    []ExtractedModel `json:"models"`
	RawJSON   any              `json:"raw_json,omitempty"`
	Errors    []string         `json:"errors"`
	Logs      []ExtractorLog   `json:"logs"`
}

// VariantCount returns the total number of variants across all models.
func (r *ExtractionResult) VariantCount() int {
	n := 0
	for _, m := range r.Models {
		n += len(m.Variants)
	}
	return n
}
