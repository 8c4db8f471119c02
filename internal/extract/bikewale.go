package extract

import (
	"strings"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// BikewaleExtractor parses BikeWale aggregator pages via their embedded
// schema.org Product JSON-LD. The brand slug comes from the payload, so a
// single extractor covers every OEM the aggregator lists.
type BikewaleExtractor struct{}

const bikewaleParserVersion = "bikewale-ld-v1.0"

func (e *BikewaleExtractor) Brand() string   { return "bikewale" }
func (e *BikewaleExtractor) Version() string { return bikewaleParserVersion }

func (e *BikewaleExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "bikewale.com")
}

var bikewaleSpecKeys = map[string]string{
	"Displacement":             "engine_cc",
	"Max Power(bhp)":           "max_power",
	"Fuel Tank Capacity":       "fuel_capacity",
	"Mileage - Owner Reported": "mileage",
	"Seat Height":              "seat_height",
	"Top Speed":                "top_speed",
	"Emission Standard":        "emission_standard",
	"Kerb Weight":              "kerb_weight",
	"Global Rating":            "rating_avg",
}

func (e *BikewaleExtractor) Extract(payload, sourceURL string) *model.ExtractionResult {
	res := &model.ExtractionResult{
		Models: []model.ExtractedModel{},
		Errors: []string{},
		Logs:   []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Starting BikeWale extraction", map[string]any{"url": sourceURL})},
	}

	blocks := jsonLDBlocks(payload)
	if len(blocks) == 0 {
		res.Errors = append(res.Errors, "No JSON-LD blocks found in source payload")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "No ld+json script tags", nil))
		return res
	}

	product, ok := findSchemaEntity(blocks, "Product")
	if !ok {
		res.Errors = append(res.Errors, "No schema.org Product entity found")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "Product entity missing from JSON-LD", nil))
		return res
	}

	name := strings.TrimSpace(product.Get("name").String())
	if name == "" {
		res.Errors = append(res.Errors, "Product entity has no name")
		return res
	}
	res.BrandSlug = strings.ToLower(strings.TrimSpace(product.Get("brand.name").String()))

	specs, propCount := schemaSpecs(product, bikewaleSpecKeys)
	if desc := strings.TrimSpace(product.Get("description").String()); desc != "" {
		specs["description"] = desc
	}
	if rating := product.Get("aggregateRating.ratingValue"); rating.Exists() {
		specs["rating_avg"] = rating.Float()
	}

	variant := model.ExtractedVariant{
		Name:       "Standard",
		Specs:      model.Specs{},
		Colors:     schemaColors(product, res.BrandSlug, sourceURL, bikewaleParserVersion),
		Provenance: newProvenance(res.BrandSlug, sourceURL, bikewaleParserVersion, "model-base"),
	}
	if price := product.Get("offers.price"); price.Exists() {
		if n, ok := ParseNumeric(price.String()); ok {
			variant.Price = n
			variant.HasPrice = true
		}
	}

	res.Models = append(res.Models, model.ExtractedModel{
		Name:       name,
		Category:   InferCategory(name),
		Specs:      specs,
		Variants:   []model.ExtractedVariant{variant},
		Provenance: newProvenance(res.BrandSlug, sourceURL, bikewaleParserVersion, "model-"+name),
	})
	res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
		"Extracted "+name+" from JSON-LD", map[string]any{"properties": propCount}))
	res.Success = true
	return res
}
