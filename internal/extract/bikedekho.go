package extract

import (
	"strings"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// BikedekhoExtractor parses BikeDekho aggregator pages. BikeDekho nests its
// JSON-LD in @graph collections and types entities variously as Motorcycle,
// Product, or Vehicle, so the lookup is looser than BikeWale's.
type BikedekhoExtractor struct{}

const bikedekhoParserVersion = "bikedekho-ld-v1.0"

func (e *BikedekhoExtractor) Brand() string   { return "bikedekho" }
func (e *BikedekhoExtractor) Version() string { return bikedekhoParserVersion }

func (e *BikedekhoExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "bikedekho.com")
}

var bikedekhoSpecKeys = map[string]string{
	"Displacement":  "engine_cc",
	"Max Power":     "max_power",
	"Fuel Capacity": "fuel_capacity",
	"Mileage":       "mileage",
	"Kerb Weight":   "kerb_weight",
	"Engine Type":   "engine_type",
	"Front Brake":   "front_brake_type",
	"Rear Brake":    "rear_brake_type",
}

func (e *BikedekhoExtractor) Extract(payload, sourceURL string) *model.ExtractionResult {
	res := &model.ExtractionResult{
		Models: []model.ExtractedModel{},
		Errors: []string{},
		Logs:   []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Starting BikeDekho extraction", map[string]any{"url": sourceURL})},
	}

	blocks := jsonLDBlocks(payload)
	if len(blocks) == 0 {
		res.Errors = append(res.Errors, "No JSON-LD blocks found in source payload")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "No ld+json script tags", nil))
		return res
	}

	entity, ok := findSchemaEntity(blocks, "Motorcycle", "Product", "Vehicle")
	if !ok {
		res.Errors = append(res.Errors, "No vehicle entity found in JSON-LD")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "No Motorcycle/Product/Vehicle entity", nil))
		return res
	}

	name := strings.TrimSpace(entity.Get("name").String())
	if name == "" {
		res.Errors = append(res.Errors, "Vehicle entity has no name")
		return res
	}
	res.BrandSlug = strings.ToLower(strings.TrimSpace(firstNonEmpty(
		entity.Get("brand.name").String(), entity.Get("manufacturer.name").String())))

	specs, propCount := schemaSpecs(entity, bikedekhoSpecKeys)

	// Structured fallbacks for the two specs BikeDekho also exposes as
	// nested schema.org entities.
	if _, has := specs["engine_cc"]; !has {
		if disp := entity.Get("vehicleEngine.engineDisplacement.value"); disp.Exists() {
			specs["engine_cc"] = disp.Float()
		}
	}
	if _, has := specs["mileage"]; !has {
		if eff := strings.TrimSpace(entity.Get("fuelEfficiency.name").String()); eff != "" {
			specs["mileage"] = numericOrString(eff)
		}
	}

	variant := model.ExtractedVariant{
		Name:       "Standard",
		Specs:      model.Specs{},
		Colors:     schemaColors(entity, res.BrandSlug, sourceURL, bikedekhoParserVersion),
		Provenance: newProvenance(res.BrandSlug, sourceURL, bikedekhoParserVersion, "model-base"),
	}
	if price := entity.Get("offers.price"); price.Exists() {
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
		Provenance: newProvenance(res.BrandSlug, sourceURL, bikedekhoParserVersion, "model-"+name),
	})
	res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
		"Extracted "+name+" from JSON-LD", map[string]any{"properties": propCount}))
	res.Success = true
	return res
}
