package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// TVSExtractor parses TVS Motor pages built on the Sitecore JSS framework.
// The page embeds its full route state as JSON in a __JSS_STATE__ script
// tag; fallbacks cover the GraphQL product-listing shape, single-model
// pages, and bare HTML model cards.
type TVSExtractor struct{}

const tvsParserVersion = "tvs-jss-v1.0"

func (e *TVSExtractor) Brand() string   { return "tvs" }
func (e *TVSExtractor) Version() string { return tvsParserVersion }

func (e *TVSExtractor) CanHandle(url, payload string) bool {
	if strings.Contains(url, "tvsmotor.com") {
		return true
	}
	return strings.Contains(payload, "__JSS_STATE__")
}

var jssStateRe = regexp.MustCompile(`(?s)id="__JSS_STATE__">(.*?)</script>`)

func (e *TVSExtractor) Extract(payload, sourceURL string) *model.ExtractionResult {
	res := &model.ExtractionResult{
		BrandSlug: "tvs",
		Models:    []model.ExtractedModel{},
		Errors:    []string{},
		Logs:      []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Starting TVS extraction", map[string]any{"url": sourceURL})},
	}

	jssMatch := jssStateRe.FindStringSubmatch(payload)
	if jssMatch == nil {
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "JSS_STATE not found", nil))
		fallback := e.modelsFromHTMLCards(payload, sourceURL, res)
		if len(fallback) > 0 {
			res.Logs = append(res.Logs, model.NewLog(model.LogFallbackMode,
				fmt.Sprintf("HTML fallback extracted %d models", len(fallback)), nil))
			res.Models = fallback
			res.Success = true
			return res
		}
		res.Errors = append(res.Errors, "JSS_STATE script tag not found in source payload")
		return res
	}

	if !gjson.Valid(jssMatch[1]) {
		res.Errors = append(res.Errors, "Failed to parse JSS_STATE JSON")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "JSON parse error", nil))
		return res
	}
	jss := gjson.Parse(jssMatch[1])
	res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess, "JSS_STATE parsed successfully", nil))

	vehicles := jss.Get("sitecore.route.fields.Vehicles")
	if !vehicles.Exists() || len(vehicles.Array()) == 0 {
		// Try the jss-main placeholder path.
		for _, block := range jss.Get("sitecore.route.placeholders.jss-main").Array() {
			if v := block.Get("fields.Vehicles"); v.Exists() && len(v.Array()) > 0 {
				vehicles = v
				break
			}
		}
	}

	if len(vehicles.Array()) == 0 {
		if listing := e.modelsFromProductListing(jss, sourceURL, res); len(listing) > 0 {
			res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
				fmt.Sprintf("ProductListing extracted %d models", len(listing)), nil))
			res.Models = listing
			res.Success = true
			return res
		}
	}

	if len(vehicles.Array()) == 0 {
		// Maybe it's a single-model page.
		if single := e.singleModel(jss, sourceURL, res); single != nil {
			res.Models = append(res.Models, *single)
		} else {
			res.Errors = append(res.Errors, "No vehicles found in JSS_STATE structure")
			res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "Empty vehicles array", nil))
		}
		res.Success = len(res.Models) > 0
		return res
	}

	for _, vehicleType := range vehicles.Array() {
		typeName := vehicleType.Get("fields.VehicleTypeName.value").String()
		category := InferCategory(typeName)

		for _, v := range vehicleType.Get("fields.ActiveVehicles").Array() {
			name := v.Get("fields.VehicleName.value").String()
			if name == "" {
				continue
			}
			vID := v.Get("id").String()

			specs := model.Specs{}
			if disp := v.Get("fields.Displacement.value").String(); disp != "" {
				if n, ok := ParseNumeric(disp); ok {
					specs["engine_cc"] = n
				}
			}

			variants := e.variantsOf(v.Get("fields.ActiveVariants"), vID, sourceURL, res)
			res.Models = append(res.Models, model.ExtractedModel{
				Name:       name,
				Category:   category,
				Specs:      specs,
				Variants:   variants,
				Provenance: newProvenance("tvs", sourceURL, tvsParserVersion, firstNonEmpty(vID, name)),
			})
		}
	}

	res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
		fmt.Sprintf("Extracted %d models, %d variants", len(res.Models), res.VariantCount()), nil))
	res.Success = true
	return res
}

// variantsOf walks an ActiveVariants array, shared between the listing and
// single-model shapes.
func (e *TVSExtractor) variantsOf(activeVariants gjson.Result, parentID, sourceURL string, res *model.ExtractionResult) []model.ExtractedVariant {
	var variants []model.ExtractedVariant
	for _, vari := range activeVariants.Array() {
		varName := vari.Get("fields.VariantName.value").String()
		if varName == "" {
			continue
		}
		varID := vari.Get("id").String()

		variant := model.ExtractedVariant{
			Name:       varName,
			Specs:      model.Specs{},
			Provenance: newProvenance("tvs", sourceURL, tvsParserVersion, firstNonEmpty(varID, parentID+"-"+varName)),
		}
		if price := vari.Get("fields.ExShowroomPrice.value").String(); price != "" {
			if n, ok := ParseNumeric(price); ok {
				variant.Price = n
				variant.HasPrice = true
			}
		}

		for _, col := range vari.Get("fields.ActiveColours").Array() {
			colName := firstNonEmpty(
				col.Get("fields.VehicleColor.name").String(),
				col.Get("fields.VehicleColor.value").String(),
			)
			colID := col.Get("id").String()

			var mediaURLs []string
			for _, img := range col.Get("fields.VariantColorImages").Array() {
				imgURL := firstNonEmpty(img.Get("url").String(), img.Get("fields.Image.value.src").String())
				if imgURL == "" {
					continue
				}
				if !strings.HasPrefix(imgURL, "http") {
					imgURL = "https://www.tvsmotor.com" + imgURL
				}
				mediaURLs = append(mediaURLs, imgURL)
			}

			var videoURLs []string
			videos := col.Get("fields.ColorVideos")
			if !videos.Exists() {
				videos = col.Get("fields.Videos")
			}
			for _, vid := range videos.Array() {
				if u := firstNonEmpty(vid.Get("fields.VideoUrl.value").String(), vid.Get("url").String()); u != "" {
					videoURLs = append(videoURLs, u)
				}
			}

			if len(mediaURLs) > 0 {
				res.Logs = append(res.Logs, model.NewLog(model.LogAssetFound,
					fmt.Sprintf("%s: %d images", colName, len(mediaURLs)),
					map[string]any{"color": colName}))
			}

			variant.Colors = append(variant.Colors, model.ExtractedColor{
				Name:       firstNonEmpty(colName, "Unknown Color"),
				HexPrimary: col.Get("fields.ColorHexCode.value").String(),
				Finish:     InferFinish(colName),
				MediaURLs:  mediaURLs,
				VideoURLs:  videoURLs,
				Provenance: newProvenance("tvs", sourceURL, tvsParserVersion, firstNonEmpty(colID, varID+"-"+colName)),
			})
		}

		variants = append(variants, variant)
	}
	return variants
}

// tvsSingleModelFields maps JSS detail-page field names to spec keys.
// Numeric=true fields go through ParseNumeric and are dropped on failure.
var tvsSingleModelFields = []struct {
	field   string
	key     string
	numeric bool
}{
	{"Displacement", "engine_cc", true},
	{"MaxPower", "max_power", false},
	{"MaxTorque", "max_torque", false},
	{"EngineType", "engine_type", false},
	{"CoolingSystem", "cooling_system", false},
	{"Bore", "bore", true},
	{"Stroke", "stroke", true},
	{"CompressionRatio", "compression_ratio", false},
	{"Starting", "starting_method", false},
	{"FuelCapacity", "fuel_capacity", true},
	{"Mileage", "mileage", true},
	{"TopSpeed", "top_speed", true},
	{"KerbWeight", "kerb_weight", true},
	{"GroundClearance", "ground_clearance", true},
	{"SeatHeight", "seat_height", true},
	{"Wheelbase", "wheelbase", true},
	{"Transmission", "transmission_type", false},
	{"Clutch", "clutch_type", false},
	{"ChassisType", "chassis_type", false},
	{"BrakingSystem", "abs_type", false},
	{"FrontBrake", "front_brake_type", false},
	{"RearBrake", "rear_brake_type", false},
}

// singleModel handles detail pages like /tvs-apache-rtr-200-4v where the
// route itself is the vehicle.
func (e *TVSExtractor) singleModel(jss gjson.Result, sourceURL string, res *model.ExtractionResult) *model.ExtractedModel {
	route := jss.Get("sitecore.route")
	if !route.Exists() {
		return nil
	}
	fields := route.Get("fields")
	if !fields.Exists() {
		return nil
	}
	name := firstNonEmpty(fields.Get("VehicleName.value").String(), route.Get("name").String())
	if name == "" {
		return nil
	}

	res.Logs = append(res.Logs, model.NewLog(model.LogExtractorMatch, "Single-model page detected: "+name, nil))

	specs := model.Specs{}
	for _, f := range tvsSingleModelFields {
		raw := fields.Get(f.field + ".value").String()
		if raw == "" {
			continue
		}
		if f.numeric {
			if n, ok := ParseNumeric(raw); ok {
				specs[f.key] = n
			}
		} else {
			specs[f.key] = raw
		}
	}

	return &model.ExtractedModel{
		Name:       name,
		Category:   InferCategory(fields.Get("VehicleType.value").String()),
		Specs:      specs,
		Variants:   e.variantsOf(fields.Get("ActiveVariants"), route.Get("itemId").String(), sourceURL, res),
		Provenance: newProvenance("tvs", sourceURL, tvsParserVersion, firstNonEmpty(route.Get("itemId").String(), name)),
	}
}

// modelsFromProductListing handles the GraphQL-backed "our products" listing
// shape found under the jss-main placeholder.
func (e *TVSExtractor) modelsFromProductListing(jss gjson.Result, sourceURL string, res *model.ExtractionResult) []model.ExtractedModel {
	var models []model.ExtractedModel
	seen := map[string]bool{}

	for _, block := range jss.Get("sitecore.route.placeholders.jss-main").Array() {
		for _, vehicleType := range block.Get("fields.data.Vehicle.children.results").Array() {
			typeName := firstNonEmpty(
				vehicleType.Get("VehicleTypeName.value").String(),
				vehicleType.Get("fields.VehicleTypeName.value").String(),
			)
			category := InferCategory(typeName)

			vehicleFields := vehicleType.Get("Vehicle.fields")
			if !vehicleFields.Exists() {
				vehicleFields = vehicleType.Get("fields.Vehicle.fields")
			}

			for _, v := range vehicleFields.Array() {
				show := v.Get("ShowOnOurProductsPage.value")
				if show.Exists() && (show.String() == "false" || show.String() == "0") {
					continue
				}
				name := strings.TrimSpace(firstNonEmpty(
					v.Get("Title.value").String(),
					v.Get("displayName").String(),
					v.Get("VehicleCode.value").String(),
					v.Get("name").String(),
				))
				if name == "" || seen[strings.ToLower(name)] {
					continue
				}
				seen[strings.ToLower(name)] = true

				specs := model.Specs{}
				for _, s := range v.Get("VehicleSpecification.fields").Array() {
					sName := strings.TrimSpace(s.Get("SpecificationName.value").String())
					sVal := strings.TrimSpace(s.Get("SpecificationValue.value").String())
					if sName == "" || sVal == "" {
						continue
					}
					lower := strings.ToLower(sName)
					switch {
					case strings.Contains(lower, "engine") && strings.Contains(lower, "capacity"):
						if n, ok := ParseNumeric(sVal); ok {
							specs["engine_cc"] = n
						}
					case strings.Contains(lower, "power"):
						specs["max_power"] = sVal
					case strings.Contains(lower, "weight"):
						if n, ok := ParseNumeric(sVal); ok {
							specs["weight_kg"] = n
						}
					case strings.Contains(lower, "range"):
						specs["range_km"] = numericOrString(sVal)
					case strings.Contains(lower, "battery"):
						specs["battery_kwh"] = numericOrString(sVal)
					case strings.Contains(lower, "top speed"):
						specs["top_speed"] = numericOrString(sVal)
					default:
						specs[sName] = sVal
					}
				}
				if electric := v.Get("IsElectric.value"); electric.Bool() || electric.String() == "1" {
					specs["fuel_type"] = "ELECTRIC"
				}

				externalID := firstNonEmpty(v.Get("Link.url").String(), v.Get("VehicleModelId.value").String(), name)
				models = append(models, model.ExtractedModel{
					Name:       name,
					Category:   category,
					Specs:      specs,
					Variants:   []model.ExtractedVariant{},
					Provenance: newProvenance("tvs", sourceURL, tvsParserVersion, externalID),
				})
			}
		}
	}

	if len(models) == 0 {
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "ProductListing found no models", nil))
	}
	return models
}

// modelsFromHTMLCards is the last-resort scrape of listing-page model cards.
// It yields bare model stubs with no specs.
func (e *TVSExtractor) modelsFromHTMLCards(payload, sourceURL string, res *model.ExtractionResult) []model.ExtractedModel {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "HTML fallback: unparsable document", nil))
		return nil
	}

	var models []model.ExtractedModel
	seen := map[string]bool{}
	doc.Find("div.bike-details-main").Each(func(_ int, card *goquery.Selection) {
		name := strings.Join(strings.Fields(card.Find("h3").First().Text()), " ")
		if name == "" || seen[strings.ToLower(name)] {
			return
		}
		seen[strings.ToLower(name)] = true

		href, _ := card.Find("a[href]").First().Attr("href")
		externalID := name
		if href != "" {
			externalID = strings.SplitN(href, "?", 2)[0]
		}
		models = append(models, model.ExtractedModel{
			Name:       name,
			Specs:      model.Specs{},
			Variants:   []model.ExtractedVariant{},
			Provenance: newProvenance("tvs", sourceURL, tvsParserVersion, externalID),
		})
	})

	if len(models) == 0 {
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "HTML fallback found no model cards", nil))
	}
	return models
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
