package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// HeroExtractor parses Hero MotoCorp's AEM pages. The mega-menu drawer
// carries a data-vehicles JSON attribute for model discovery; detail pages
// expose specs as h5 label / h4 value pairs.
type HeroExtractor struct{}

const heroParserVersion = "hero-aem-v1.0"

func (e *HeroExtractor) Brand() string   { return "hero" }
func (e *HeroExtractor) Version() string { return heroParserVersion }

func (e *HeroExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "heromotocorp.com")
}

var heroTitleRe = regexp.MustCompile(`(?i)<title>(.*?)</title>`)
var heroOGTitleRe = regexp.MustCompile(`(?i)<meta property="og:title" content="(.*?)"`)

func (e *HeroExtractor) Extract(payload, sourceURL string) *model.ExtractionResult {
	res := &model.ExtractionResult{
		BrandSlug: "hero",
		Models:    []model.ExtractedModel{},
		Errors:    []string{},
		Logs:      []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Starting Hero extraction", map[string]any{"url": sourceURL})},
	}

	// 1. Model discovery via the mega-menu vehicle drawer.
	if strings.Contains(payload, "drawer-fragment") && strings.Contains(payload, "data-vehicles") {
		discovery := e.modelsFromDataVehicles(payload, sourceURL, res)
		if len(discovery) > 0 {
			res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
				fmt.Sprintf("Extracted %d models from data-vehicles", len(discovery)), nil))
			res.Models = discovery
			res.Success = true
			return res
		}
	}

	// 2. Single model/variant detail page.
	specs := e.specsFromDetailPage(payload)
	if len(specs) > 0 {
		name := "Unknown"
		if m := heroOGTitleRe.FindStringSubmatch(payload); m != nil {
			name = m[1]
		} else if m := heroTitleRe.FindStringSubmatch(payload); m != nil {
			name = m[1]
		}
		name = strings.TrimSpace(strings.SplitN(name, ":", 2)[0])
		// "Hero Xpulse 200 4V" -> "Xpulse 200 4V"
		name = strings.TrimSpace(regexp.MustCompile(`(?i)^Hero\s+`).ReplaceAllString(name, ""))

		res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess, "Extracted specs for "+name, nil))
		res.Models = append(res.Models, model.ExtractedModel{
			Name:       name,
			Specs:      specs,
			Variants:   []model.ExtractedVariant{},
			Provenance: newProvenance("hero", sourceURL, heroParserVersion, sourceURL),
		})
		res.Success = true
		return res
	}

	res.Errors = append(res.Errors, "No Hero-specific data structures found on this page.")
	return res
}

func (e *HeroExtractor) modelsFromDataVehicles(payload, sourceURL string, res *model.ExtractionResult) []model.ExtractedModel {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "data-vehicles: unparsable document", nil))
		return nil
	}

	var models []model.ExtractedModel
	seen := map[string]bool{}
	stripTags := regexp.MustCompile(`<[^>]*>`)

	doc.Find("div.drawer-fragment[data-vehicles]").Each(func(_ int, frag *goquery.Selection) {
		raw, _ := frag.Attr("data-vehicles")
		if !gjson.Valid(raw) {
			res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "Failed to parse data-vehicles JSON", nil))
			return
		}
		for _, v := range gjson.Parse(raw).Array() {
			name := firstNonEmpty(v.Get("vehicleName").String(), v.Get("vehicleModelName").String())
			if name == "" || seen[strings.ToLower(name)] {
				continue
			}
			seen[strings.ToLower(name)] = true

			specs := model.Specs{}
			if short := v.Get("vehicleSpec").String(); short != "" {
				specs["hero_short_spec"] = strings.TrimSpace(stripTags.ReplaceAllString(short, ""))
			}

			models = append(models, model.ExtractedModel{
				Name:       name,
				Category:   InferCategory(name),
				Specs:      specs,
				Variants:   []model.ExtractedVariant{},
				Provenance: newProvenance("hero", sourceURL, heroParserVersion, firstNonEmpty(v.Get("vehicleId").String(), name)),
			})
		}
	})

	return models
}

var heroSpecKeys = map[string]string{
	"Max. Power":         "max_power",
	"Max. Torque":        "max_torque",
	"Displacement":       "engine_cc",
	"Type":               "engine_type",
	"Front Tyre":         "front_tyre",
	"Rear Tyre":          "rear_tyre",
	"Fuel Tank Capacity": "fuel_capacity",
	"Kerb Weight":        "kerb_weight",
	"Overall Length":     "length",
	"Overall Height":     "height",
	"Overall Width":      "width",
	"Seat Height":        "seat_height",
	"Wheelbase":          "wheelbase",
	"Ground Clearance":   "ground_clearance",
	"Transmission Type":  "transmission_type",
	"Clutch Type":        "clutch_type",
	"Instrument Cluster": "instrument_cluster",
	"Headlamp":           "headlamp_type",
	"Suspension (Front)": "front_suspension",
	"Front Suspension":   "front_suspension",
	"Suspension (Rear)":  "rear_suspension",
	"Rear Suspension":    "rear_suspension",
}

// specsFromDetailPage reads h5 label / h4 value sibling pairs.
func (e *HeroExtractor) specsFromDetailPage(payload string) model.Specs {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		return nil
	}

	specs := model.Specs{}
	doc.Find("h5").Each(func(_ int, label *goquery.Selection) {
		value := label.Next()
		if !value.Is("h4") {
			return
		}
		rawKey := strings.TrimSpace(label.Text())
		rawVal := strings.TrimSpace(value.Text())
		if rawKey == "" || rawVal == "" {
			return
		}
		key, ok := heroSpecKeys[rawKey]
		if !ok {
			key = standardKey(rawKey)
		}
		specs[key] = numericOrString(rawVal)
	})
	return specs
}
