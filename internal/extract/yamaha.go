package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// YamahaExtractor parses Yamaha Motor India's plain-HTML pages: the mobile
// navigation menu doubles as a model listing, and detail pages carry a
// two-column spec table.
type YamahaExtractor struct{}

const yamahaParserVersion = "yamaha-dom-v1.0"

func (e *YamahaExtractor) Brand() string   { return "yamaha" }
func (e *YamahaExtractor) Version() string { return yamahaParserVersion }

func (e *YamahaExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "yamaha-motor-india.com")
}

func (e *YamahaExtractor) Extract(payload, sourceURL string) *model.ExtractionResult {
	res := &model.ExtractionResult{
		BrandSlug: "yamaha",
		Models:    []model.ExtractedModel{},
		Errors:    []string{},
		Logs:      []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Starting Yamaha extraction", map[string]any{"url": sourceURL})},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		res.Errors = append(res.Errors, "Unparsable HTML payload")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "goquery parse error", nil))
		return res
	}

	// 1. Listing page: models enumerated in the mobile menu.
	if menuModels := e.modelsFromMenu(doc, sourceURL); len(menuModels) > 0 {
		res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
			fmt.Sprintf("Menu extracted %d models", len(menuModels)), nil))
		res.Models = menuModels
		res.Success = true
		return res
	}

	// 2. Detail page: spec table.
	if specs := e.specsFromTable(doc); len(specs) > 0 {
		name := "Unknown Yamaha"
		if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
			name = h1
		} else if title := doc.Find("title").First().Text(); title != "" {
			name = strings.TrimSpace(strings.ReplaceAll(strings.SplitN(title, "|", 2)[0], "Yamaha", ""))
		}

		res.Models = append(res.Models, model.ExtractedModel{
			Name:       name,
			Specs:      specs,
			Variants:   []model.ExtractedVariant{},
			Provenance: newProvenance("yamaha", sourceURL, yamahaParserVersion, sourceURL),
		})
		res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess, "Detail page extracted for "+name, nil))
		res.Success = true
		return res
	}

	res.Errors = append(res.Errors, "No Yamaha models or specs found in source payload")
	return res
}

func (e *YamahaExtractor) modelsFromMenu(doc *goquery.Document, sourceURL string) []model.ExtractedModel {
	var models []model.ExtractedModel
	seen := map[string]bool{}

	doc.Find("li.mob-li").Each(func(_ int, menu *goquery.Selection) {
		categoryRaw := menu.Find("a").First().Text()
		category := model.CategoryMotorcycle
		if strings.Contains(strings.ToUpper(categoryRaw), "SCOOTER") {
			category = model.CategoryScooter
		}

		menu.Find("div.mob-sub-menu li a").Each(func(_ int, item *goquery.Selection) {
			name := strings.TrimSpace(item.Text())
			if name == "" || strings.Contains(name, "View all") || strings.Contains(name, "Click here") {
				return
			}
			if seen[strings.ToLower(name)] {
				return
			}
			seen[strings.ToLower(name)] = true

			href, _ := item.Attr("href")
			models = append(models, model.ExtractedModel{
				Name:       name,
				Category:   category,
				Specs:      model.Specs{},
				Variants:   []model.ExtractedVariant{},
				Provenance: newProvenance("yamaha", sourceURL, yamahaParserVersion, firstNonEmpty(href, name)),
			})
		})
	})

	return models
}

var yamahaSpecKeys = map[string]string{
	"Engine type":                     "engine_type",
	"Displacement":                    "engine_cc",
	"Bore & stroke":                   "bore_stroke",
	"Compression ratio":               "compression_ratio",
	"Maximum horse power":             "max_power",
	"Maximum torque":                  "max_torque",
	"Starting system type":            "starting_method",
	"Lubrication system":              "lubrication_system",
	"Overall length x width x height": "dimensions",
	"Seat height":                     "seat_height",
	"Wheel base":                      "wheelbase",
	"Minimum ground clearance":        "ground_clearance",
	"Kerb weight":                     "kerb_weight",
	"Fuel tank capacity":              "fuel_capacity",
	"Tyre size (Front)":               "front_tyre_size",
	"Tyre size (Rear)":                "rear_tyre_size",
	"Brake type (Front)":              "front_brake_type",
	"Brake type (Rear)":               "rear_brake_type",
	"Suspension type (Front)":         "front_suspension",
	"Suspension type (Rear)":          "rear_suspension",
	"Frame type":                      "frame_type",
	"Ignition system type":            "ignition_system",
}

var collapseSpace = regexp.MustCompile(`\s+`)

func (e *YamahaExtractor) specsFromTable(doc *goquery.Document) model.Specs {
	specs := model.Specs{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		rawKey := strings.TrimSpace(collapseSpace.ReplaceAllString(cells.Eq(0).Text(), " "))
		rawVal := strings.TrimSpace(collapseSpace.ReplaceAllString(cells.Eq(1).Text(), " "))
		if rawKey == "" || rawVal == "" {
			return
		}
		key, ok := yamahaSpecKeys[rawKey]
		if !ok {
			key = standardKey(rawKey)
		}
		specs[key] = numericOrString(rawVal)
	})
	return specs
}
