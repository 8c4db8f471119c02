package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// BajajExtractor parses Bajaj Auto's HTML pages: listing pages expose model
// cards (with a handful of inline specs and a price), detail pages expose
// label/value spec containers.
type BajajExtractor struct{}

const bajajParserVersion = "bajaj-dom-v1.0"

func (e *BajajExtractor) Brand() string   { return "bajaj" }
func (e *BajajExtractor) Version() string { return bajajParserVersion }

func (e *BajajExtractor) CanHandle(url, _ string) bool {
	return strings.Contains(url, "bajajauto.com")
}

func (e *BajajExtractor) Extract(payload, sourceURL string) *model.ExtractionResult {
	res := &model.ExtractionResult{
		BrandSlug: "bajaj",
		Models:    []model.ExtractedModel{},
		Errors:    []string{},
		Logs:      []model.ExtractorLog{model.NewLog(model.LogInitFetch, "Starting Bajaj extraction", map[string]any{"url": sourceURL})},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		res.Errors = append(res.Errors, "Unparsable HTML payload")
		res.Logs = append(res.Logs, model.NewLog(model.LogParseFail, "goquery parse error", nil))
		return res
	}

	// 1. Listing page discovery.
	if strings.Contains(payload, "listingBoxSec") {
		if listing := e.modelsFromListing(doc, sourceURL); len(listing) > 0 {
			res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess,
				fmt.Sprintf("Listing extracted %d models", len(listing)), nil))
			res.Models = listing
			res.Success = true
			return res
		}
	}

	// 2. Detail page spec extraction.
	if specs := e.specsFromDetailPage(doc); len(specs) > 0 {
		name := "Unknown Bajaj"
		if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
			name = h1
		} else if title := doc.Find("title").First().Text(); title != "" {
			name = strings.TrimSpace(strings.ReplaceAll(strings.SplitN(title, "|", 2)[0], "Bajaj", ""))
		}

		res.Models = append(res.Models, model.ExtractedModel{
			Name:       name,
			Specs:      specs,
			Variants:   []model.ExtractedVariant{},
			Provenance: newProvenance("bajaj", sourceURL, bajajParserVersion, sourceURL),
		})
		res.Logs = append(res.Logs, model.NewLog(model.LogParseSuccess, "Detail page extracted for "+name, nil))
		res.Success = true
		return res
	}

	res.Errors = append(res.Errors, "No Bajaj models or specs found in source payload")
	return res
}

func (e *BajajExtractor) modelsFromListing(doc *goquery.Document, sourceURL string) []model.ExtractedModel {
	var models []model.ExtractedModel
	seen := map[string]bool{}

	doc.Find("div.listingBoxSec[data-model-name]").Each(func(_ int, card *goquery.Selection) {
		name, _ := card.Attr("data-model-name")
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			return
		}
		seen[strings.ToLower(name)] = true

		var href string
		card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(a.Text(), "Explore Now") {
				href, _ = a.Attr("href")
				return false
			}
			return true
		})
		externalID := name
		if href != "" {
			parts := strings.Split(href, "/")
			if last := parts[len(parts)-1]; last != "" {
				externalID = last
			}
		}

		// Card-level mini specs listed as "<li>Engine <span>...</span></li>".
		specs := model.Specs{}
		card.Find("li").Each(func(_ int, li *goquery.Selection) {
			label := strings.TrimSpace(strings.TrimSuffix(li.Text(), li.Find("span").Text()))
			value := strings.TrimSpace(li.Find("span").First().Text())
			if value == "" {
				return
			}
			switch {
			case strings.EqualFold(label, "Engine"):
				if n, ok := ParseNumeric(value); ok {
					specs["engine_cc"] = n
				}
			case strings.EqualFold(label, "Max Torque"):
				specs["max_torque"] = value
			case strings.EqualFold(label, "Max Power"):
				specs["max_power"] = value
			}
		})

		extracted := model.ExtractedModel{
			Name:       name,
			Specs:      specs,
			Variants:   []model.ExtractedVariant{},
			Provenance: newProvenance("bajaj", sourceURL, bajajParserVersion, externalID),
		}

		if priceRaw := card.Find("span.motor-bike-price").First().Text(); priceRaw != "" {
			if price, ok := ParseNumeric(strings.TrimSpace(priceRaw)); ok {
				extracted.Variants = append(extracted.Variants, model.ExtractedVariant{
					Name:       "Standard",
					Price:      price,
					HasPrice:   true,
					Specs:      model.Specs{},
					Colors:     []model.ExtractedColor{},
					Provenance: newProvenance("bajaj", sourceURL, bajajParserVersion, externalID+"-std"),
				})
			}
		}

		models = append(models, extracted)
	})

	return models
}

var bajajSpecKeys = map[string]string{
	"Displacement":     "engine_cc",
	"Max Power":        "max_power",
	"Max Torque":       "max_torque",
	"Fuel Tank":        "fuel_capacity",
	"Curb Weight":      "kerb_weight",
	"Ground Clearance": "ground_clearance",
	"Wheelbase":        "wheelbase",
	"Front Brake":      "front_brake_type",
	"Rear Brake":       "rear_brake_type",
	"Tyre Front":       "front_tyre",
	"Tyre Rear":        "rear_tyre",
}

// specsFromDetailPage reads div.label / div.value sibling pairs.
func (e *BajajExtractor) specsFromDetailPage(doc *goquery.Document) model.Specs {
	specs := model.Specs{}
	doc.Find("div.label").Each(func(_ int, label *goquery.Selection) {
		value := label.Next()
		if !value.HasClass("value") {
			return
		}
		rawKey := strings.TrimSpace(label.Text())
		rawVal := strings.TrimSpace(value.Text())
		if rawKey == "" || rawVal == "" {
			return
		}
		key, ok := bajajSpecKeys[rawKey]
		if !ok {
			key = standardKey(rawKey)
		}
		specs[key] = numericOrString(rawVal)
	})
	return specs
}
