package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// jsonLDBlocks returns the parsed contents of every
// <script type="application/ld+json"> tag in the payload.
func jsonLDBlocks(payload string) []gjson.Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		return nil
	}
	var blocks []gjson.Result
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(s.Text())
		if gjson.Valid(content) {
			blocks = append(blocks, gjson.Parse(content))
		}
	})
	return blocks
}

// findSchemaEntity locates the first JSON-LD entity whose @type is in types,
// searching top-level objects, arrays, and @graph collections.
func findSchemaEntity(blocks []gjson.Result, types ...string) (gjson.Result, bool) {
	matches := func(item gjson.Result) bool {
		t := item.Get("@type").String()
		for _, want := range types {
			if t == want {
				return true
			}
		}
		return false
	}

	for _, block := range blocks {
		candidates := []gjson.Result{block}
		if block.IsArray() {
			candidates = block.Array()
		} else if graph := block.Get("@graph"); graph.IsArray() {
			candidates = graph.Array()
		}
		for _, item := range candidates {
			if matches(item) {
				return item, true
			}
		}
	}
	return gjson.Result{}, false
}

// schemaSpecs converts a schema.org additionalProperty list into a spec map
// using a source-specific key mapping.
func schemaSpecs(product gjson.Result, keyMap map[string]string) (model.Specs, int) {
	specs := model.Specs{}
	props := product.Get("additionalProperty").Array()
	for _, p := range props {
		rawKey := p.Get("name").String()
		if rawKey == "" {
			continue
		}
		key, ok := keyMap[rawKey]
		if !ok {
			key = standardKey(rawKey)
		}
		specs[key] = numericOrString(p.Get("value").String())
	}
	return specs, len(props)
}

// schemaColors converts a schema.org color list into extracted color units.
// Aggregator pages hide high-res media behind scripted galleries, so the
// media list stays empty here.
func schemaColors(product gjson.Result, brandSlug, sourceURL, version string) []model.ExtractedColor {
	var colors []model.ExtractedColor
	for _, c := range product.Get("color").Array() {
		name := c.String()
		if name == "" {
			continue
		}
		colors = append(colors, model.ExtractedColor{
			Name:       name,
			Finish:     InferFinish(name),
			MediaURLs:  []string{},
			Provenance: newProvenance(brandSlug, sourceURL, version, "color-"+name),
		})
	}
	return colors
}
