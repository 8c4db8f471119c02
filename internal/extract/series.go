package extract

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bookmybike/catalog-cli/internal/model"
)

const seriesParserVersion = "series-footer-v1.0"

// SeriesQuery selects a model series from stored TVS page snapshots. A series
// matches by footer entry title or by link URL; at least one must be set.
type SeriesQuery struct {
	SeriesName string
	SeriesURL  string
	Category   model.Category
}

// ExpandSeries walks the JSS footer navigation of previously captured page
// snapshots and returns one skeleton model per member of the matching series.
// TVS lists series members (Apache RTR 160, RTR 200 and so on) only in the
// footer nav, so a listing-page parse alone undercounts the catalog.
func ExpandSeries(sources []model.SourceSnapshot, q SeriesQuery) []model.ExtractedModel {
	seen := map[string]bool{}
	var models []model.ExtractedModel

	for _, src := range sources {
		if !strings.Contains(src.Payload, "__JSS_STATE__") {
			continue
		}
		m := jssStateRe.FindStringSubmatch(src.Payload)
		if m == nil || !gjson.Valid(m[1]) {
			continue
		}

		footer := gjson.Parse(m[1]).Get("sitecore.route.placeholders.jss-footer")
		for _, block := range footer.Array() {
			for _, cat := range block.Get("fields.NavigationCategory").Array() {
				for _, entry := range cat.Get("fields.FirstChildList").Array() {
					title := entry.Get("fields.Title.value").String()
					href := firstNonEmpty(
						entry.Get("fields.Link.value.href").String(),
						entry.Get("fields.Link.value.url").String())

					byName := q.SeriesName != "" && strings.EqualFold(title, q.SeriesName)
					byURL := q.SeriesURL != "" && href != "" && strings.EqualFold(href, q.SeriesURL)
					if !byName && !byURL {
						continue
					}

					for _, child := range entry.Get("fields.ChildList").Array() {
						childTitle := firstNonEmpty(
							child.Get("fields.Title.value").String(),
							child.Get("displayName").String())
						childHref := firstNonEmpty(
							child.Get("fields.Link.value.href").String(),
							child.Get("fields.Link.value.url").String())
						if childTitle == "" || childHref == "" {
							continue
						}
						key := strings.ToLower(childHref)
						if seen[key] {
							continue
						}
						seen[key] = true

						models = append(models, model.ExtractedModel{
							Name:     childTitle,
							Category: q.Category,
							Specs: model.Specs{
								"source_series": firstNonEmpty(q.SeriesName, title),
							},
							Variants:   []model.ExtractedVariant{},
							Provenance: newProvenance("tvs", firstNonEmpty(q.SeriesURL, childHref), seriesParserVersion, childHref),
						})
					}
				}
			}
		}
	}

	return models
}
