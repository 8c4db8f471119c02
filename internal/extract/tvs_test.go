package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmybike/catalog-cli/internal/model"
)

const tvsListingJSS = `<html><script id="__JSS_STATE__">{
  "sitecore": {"route": {"fields": {"Vehicles": [
    {"fields": {
      "VehicleTypeName": {"value": "Scooters"},
      "ActiveVehicles": [
        {"id": "veh-jupiter", "fields": {
          "VehicleName": {"value": "Jupiter 125"},
          "Displacement": {"value": "124.8 cc"},
          "ActiveVariants": [
            {"id": "var-disc", "fields": {
              "VariantName": {"value": "Disc"},
              "ExShowroomPrice": {"value": "₹90,034"},
              "ActiveColours": [
                {"id": "col-blue", "fields": {
                  "VehicleColor": {"name": "Matte Blue"},
                  "ColorHexCode": {"value": "#27496d"},
                  "VariantColorImages": [{"url": "/media/jupiter/blue.webp"}],
                  "ColorVideos": [{"url": "https://cdn.tvsmotor.com/jupiter/blue.mp4"}]
                }}
              ]
            }}
          ]
        }}
      ]
    }}
  ]}}}
}</script></html>`

func TestTVSExtractor_JSSListing(t *testing.T) {
	e := &TVSExtractor{}
	res := e.Extract(tvsListingJSS, "https://www.tvsmotor.com/scooters")

	require.True(t, res.Success)
	require.Len(t, res.Models, 1)

	m := res.Models[0]
	assert.Equal(t, "Jupiter 125", m.Name)
	assert.Equal(t, model.CategoryScooter, m.Category)
	assert.Equal(t, 124.8, m.Specs["engine_cc"])
	assert.Equal(t, "veh-jupiter", m.Provenance.ExternalID)
	assert.Equal(t, tvsParserVersion, m.Provenance.ParserVersion)

	require.Len(t, m.Variants, 1)
	v := m.Variants[0]
	assert.Equal(t, "Disc", v.Name)
	assert.True(t, v.HasPrice)
	assert.Equal(t, 90034.0, v.Price)

	require.Len(t, v.Colors, 1)
	c := v.Colors[0]
	assert.Equal(t, "Matte Blue", c.Name)
	assert.Equal(t, "Matte", c.Finish)
	assert.Equal(t, "#27496d", c.HexPrimary)
	require.Len(t, c.MediaURLs, 1)
	assert.Equal(t, "https://www.tvsmotor.com/media/jupiter/blue.webp", c.MediaURLs[0])
	require.Len(t, c.VideoURLs, 1)
	assert.Equal(t, "https://cdn.tvsmotor.com/jupiter/blue.mp4", c.VideoURLs[0])
}

const tvsSingleModelJSS = `<html><script id="__JSS_STATE__">{
  "sitecore": {"route": {
    "name": "apache-rtr-160",
    "itemId": "item-apache-160",
    "fields": {
      "VehicleName": {"value": "Apache RTR 160"},
      "VehicleType": {"value": "Motorcycles"},
      "KerbWeight": {"value": "150 kg"},
      "MaxPower": {"value": "16.04 PS @ 8750 rpm"},
      "Mileage": {"value": "45 kmpl"},
      "FrontBrake": {"value": "Disc with ABS"}
    }
  }}
}</script></html>`

func TestTVSExtractor_SingleModelPage(t *testing.T) {
	e := &TVSExtractor{}
	res := e.Extract(tvsSingleModelJSS, "https://www.tvsmotor.com/apache-rtr-160")

	require.True(t, res.Success)
	require.Len(t, res.Models, 1)

	m := res.Models[0]
	assert.Equal(t, "Apache RTR 160", m.Name)
	assert.Equal(t, model.CategoryMotorcycle, m.Category)
	assert.Equal(t, "item-apache-160", m.Provenance.ExternalID)

	// Numeric fields parse to floats, free-text fields stay strings, and a
	// failed numeric parse is dropped rather than coerced to zero.
	assert.Equal(t, 150.0, m.Specs["kerb_weight"])
	assert.Equal(t, 45.0, m.Specs["mileage"])
	assert.Equal(t, "16.04 PS @ 8750 rpm", m.Specs["max_power"])
	assert.Equal(t, "Disc with ABS", m.Specs["front_brake_type"])
}

func TestTVSExtractor_HTMLCardFallback(t *testing.T) {
	payload := `<html><body>
	  <div class="bike-details-main"><h3>Raider 125</h3><a href="/raider-125?ref=home">Know more</a></div>
	  <div class="bike-details-main"><h3>Raider 125</h3><a href="/raider-125">dup</a></div>
	</body></html>`

	e := &TVSExtractor{}
	res := e.Extract(payload, "https://www.tvsmotor.com/motorcycles")

	require.True(t, res.Success)
	require.Len(t, res.Models, 1)
	assert.Equal(t, "Raider 125", res.Models[0].Name)
	assert.Equal(t, "/raider-125", res.Models[0].Provenance.ExternalID)
	assert.Empty(t, res.Models[0].Specs)
}

func TestTVSExtractor_NoVehicles(t *testing.T) {
	payload := `<script id="__JSS_STATE__">{"sitecore":{"context":{}}}</script>`
	res := (&TVSExtractor{}).Extract(payload, "https://www.tvsmotor.com/")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)
	assert.Empty(t, res.Models)
}

const tvsFooterJSS = `<script id="__JSS_STATE__">{
  "sitecore": {"route": {"placeholders": {"jss-footer": [
    {"fields": {"NavigationCategory": [
      {"fields": {"FirstChildList": [
        {"fields": {
          "Title": {"value": "Apache"},
          "Link": {"value": {"href": "/apache-series"}},
          "ChildList": [
            {"fields": {"Title": {"value": "Apache RTR 160"}, "Link": {"value": {"href": "/apache-rtr-160"}}}},
            {"fields": {"Title": {"value": "Apache RTR 200 4V"}, "Link": {"value": {"href": "/apache-rtr-200-4v"}}}},
            {"displayName": "Apache RR 310", "fields": {"Link": {"value": {"url": "/apache-rr-310"}}}}
          ]
        }}
      ]}}
    ]}}
  ]}}}
}</script>`

func TestExpandSeries(t *testing.T) {
	sources := []model.SourceSnapshot{
		{ID: "src-1", SourceURL: "https://www.tvsmotor.com/", Payload: tvsFooterJSS},
		{ID: "src-2", SourceURL: "https://www.tvsmotor.com/apache", Payload: tvsFooterJSS},
	}

	models := ExpandSeries(sources, SeriesQuery{SeriesName: "apache", Category: model.CategoryMotorcycle})

	// Duplicate snapshots collapse by child href.
	require.Len(t, models, 3)
	assert.Equal(t, "Apache RTR 160", models[0].Name)
	assert.Equal(t, "Apache RR 310", models[2].Name)
	for _, m := range models {
		assert.Equal(t, model.CategoryMotorcycle, m.Category)
		assert.Equal(t, "apache", m.Specs["source_series"])
		assert.Equal(t, "series-footer-v1.0", m.Provenance.ParserVersion)
		assert.Equal(t, "tvs", m.Provenance.BrandSlug)
	}
}

func TestExpandSeries_NoMatch(t *testing.T) {
	sources := []model.SourceSnapshot{{ID: "src-1", Payload: tvsFooterJSS}}
	assert.Empty(t, ExpandSeries(sources, SeriesQuery{SeriesName: "Ronin"}))
}
