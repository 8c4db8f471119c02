package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bajajListingPayload = `<html><body>
<div class="listingBoxSec" data-model-name="Pulsar NS200">
  <ul>
    <li>Engine <span>199.5 cc</span></li>
    <li>Max Torque <span>18.74 Nm @ 8000 rpm</span></li>
    <li>Max Power <span>24.5 PS @ 9750 rpm</span></li>
  </ul>
  <span class="motor-bike-price">₹ 1,47,000</span>
  <a href="/bikes/pulsar/ns200">Explore Now</a>
</div>
<div class="listingBoxSec" data-model-name="Platina 100">
  <a href="/bikes/platina/100">Explore Now</a>
</div>
</body></html>`

func TestBajajExtractor_Listing(t *testing.T) {
	e := &BajajExtractor{}
	res := e.Extract(bajajListingPayload, "https://www.bajajauto.com/bikes")

	require.True(t, res.Success)
	require.Len(t, res.Models, 2)

	m := res.Models[0]
	assert.Equal(t, "Pulsar NS200", m.Name)
	assert.Equal(t, "ns200", m.Provenance.ExternalID)
	assert.Equal(t, 199.5, m.Specs["engine_cc"])
	assert.Equal(t, "18.74 Nm @ 8000 rpm", m.Specs["max_torque"])
	assert.Equal(t, "24.5 PS @ 9750 rpm", m.Specs["max_power"])

	require.Len(t, m.Variants, 1)
	assert.Equal(t, "Standard", m.Variants[0].Name)
	assert.True(t, m.Variants[0].HasPrice)
	assert.Equal(t, 147000.0, m.Variants[0].Price)

	// No price span means no synthetic variant.
	assert.Empty(t, res.Models[1].Variants)
	assert.Equal(t, "100", res.Models[1].Provenance.ExternalID)
}

const bajajDetailPayload = `<html><body>
<h1>Pulsar N160</h1>
<div class="label">Displacement</div><div class="value">164.82 cc</div>
<div class="label">Max Power</div><div class="value">16 PS @ 8750 rpm</div>
<div class="label">Curb Weight</div><div class="value">152 kg</div>
<div class="label">Seat Length</div><div class="value">580 mm</div>
</body></html>`

func TestBajajExtractor_DetailPage(t *testing.T) {
	e := &BajajExtractor{}
	res := e.Extract(bajajDetailPayload, "https://www.bajajauto.com/bikes/pulsar/n160")

	require.True(t, res.Success)
	require.Len(t, res.Models, 1)

	m := res.Models[0]
	assert.Equal(t, "Pulsar N160", m.Name)
	assert.Equal(t, 164.82, m.Specs["engine_cc"])
	assert.Equal(t, 152.0, m.Specs["kerb_weight"])
	assert.Equal(t, 580.0, m.Specs["seat_length"])
}

func TestBajajExtractor_NothingFound(t *testing.T) {
	res := (&BajajExtractor{}).Extract("<html></html>", "https://www.bajajauto.com/")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)
}
