package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookmybike/catalog-cli/internal/model"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{"indian grouping with rupee sign", "₹1,23,890", 123890, true},
		{"engine displacement with unit", "159.7 cc", 159.7, true},
		{"kerb weight with unit", "150 kg", 150, true},
		{"fuel capacity litres", "5.3 litres", 5.3, true},
		{"torque in nm", "13.9 Nm", 13.9, true},
		{"top speed kmph", "107 kmph", 107, true},
		{"mileage kmpl", "45 km/l", 45, true},
		{"plain integer", "2023", 2023, true},
		{"empty string", "", 0, false},
		{"free text", "Telescopic Fork", 0, false},
		{"mixed units and text", "150 x 60 mm", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := ParseNumeric(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, n, 0.0001)
			}
		})
	}
}

func TestNumericOrString(t *testing.T) {
	assert.Equal(t, 159.7, numericOrString("159.7 cc"))
	assert.Equal(t, "Disc with ABS", numericOrString("Disc with ABS"))
}

func TestInferFinish(t *testing.T) {
	tests := []struct {
		color    string
		expected string
	}{
		{"Matte Black", "Matte"},
		{"Matt Blue Edition", "Matte"},
		{"Metallic Red", "Metallic"},
		{"Pearl White", "Pearl"},
		{"Racing Red", "Gloss"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, InferFinish(tt.color), tt.color)
	}
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, model.CategoryScooter, InferCategory("Electric Scooters"))
	assert.Equal(t, model.CategoryScooter, InferCategory("iQube Electric"))
	assert.Equal(t, model.CategoryMoped, InferCategory("Mopeds"))
	assert.Equal(t, model.CategoryMotorcycle, InferCategory("Apache RTR 160"))
}

func TestStandardKey(t *testing.T) {
	assert.Equal(t, "kerb_weight", standardKey("Kerb Weight"))
	assert.Equal(t, "tyre_size_front", standardKey("Tyre Size (Front)"))
	assert.Equal(t, "max_power", standardKey("  Max   Power "))
}
