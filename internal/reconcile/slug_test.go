package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		brand    string
		input    string
		expected string
	}{
		{"simple", "tvs", "Apache RTR 160", "tvs-apache-rtr-160"},
		{"punctuation collapsed", "bajaj", "Pulsar NS200 (ABS)", "bajaj-pulsar-ns200-abs"},
		{"diacritics stripped", "tvs", "Café Racer", "tvs-cafe-racer"},
		{"leading and trailing junk", "hero", "  Xtreme 160R  ", "hero-xtreme-160r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateSlug(tt.brand, tt.input))
		})
	}
}

func TestGenerateSlug_Deterministic(t *testing.T) {
	a := GenerateSlug("tvs", "Jupiter 125 SmartXonnect")
	b := GenerateSlug("tvs", "Jupiter 125 SmartXonnect")
	assert.Equal(t, a, b)
}
