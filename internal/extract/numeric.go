package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// unitSuffix matches the unit tokens sources append to numeric spec values,
// e.g. "159.7 cc", "12 L", "5.3 litres", "60 kmph".
var unitSuffix = regexp.MustCompile(`(?i)\s*(cc|l|litres|km/l|kmpl|ps|nm|kg|mm|bhp|kmph)\s*$`)

var currencyChars = strings.NewReplacer("₹", "", ",", "", " ", "", " ", "")

// ParseNumeric strips currency symbols, grouping commas, whitespace and a
// trailing unit token, then attempts a float parse. Failure returns ok=false,
// never zero: a coerced zero would later look like a legitimate diff against
// a real value.
func ParseNumeric(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	cleaned := unitSuffix.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = currencyChars.Replace(cleaned)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// numericOrString returns the parsed number when the value is numeric, and
// the raw string otherwise.
func numericOrString(raw string) any {
	if n, ok := ParseNumeric(raw); ok {
		return n
	}
	return raw
}

// InferFinish guesses a color finish from keywords in the color name.
func InferFinish(colorName string) string {
	lower := strings.ToLower(colorName)
	switch {
	case strings.Contains(lower, "matte"), strings.Contains(lower, "matt"):
		return "Matte"
	case strings.Contains(lower, "metallic"):
		return "Metallic"
	case strings.Contains(lower, "pearl"):
		return "Pearl"
	default:
		return "Gloss"
	}
}

// InferCategory maps a source vehicle-type name to a catalog category.
// Electric two-wheelers from these sources are scooters.
func InferCategory(typeName string) model.Category {
	lower := strings.ToLower(typeName)
	switch {
	case strings.Contains(lower, "electric"), strings.Contains(lower, "scooter"):
		return model.CategoryScooter
	case strings.Contains(lower, "moped"):
		return model.CategoryMoped
	default:
		return model.CategoryMotorcycle
	}
}

// standardKey converts a raw source spec label to a snake_case attribute key.
func standardKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("(", "", ")", "").Replace(key)
	return strings.Join(strings.Fields(key), "_")
}
