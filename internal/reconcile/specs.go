package reconcile

import "github.com/bookmybike/catalog-cli/internal/model"

// modelLevelKeys is the allowlist of attributes that describe the model
// family as a whole. Everything else extracted at model level is treated as
// variant-level detail and pushed down onto each variant's specs.
var modelLevelKeys = map[string]bool{
	"engine_cc":         true,
	"max_power":         true,
	"max_torque":        true,
	"engine_type":       true,
	"cooling_system":    true,
	"bore":              true,
	"stroke":            true,
	"compression_ratio": true,
	"fuel_capacity":     true,
	"mileage":           true,
	"top_speed":         true,
	"kerb_weight":       true,
	"ground_clearance":  true,
	"seat_height":       true,
	"wheelbase":         true,
	"transmission_type": true,
	"fuel_type":         true,
	"battery_kwh":       true,
	"motor_kw":          true,
	"range_km":          true,
	"dimensions":        true,
	"drivetrain":        true,
}

// SegregateSpecs splits extracted model specs into the model-level subset
// and the variant-level remainder.
func SegregateSpecs(specs model.Specs) (modelSpecs, variantSpecs model.Specs) {
	modelSpecs = model.Specs{}
	variantSpecs = model.Specs{}
	for k, v := range specs {
		if modelLevelKeys[k] {
			modelSpecs[k] = v
		} else {
			variantSpecs[k] = v
		}
	}
	return modelSpecs, variantSpecs
}
