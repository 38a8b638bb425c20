package pagegen

import (
	"fmt"
	"sort"

	"dario.cat/mergo"
)

const (
	// VariantRoute generates point-to-point pages with a computed base fare.
	VariantRoute = "route"
	// VariantDestination generates airport-to-destination pages with fixed fares per vehicle.
	VariantDestination = "destination"

	// DefaultPerKmRate is the route variant's fare rate.
	DefaultPerKmRate = 15
)

var presets = map[string]func() Config{
	VariantRoute:       routePreset,
	VariantDestination: destinationPreset,
}

func boolPtr(v bool) *bool { return &v }

func routePreset() Config {
	return Config{
		Variant:         VariantRoute,
		TemplatePath:    "template-d2d.html",
		DataPath:        "D2DPSEO.csv",
		OutputDir:       "output",
		FilenamePattern: "{from_slug}-to-{to_slug}-taxi.html",
		PerKmRate:       DefaultPerKmRate,
		DistanceColumn:  "distance_km",
		TrimValues:      boolPtr(true),
		OnDuplicate:     DuplicateOverwrite,
		Numbers:         NumericLenient,
		Bindings: []Binding{
			{Placeholder: "FROM_LOCATION", Column: "from_location"},
			{Placeholder: "TO_LOCATION", Column: "to_location"},
			{Placeholder: "FROM_SLUG", Column: "from_slug"},
			{Placeholder: "TO_SLUG", Column: "to_slug"},
			{Placeholder: "DISTANCE_KM", Column: "distance_km"},
			{Placeholder: "TRAVEL_TIME", Column: "travel_time", Aliases: []string{"time"}},
			{Placeholder: "PER_KM_RATE", Derive: DerivePerKmRate},
			{Placeholder: "BASE_FARE", Derive: DeriveBaseFare},
		},
	}
}

func destinationPreset() Config {
	return Config{
		Variant:         VariantDestination,
		TemplatePath:    "template.html",
		DataPath:        "destinations.csv",
		OutputDir:       "output",
		FilenamePattern: "kochi-airport-to-{slug}-taxi.html",
		PerKmRate:       DefaultPerKmRate,
		DistanceColumn:  "distance_km",
		TrimValues:      boolPtr(false),
		OnDuplicate:     DuplicateOverwrite,
		Numbers:         NumericLenient,
		Bindings: []Binding{
			{Placeholder: "DESTINATION", Column: "destination"},
			{Placeholder: "DESTINATION_SLUG", Column: "slug"},
			{Placeholder: "DISTANCE_KM", Column: "distance_km"},
			{Placeholder: "TRAVEL_TIME", Column: "travel_time", Aliases: []string{"time"}},
			{Placeholder: "SEDAN_FARE", Column: "sedan", Aliases: []string{"sedan_fare"}},
			{Placeholder: "ERTIGA_FARE", Column: "ertiga", Aliases: []string{"ertiga_fare"}},
			{Placeholder: "INNOVA_FARE", Column: "innova", Aliases: []string{"innova_fare"}},
			{Placeholder: "CRYSTA_FARE", Column: "crysta", Aliases: []string{"crysta_fare"}},
		},
	}
}

// Variants returns the names of the built-in presets.
func Variants() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (Config, error) {
	build, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown variant %q (known: %v)", name, Variants())
	}
	return build(), nil
}

// Resolve fills every unset field from the config's variant preset and
// validates the result. A config without a variant is only validated after
// the policy defaults are applied. Zero values count as unset, so a
// PerKmRate of 0 falls back to the preset rate. TrimValues is kept whenever
// it is set, false included.
func (c Config) Resolve() (Config, error) {
	out := c
	if out.Variant != "" {
		preset, err := Preset(out.Variant)
		if err != nil {
			return Config{}, err
		}
		// mergo would merge through the pointer and treat an explicit false as unset.
		trim := out.TrimValues
		out.TrimValues = nil
		if err = mergo.Merge(&out, preset); err != nil {
			return Config{}, fmt.Errorf("failed to apply %s preset: %w", out.Variant, err)
		}
		if trim != nil {
			out.TrimValues = boolPtr(*trim)
		}
	}
	if out.OnDuplicate == "" {
		out.OnDuplicate = DuplicateOverwrite
	}
	if out.Numbers == "" {
		out.Numbers = NumericLenient
	}
	if err := out.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return out, nil
}
