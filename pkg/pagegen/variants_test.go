package pagegen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVariants(t *testing.T) {
	if diff := cmp.Diff([]string{VariantDestination, VariantRoute}, Variants()); diff != "" {
		t.Errorf("Variants() mismatch (-want +got):\n%s", diff)
	}
	if _, err := Preset("bus"); err == nil {
		t.Error("expected unknown variant to be rejected")
	}
}

func TestResolve_FillsFromPreset(t *testing.T) {
	cfg := Config{
		Variant:   VariantRoute,
		DataPath:  "data/routes.csv",
		OutputDir: "public",
		PerKmRate: 18,
	}
	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := routePreset()
	want.DataPath = "data/routes.csv"
	want.OutputDir = "public"
	want.PerKmRate = 18
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ExplicitValuesWin(t *testing.T) {
	cfg := Config{
		Variant:         VariantDestination,
		FilenamePattern: "{slug}.html",
		TrimValues:      boolPtr(true),
		OnDuplicate:     DuplicateError,
		Bindings:        []Binding{{Placeholder: "PLACE", Column: "destination"}},
	}
	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.FilenamePattern != "{slug}.html" {
		t.Errorf("filename pattern overwritten: %q", got.FilenamePattern)
	}
	if !got.trimValues() {
		t.Error("explicit trim_values=true was lost")
	}
	if got.OnDuplicate != DuplicateError {
		t.Errorf("duplicate policy overwritten: %q", got.OnDuplicate)
	}
	if len(got.Bindings) != 1 || got.Bindings[0].Placeholder != "PLACE" {
		t.Errorf("bindings should not be merged with the preset: %+v", got.Bindings)
	}
	if got.TemplatePath != "template.html" {
		t.Errorf("expected preset template path, got %q", got.TemplatePath)
	}
}

func TestResolve_ExplicitFalseTrimWins(t *testing.T) {
	trim := false
	cfg := Config{Variant: VariantRoute, TrimValues: &trim}
	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.trimValues() {
		t.Error("explicit trim_values=false resolved to true")
	}
	if trim {
		t.Error("Resolve modified the caller's trim_values")
	}

	unset, err := Config{Variant: VariantRoute}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !unset.trimValues() {
		t.Error("route preset should trim values when trim_values is unset")
	}
}

func TestResolve_DoesNotMutatePresets(t *testing.T) {
	cfg := Config{Variant: VariantRoute}
	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	got.Bindings[0].Column = "changed"
	if routePreset().Bindings[0].Column != "from_location" {
		t.Error("modifying a resolved config leaked into the preset")
	}
}

func TestResolve_WithoutVariant(t *testing.T) {
	cfg := Config{
		TemplatePath:    "t.html",
		DataPath:        "d.csv",
		FilenamePattern: "{slug}.html",
		Bindings:        []Binding{{Placeholder: "NAME", Column: "name"}},
	}
	got, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.OnDuplicate != DuplicateOverwrite || got.Numbers != NumericLenient {
		t.Errorf("expected policy defaults, got %q / %q", got.OnDuplicate, got.Numbers)
	}
	if got.trimValues() {
		t.Error("values should not be trimmed unless asked")
	}
}

func TestValidate(t *testing.T) {
	base := routePreset()
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no template", func(c *Config) { c.TemplatePath = "" }, "template path"},
		{"no data", func(c *Config) { c.DataPath = "" }, "data path"},
		{"no pattern", func(c *Config) { c.FilenamePattern = "" }, "filename pattern"},
		{"no bindings", func(c *Config) { c.Bindings = nil }, "binding"},
		{"negative rate", func(c *Config) { c.PerKmRate = -1 }, "negative"},
		{"bad duplicate policy", func(c *Config) { c.OnDuplicate = "skip" }, "duplicate policy"},
		{"bad numeric policy", func(c *Config) { c.Numbers = "loose" }, "numeric policy"},
		{"empty placeholder", func(c *Config) { c.Bindings = []Binding{{Column: "x"}} }, "no placeholder"},
		{"no source", func(c *Config) { c.Bindings = []Binding{{Placeholder: "X"}} }, "neither a column"},
		{"bad derivation", func(c *Config) { c.Bindings = []Binding{{Placeholder: "X", Derive: "tax"}} }, "unknown derivation"},
		{"fare without distance", func(c *Config) { c.DistanceColumn = "" }, "distance column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Bindings = append([]Binding(nil), base.Bindings...)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Errorf("route preset should be valid: %v", err)
	}
	if err := destinationPreset().Validate(); err != nil {
		t.Errorf("destination preset should be valid: %v", err)
	}
}
