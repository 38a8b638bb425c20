package pagegen

import (
	"errors"
	"fmt"
)

// DuplicatePolicy decides what happens when two rows map to the same output file.
type DuplicatePolicy string

const (
	// DuplicateOverwrite lets the later row replace the earlier page.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateError aborts the run with a *DuplicateOutputError.
	DuplicateError DuplicatePolicy = "error"
)

// Derivation names a value computed from the row instead of read from a column.
type Derivation string

const (
	// FromColumn reads the value straight from the bound column.
	FromColumn Derivation = ""
	// DeriveBaseFare renders floor(distance * per-km rate).
	DeriveBaseFare Derivation = "base_fare"
	// DerivePerKmRate renders the configured per-km rate itself.
	DerivePerKmRate Derivation = "per_km_rate"
)

// Binding ties one {{Placeholder}} to its source. Column sources try Column
// first and then each alias, so the same binding can serve files that spell
// a header differently ("sedan" vs "sedan_fare").
type Binding struct {
	Placeholder string     `json:"placeholder"`
	Column      string     `json:"column,omitempty"`
	Aliases     []string   `json:"aliases,omitempty"`
	Derive      Derivation `json:"derive,omitempty"`
}

// Token returns the literal text replaced in the template.
func (b Binding) Token() string {
	return "{{" + b.Placeholder + "}}"
}

// Columns lists every column spelling the binding accepts, in lookup order.
func (b Binding) Columns() []string {
	if b.Column == "" {
		return nil
	}
	return append([]string{b.Column}, b.Aliases...)
}

// Config holds everything a single generation run needs.
type Config struct {
	// Variant names the preset used to fill unset fields ("route" or "destination").
	Variant string `json:"variant,omitempty"`

	// TemplatePath is the HTML template containing {{TOKEN}} placeholders.
	TemplatePath string `json:"template_path,omitempty"`

	// DataPath is the CSV file; its first line must be the header.
	DataPath string `json:"data_path,omitempty"`

	// OutputDir receives the generated pages. It is created on first write.
	OutputDir string `json:"output_dir,omitempty"`

	// FilenamePattern builds each page's file name from {column} tokens.
	// A token may carry the "slug" modifier, as in {primary keyword|slug}.
	FilenamePattern string `json:"filename_pattern,omitempty"`

	// PerKmRate feeds the base_fare and per_km_rate derivations.
	PerKmRate float64 `json:"per_km_rate,omitempty"`

	// DistanceColumn is read by the base_fare derivation.
	DistanceColumn string `json:"distance_column,omitempty"`

	// Bindings are applied in order.
	Bindings []Binding `json:"bindings,omitempty"`

	// TrimValues strips surrounding whitespace from every cell.
	TrimValues *bool `json:"trim_values,omitempty"`

	// AutoBind additionally replaces {{<header>}} with the cell value for every
	// column, using the header's original spelling.
	AutoBind bool `json:"auto_bind,omitempty"`

	// OnDuplicate decides how repeated output names are handled.
	OnDuplicate DuplicatePolicy `json:"on_duplicate,omitempty"`

	// Numbers selects how unparsable numeric cells are treated.
	Numbers NumericPolicy `json:"numbers,omitempty"`
}

func (c Config) trimValues() bool {
	return c.TrimValues != nil && *c.TrimValues
}

// Validate reports the first problem that would prevent a run.
func (c Config) Validate() error {
	switch {
	case c.TemplatePath == "":
		return errors.New("template path is required")
	case c.DataPath == "":
		return errors.New("data path is required")
	case c.FilenamePattern == "":
		return errors.New("filename pattern is required")
	case len(c.Bindings) == 0 && !c.AutoBind:
		return errors.New("at least one placeholder binding is required")
	case c.PerKmRate < 0:
		return fmt.Errorf("per-km rate must not be negative, got %v", c.PerKmRate)
	}

	switch c.OnDuplicate {
	case DuplicateOverwrite, DuplicateError:
	default:
		return fmt.Errorf("unknown duplicate policy %q", c.OnDuplicate)
	}

	switch c.Numbers {
	case NumericLenient, NumericStrict:
	default:
		return fmt.Errorf("unknown numeric policy %q", c.Numbers)
	}

	for i, b := range c.Bindings {
		if b.Placeholder == "" {
			return fmt.Errorf("binding %d has no placeholder", i)
		}
		switch b.Derive {
		case FromColumn:
			if b.Column == "" {
				return fmt.Errorf("binding %s has neither a column nor a derivation", b.Token())
			}
		case DeriveBaseFare:
			if c.DistanceColumn == "" {
				return fmt.Errorf("binding %s needs a distance column", b.Token())
			}
		case DerivePerKmRate:
		default:
			return fmt.Errorf("binding %s has unknown derivation %q", b.Token(), b.Derive)
		}
	}
	return nil
}
