package pagegen

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderOptions carries the config values that derivations depend on.
type RenderOptions struct {
	PerKmRate      float64
	DistanceColumn string
	Numbers        NumericPolicy
	AutoBind       bool
}

// Render replaces every occurrence of each binding's token, one binding at a
// time in order. A value that happens to contain a token bound later is
// itself substituted by that later binding. Unbound placeholders are left as
// they are.
func Render(tmpl string, row Row, bindings []Binding, opts RenderOptions) (string, error) {
	page := tmpl
	for _, b := range bindings {
		value, err := bindingValue(b, row, opts)
		if err != nil {
			return "", err
		}
		page = strings.ReplaceAll(page, b.Token(), value)
	}
	if opts.AutoBind {
		for i, h := range row.headers {
			page = strings.ReplaceAll(page, "{{"+h+"}}", row.values[row.keys[i]])
		}
	}
	return page, nil
}

func bindingValue(b Binding, row Row, opts RenderOptions) (string, error) {
	switch b.Derive {
	case DerivePerKmRate:
		return formatRate(opts.PerKmRate), nil
	case DeriveBaseFare:
		raw, err := row.Get(opts.DistanceColumn)
		if err != nil {
			return "", err
		}
		distance, err := opts.Numbers.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("row %d: column %q: %w", row.Index, NormalizeHeader(opts.DistanceColumn), err)
		}
		return strconv.FormatInt(BaseFare(distance, opts.PerKmRate), 10), nil
	case FromColumn:
		return row.First(b.Columns()...)
	default:
		return "", fmt.Errorf("unknown derivation %q for %s", b.Derive, b.Token())
	}
}
