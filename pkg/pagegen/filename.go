package pagegen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	filenameToken = regexp.MustCompile(`\{([^{}|]+)(?:\|([a-z]+))?\}`)

	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// OutputFilename interpolates {column} tokens in pattern with the row's
// values, as in "{from_slug}-to-{to_slug}-taxi.html". A token written as
// {column|slug} passes the value through Slugify first. Columns joined
// with "?" are fallbacks: {slug?primary keyword|slug} uses the first
// non-empty value among them.
//
// Values that are empty or contain a path separator or ".." are rejected
// with *UnsafeSlugError, so every name stays inside the output directory.
func OutputFilename(pattern string, row Row) (string, error) {
	var (
		b    strings.Builder
		last int
	)
	for _, m := range filenameToken.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(pattern[last:m[0]])
		last = m[1]

		column, value, err := tokenValue(row, pattern[m[2]:m[3]])
		if err != nil {
			return "", err
		}
		if m[4] >= 0 {
			switch modifier := pattern[m[4]:m[5]]; modifier {
			case "slug":
				value = Slugify(value)
			default:
				return "", fmt.Errorf("filename pattern: unknown modifier %q on {%s}", modifier, column)
			}
		}
		if !safeComponent(value) {
			return "", &UnsafeSlugError{Column: NormalizeHeader(column), Value: value, Row: row.Index}
		}
		b.WriteString(value)
	}
	b.WriteString(pattern[last:])

	name := b.String()
	if !safeComponent(name) || filepath.Base(name) != name {
		return "", fmt.Errorf("row %d: file name %q would leave the output directory", row.Index, name)
	}
	return name, nil
}

// tokenValue picks the first non-empty value among the "?"-separated
// columns of a filename token. Absent columns are skipped. The first column
// is reported when none is present, or when every present one is empty.
func tokenValue(row Row, token string) (column, value string, err error) {
	columns := strings.Split(token, "?")
	found := false
	for _, c := range columns {
		v, ok := row.Lookup(c)
		if !ok {
			continue
		}
		found = true
		if v != "" {
			return c, v, nil
		}
	}
	if !found {
		return "", "", &MissingFieldError{Column: NormalizeHeader(columns[0]), Row: row.Index}
	}
	return columns[0], "", nil
}

func safeComponent(s string) bool {
	return s != "" && !strings.ContainsAny(s, `/\`) && !strings.Contains(s, "..")
}

// Slugify lowercases text, drops everything but word characters, spaces and
// hyphens, and collapses runs of separators into single hyphens.
// Slugify("Kochi Airport to Munnar!") == "kochi-airport-to-munnar".
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
