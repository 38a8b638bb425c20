package pagegen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"destination":         "destination",
		"  Distance_KM ":      "distance_km",
		"\ufeffdestination":   "destination",
		"\ufeff Destination ": "destination",
		"TRAVEL_TIME\t":       "travel_time",
	}
	for in, want := range tests {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadRowsFrom_BOMHeader(t *testing.T) {
	input := "\ufeffdestination,slug\nFort Kochi,fort-kochi\n"
	rows, err := ReadRowsFrom(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadRowsFrom failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got, err := rows[0].Get("destination")
	if err != nil {
		t.Fatalf("Get(destination) failed: %v", err)
	}
	if got != "Fort Kochi" {
		t.Errorf("expected 'Fort Kochi', got %q", got)
	}
}

func TestReadRowsFrom_QuotedBOMHeader(t *testing.T) {
	input := "\ufeff\"Destination\",\"Slug\"\n\"Munnar, Idukki\",munnar\n"
	rows, err := ReadRowsFrom(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadRowsFrom failed: %v", err)
	}
	if v, _ := rows[0].Lookup("destination"); v != "Munnar, Idukki" {
		t.Errorf("expected quoted cell to keep its comma, got %q", v)
	}
	if diff := cmp.Diff([]string{"Destination", "Slug"}, rows[0].Headers()); diff != "" {
		t.Errorf("Headers() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRowsFrom_TrimValues(t *testing.T) {
	input := "from_slug , to_slug\n  kochi , alappuzha \n"

	trimmed, err := ReadRowsFrom(strings.NewReader(input), true)
	if err != nil {
		t.Fatalf("ReadRowsFrom failed: %v", err)
	}
	if v, _ := trimmed[0].Lookup("to_slug"); v != "alappuzha" {
		t.Errorf("expected trimmed value, got %q", v)
	}

	raw, err := ReadRowsFrom(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadRowsFrom failed: %v", err)
	}
	if v, _ := raw[0].Lookup("to_slug"); v != " alappuzha " {
		t.Errorf("expected untrimmed value, got %q", v)
	}
}

func TestReadRowsFrom_IndexesAndShortRows(t *testing.T) {
	input := "a,b,c\n1,2,3\n\n4,5\n6,7,8,9\n"
	rows, err := ReadRowsFrom(strings.NewReader(input), false)
	if err != nil {
		t.Fatalf("ReadRowsFrom failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected blank line to be skipped and 3 rows read, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Index != i+1 {
			t.Errorf("row %d has index %d", i, row.Index)
		}
	}

	_, err = rows[1].Get("c")
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError for short row, got %v", err)
	}
	if missing.Row != 2 || missing.Column != "c" {
		t.Errorf("unexpected error contents: %+v", missing)
	}

	if v, _ := rows[2].Lookup("c"); v != "8" {
		t.Errorf("expected extra cells to be ignored, got c=%q", v)
	}
}

func TestReadRowsFrom_Empty(t *testing.T) {
	if _, err := ReadRowsFrom(strings.NewReader(""), false); !errors.Is(err, ErrNoHeader) {
		t.Errorf("expected ErrNoHeader, got %v", err)
	}

	rows, err := ReadRowsFrom(strings.NewReader("a,b\n"), false)
	if err != nil {
		t.Fatalf("header-only input should not fail: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestReadRows_FileNotFound(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "missing.csv"), false)
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRow_First(t *testing.T) {
	row := NewRow(4, []string{"Destination", "time", "sedan_fare"}, []string{"Munnar", "3h", "2500"}, false)

	v, err := row.First("travel_time", "time")
	if err != nil || v != "3h" {
		t.Errorf("First(travel_time, time) = %q, %v", v, err)
	}
	v, err = row.First("SEDAN", "Sedan_Fare")
	if err != nil || v != "2500" {
		t.Errorf("First(sedan, sedan_fare) = %q, %v", v, err)
	}

	_, err = row.First("innova", "innova_fare")
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Column != "innova" || missing.Row != 4 {
		t.Errorf("unexpected error contents: %+v", missing)
	}
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.html")
	if err := os.WriteFile(path, []byte("<h1>{{DESTINATION}}</h1>"), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	got, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate failed: %v", err)
	}
	if got != "<h1>{{DESTINATION}}</h1>" {
		t.Errorf("unexpected template contents %q", got)
	}

	// Read fresh on every call.
	if err = os.WriteFile(path, []byte("changed"), 0644); err != nil {
		t.Fatalf("failed to rewrite template: %v", err)
	}
	if got, _ = LoadTemplate(path); got != "changed" {
		t.Errorf("expected template to be re-read, got %q", got)
	}

	if _, err = LoadTemplate(filepath.Join(dir, "nope.html")); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
