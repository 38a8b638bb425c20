package pagegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// PageRecord describes one written page.
type PageRecord struct {
	Row      int
	Filename string
	Path     string
	Checksum string // hex SHA-256 of the page
	Title    string
	Size     int
}

// Recorder receives a PageRecord after each page is written.
type Recorder interface {
	RecordPage(ctx context.Context, page PageRecord) error
}

// Summary is returned by a successful run.
type Summary struct {
	Pages       int
	Bytes       int64
	Overwritten int
	OutputDir   string
}

// Option configures a Generator.
type Option func(*Generator)

// WithOutput sets where progress lines and the summary line are printed.
// The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) { g.out = w }
}

// WithRecorder attaches a Recorder that is told about every written page.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// Generator runs the load, read, render and write steps for one config.
type Generator struct {
	config   Config
	logger   *slog.Logger
	out      io.Writer
	recorder Recorder
}

// NewGenerator resolves config against its variant preset and returns a
// Generator ready to Run.
func NewGenerator(config Config, logger *slog.Logger, opts ...Option) (*Generator, error) {
	resolved, err := config.Resolve()
	if err != nil {
		return nil, err
	}
	g := &Generator{
		config: resolved,
		logger: logger,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the resolved configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Run generates one page per data row. The first error aborts the run; pages
// written for earlier rows are left in place. If the header lacks a column
// that any row would need, the run fails before anything is written.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	cfg := g.config

	tmpl, err := LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	rows, err := ReadRows(cfg.DataPath, cfg.trimValues())
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Loaded inputs", "template", cfg.TemplatePath, "data", cfg.DataPath, "rows", len(rows))

	if len(rows) > 0 {
		g.logger.Debug("Data header", "columns", rows[0].Headers())
		if err = g.checkColumns(rows[0]); err != nil {
			return nil, err
		}
	}

	opts := RenderOptions{
		PerKmRate:      cfg.PerKmRate,
		DistanceColumn: cfg.DistanceColumn,
		Numbers:        cfg.Numbers,
		AutoBind:       cfg.AutoBind,
	}
	summary := &Summary{OutputDir: cfg.OutputDir}
	produced := make(map[string]int, len(rows))

	for _, row := range rows {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		page, err := Render(tmpl, row, cfg.Bindings, opts)
		if err != nil {
			return nil, err
		}
		name, err := OutputFilename(cfg.FilenamePattern, row)
		if err != nil {
			return nil, err
		}

		if first, seen := produced[name]; seen {
			if cfg.OnDuplicate == DuplicateError {
				return nil, &DuplicateOutputError{Filename: name, FirstRow: first, Row: row.Index}
			}
			g.logger.Warn("Overwriting page from an earlier row", "file", name, "first_row", first, "row", row.Index)
			summary.Overwritten++
		} else {
			produced[name] = row.Index
		}

		path := filepath.Join(cfg.OutputDir, name)
		if err = WritePage(path, page); err != nil {
			return nil, err
		}

		if g.recorder != nil {
			sum := sha256.Sum256([]byte(page))
			record := PageRecord{
				Row:      row.Index,
				Filename: name,
				Path:     path,
				Checksum: hex.EncodeToString(sum[:]),
				Title:    PageTitle(page),
				Size:     len(page),
			}
			if err = g.recorder.RecordPage(ctx, record); err != nil {
				return nil, fmt.Errorf("row %d: failed to record page: %w", row.Index, err)
			}
		}

		summary.Pages++
		summary.Bytes += int64(len(page))
		_, _ = fmt.Fprintf(g.out, "Generated: %s\n", path)
	}

	_, _ = fmt.Fprintf(g.out, "Generated %d pages (%s) in %s\n", summary.Pages, humanize.Bytes(uint64(summary.Bytes)), displayDir(cfg.OutputDir))
	return summary, nil
}

// checkColumns verifies that row carries every column the bindings and the
// filename pattern refer to.
func (g *Generator) checkColumns(row Row) error {
	cfg := g.config
	for _, b := range cfg.Bindings {
		switch b.Derive {
		case FromColumn:
			if _, err := row.First(b.Columns()...); err != nil {
				return err
			}
		case DeriveBaseFare:
			if _, err := row.Get(cfg.DistanceColumn); err != nil {
				return err
			}
		}
	}
	for _, columns := range patternColumns(cfg.FilenamePattern) {
		if _, err := row.First(columns...); err != nil {
			return err
		}
	}
	return nil
}

// patternColumns lists the columns of each filename token, fallbacks included.
func patternColumns(pattern string) [][]string {
	var columns [][]string
	for _, m := range filenameToken.FindAllStringSubmatch(pattern, -1) {
		columns = append(columns, strings.Split(m[1], "?"))
	}
	return columns
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

