package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// StatusRunning marks a run that has started but not finished.
	StatusRunning = "running"
	// StatusCompleted marks a run that wrote every page.
	StatusCompleted = "completed"
	// StatusFailed marks a run that aborted.
	StatusFailed = "failed"
)

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// SetupSchema creates the ledger tables. It is idempotent.
func SetupSchema(db *sql.DB) error {
	const (
		schemaRuns = `
CREATE TABLE IF NOT EXISTS ledger_runs (
    run_id        TEXT PRIMARY KEY,
    started_at    INTEGER NOT NULL,
    finished_at   INTEGER,
    template_path TEXT NOT NULL,
    data_path     TEXT NOT NULL,
    output_dir    TEXT NOT NULL,
    page_count    INTEGER NOT NULL DEFAULT 0,
    byte_count    INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL
);
`
		schemaPages = `
CREATE TABLE IF NOT EXISTS ledger_pages (
    run_id    TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    filename  TEXT NOT NULL,
    checksum  TEXT NOT NULL,
    title     TEXT NOT NULL DEFAULT '',
    size      INTEGER NOT NULL,
    PRIMARY KEY (run_id, row_index)
);
`
		indexPages = `CREATE INDEX IF NOT EXISTS idx_ledger_pages_filename ON ledger_pages (filename);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}
	if _, err = tx.Exec(schemaPages); err != nil {
		return fmt.Errorf("could not create pages schema: %w", err)
	}
	if _, err = tx.Exec(indexPages); err != nil {
		return fmt.Errorf("could not create pages index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Run is one generation run as stored in the ledger.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time // zero while running
	TemplatePath string
	DataPath     string
	OutputDir    string
	Pages        int
	Bytes        int64
	Status       string
}

// Page is one page written during a run.
type Page struct {
	Row      int
	Filename string
	Checksum string
	Title    string
	Size     int
}

// Ledger records runs and pages using prepared statements on a shared DB.
type Ledger struct {
	db             *sql.DB
	logger         *slog.Logger
	now            func() time.Time
	stmtBeginRun   *sql.Stmt
	stmtFinishRun  *sql.Stmt
	stmtInsertPage *sql.Stmt
	stmtGetRun     *sql.Stmt
	stmtListRuns   *sql.Stmt
	stmtListPages  *sql.Stmt
	stmtChanged    *sql.Stmt
}

// New prepares the ledger's statements. SetupSchema must have been called on db.
func New(db *sql.DB, logger *slog.Logger) (*Ledger, error) {
	l := &Ledger{db: db, logger: logger, now: time.Now}

	prepare := func(dst **sql.Stmt, query string) error {
		stmt, err := db.Prepare(query)
		if err != nil {
			l.Close()
			return fmt.Errorf("failed to prepare ledger statement: %w", err)
		}
		*dst = stmt
		return nil
	}

	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&l.stmtBeginRun, `INSERT INTO ledger_runs (run_id, started_at, template_path, data_path, output_dir, status) VALUES (?, ?, ?, ?, ?, ?);`},
		{&l.stmtFinishRun, `UPDATE ledger_runs SET finished_at = ?, page_count = ?, byte_count = ?, status = ? WHERE run_id = ?;`},
		{&l.stmtInsertPage, `INSERT OR REPLACE INTO ledger_pages (run_id, row_index, filename, checksum, title, size) VALUES (?, ?, ?, ?, ?, ?);`},
		{&l.stmtGetRun, `SELECT run_id, started_at, finished_at, template_path, data_path, output_dir, page_count, byte_count, status FROM ledger_runs WHERE run_id = ?;`},
		{&l.stmtListRuns, `SELECT run_id, started_at, finished_at, template_path, data_path, output_dir, page_count, byte_count, status FROM ledger_runs ORDER BY rowid DESC LIMIT ?;`},
		{&l.stmtListPages, `SELECT row_index, filename, checksum, title, size FROM ledger_pages WHERE run_id = ? ORDER BY row_index;`},
		{&l.stmtChanged, `
SELECT p.row_index, p.filename, p.checksum, p.title, p.size
FROM ledger_pages p
JOIN ledger_runs r ON r.run_id = p.run_id
WHERE p.run_id = ?
  AND p.checksum IS NOT (
    SELECT prev.checksum
    FROM ledger_pages prev
    JOIN ledger_runs prev_run ON prev_run.run_id = prev.run_id
    WHERE prev.filename = p.filename AND prev_run.rowid < r.rowid
    ORDER BY prev_run.rowid DESC
    LIMIT 1
  )
ORDER BY p.row_index;`},
	}
	for _, s := range statements {
		if err := prepare(s.dst, s.query); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Close releases the prepared statements. The DB itself is left open.
func (l *Ledger) Close() {
	for _, stmt := range []*sql.Stmt{
		l.stmtBeginRun, l.stmtFinishRun, l.stmtInsertPage,
		l.stmtGetRun, l.stmtListRuns, l.stmtListPages, l.stmtChanged,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// BeginRun stores a new run in the running state and returns its ID.
func (l *Ledger) BeginRun(ctx context.Context, templatePath, dataPath, outputDir string) (string, error) {
	id := uuid.NewString()
	_, err := l.stmtBeginRun.ExecContext(ctx, id, l.now().UnixMilli(), templatePath, dataPath, outputDir, StatusRunning)
	if err != nil {
		return "", fmt.Errorf("failed to begin run: %w", err)
	}
	l.logger.DebugContext(ctx, "Ledger run started", slog.String("run_id", id))
	return id, nil
}

// RecordPage stores one written page. Recording the same row twice keeps the latest.
func (l *Ledger) RecordPage(ctx context.Context, runID string, page Page) error {
	_, err := l.stmtInsertPage.ExecContext(ctx, runID, page.Row, page.Filename, page.Checksum, page.Title, page.Size)
	if err != nil {
		return fmt.Errorf("failed to record page %s: %w", page.Filename, err)
	}
	return nil
}

// FinishRun closes a run with its final status and totals.
func (l *Ledger) FinishRun(ctx context.Context, runID, status string, pages int, bytes int64) error {
	res, err := l.stmtFinishRun.ExecContext(ctx, l.now().UnixMilli(), pages, bytes, status, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	l.logger.DebugContext(ctx, "Ledger run finished",
		slog.String("run_id", runID),
		slog.String("status", status),
		slog.Int("pages", pages),
	)
	return nil
}

// Run returns a single run by ID.
func (l *Ledger) Run(ctx context.Context, runID string) (Run, error) {
	run, err := scanRun(l.stmtGetRun.QueryRowContext(ctx, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return run, err
}

// Runs returns up to limit runs, most recently started first. A limit of 0 or less returns all.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.stmtListRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Pages returns the pages recorded for a run, in row order.
func (l *Ledger) Pages(ctx context.Context, runID string) ([]Page, error) {
	return queryPages(ctx, l.stmtListPages, runID)
}

// Changed returns the pages of a run whose content differs from the same
// file's most recent earlier run, including files no earlier run produced.
func (l *Ledger) Changed(ctx context.Context, runID string) ([]Page, error) {
	return queryPages(ctx, l.stmtChanged, runID)
}

func queryPages(ctx context.Context, stmt *sql.Stmt, runID string) ([]Page, error) {
	rows, err := stmt.QueryContext(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var pages []Page
	for rows.Next() {
		var p Page
		if err = rows.Scan(&p.Row, &p.Filename, &p.Checksum, &p.Title, &p.Size); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run      Run
		started  int64
		finished sql.NullInt64
	)
	err := s.Scan(&run.ID, &started, &finished, &run.TemplatePath, &run.DataPath, &run.OutputDir, &run.Pages, &run.Bytes, &run.Status)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = time.UnixMilli(started)
	if finished.Valid {
		run.FinishedAt = time.UnixMilli(finished.Int64)
	}
	return run, nil
}
