package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CTAG07/routepages/pkg/ledger"
	"github.com/CTAG07/routepages/pkg/pagegen"
)

// openLedger opens (and if needed creates) the ledger database at path.
// The returned close function releases both the statements and the DB.
func openLedger(path string, create bool, logger *slog.Logger) (*ledger.Ledger, func(), error) {
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("no ledger at %s: %w", path, err)
		}
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err = ledger.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to set up ledger schema: %w", err)
	}
	l, err := ledger.New(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		l.Close()
		if err := db.Close(); err != nil {
			logger.Error("Failed to close ledger database", "error", err)
		}
	}
	return l, closeFn, nil
}

// ledgerRecorder feeds pages from a generator run into one ledger run.
type ledgerRecorder struct {
	ledger *ledger.Ledger
	runID  string
	pages  int
	bytes  int64
}

func (r *ledgerRecorder) RecordPage(ctx context.Context, page pagegen.PageRecord) error {
	err := r.ledger.RecordPage(ctx, r.runID, ledger.Page{
		Row:      page.Row,
		Filename: page.Filename,
		Checksum: page.Checksum,
		Title:    page.Title,
		Size:     page.Size,
	})
	if err != nil {
		return err
	}
	r.pages++
	r.bytes += int64(page.Size)
	return nil
}

var _ pagegen.Recorder = (*ledgerRecorder)(nil)

// finish closes the ledger run. It uses a fresh context so a cancelled run
// still gets its final status recorded.
func (r *ledgerRecorder) finish(runErr error) error {
	status := ledger.StatusCompleted
	if runErr != nil {
		status = ledger.StatusFailed
	}
	return r.ledger.FinishRun(context.Background(), r.runID, status, r.pages, r.bytes)
}
