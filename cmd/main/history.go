package main

import (
	"fmt"
	"io"
	"time"

	"github.com/CTAG07/routepages/pkg/ledger"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const checksumDisplayLen = 12

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit      int
		runID      string
		changed    bool
		ledgerPath string
	)

	cmd := &cobra.Command{
		Use:   "history [--run <id>] [--changed]",
		Short: "Prints past runs, or the pages of one run, from the ledger.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ledger") {
				config.Ledger.DatabasePath = ledgerPath
			}
			if changed && runID == "" {
				return fmt.Errorf("--changed needs --run")
			}

			l, closeLedger, err := openLedger(config.Ledger.DatabasePath, false, commandLogger(cmd, config))
			if err != nil {
				return err
			}
			defer closeLedger()

			ctx := cmd.Context()
			if runID == "" {
				runs, err := l.Runs(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list runs: %w", err)
				}
				renderRuns(cmd.OutOrStdout(), runs)
				return nil
			}

			if _, err = l.Run(ctx, runID); err != nil {
				return err
			}
			var pages []ledger.Page
			if changed {
				pages, err = l.Changed(ctx, runID)
			} else {
				pages, err = l.Pages(ctx, runID)
			}
			if err != nil {
				return fmt.Errorf("failed to list pages: %w", err)
			}
			renderPages(cmd.OutOrStdout(), pages)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all).")
	cmd.Flags().StringVar(&runID, "run", "", "Show the pages written by this run.")
	cmd.Flags().BoolVar(&changed, "changed", false, "With --run, only show pages whose content changed since the previous run.")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Ledger database path. Overrides the config file.")
	return cmd
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderRuns(w io.Writer, runs []ledger.Run) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Status", "Pages", "Size", "Output"})
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			duration,
			r.Status,
			r.Pages,
			humanize.Bytes(uint64(r.Bytes)),
			r.OutputDir,
		})
	}
	t.Render()
}

func renderPages(w io.Writer, pages []ledger.Page) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Row", "File", "Title", "Size", "Checksum"})
	for _, p := range pages {
		checksum := p.Checksum
		if len(checksum) > checksumDisplayLen {
			checksum = checksum[:checksumDisplayLen]
		}
		t.AppendRow(table.Row{p.Row, p.Filename, p.Title, humanize.Bytes(uint64(p.Size)), checksum})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d pages", len(pages))})
	t.Render()
}
