package main

import (
	"fmt"
	"log/slog"

	"github.com/CTAG07/routepages/pkg/pagegen"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	variant       string
	templatePath  string
	dataPath      string
	outputDir     string
	rate          float64
	onDuplicate   string
	strictNumbers bool
	autoBind      bool
	ledgerPath    string
	noLedger      bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Writes one page per data row.",
		Long: "Writes one page per data row. Flags override the config file; " +
			"--variant replaces the config file's generator settings with a built-in preset.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := root.load()
			if err != nil {
				return err
			}
			if err = opts.apply(cmd, config); err != nil {
				return err
			}
			return runGenerate(cmd, config, commandLogger(cmd, config))
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.variant, "variant", "", fmt.Sprintf("Built-in preset to use %v.", pagegen.Variants()))
	f.StringVar(&opts.templatePath, "template", "", "HTML template path.")
	f.StringVar(&opts.dataPath, "data", "", "CSV data path.")
	f.StringVar(&opts.outputDir, "out", "", "Output directory.")
	f.Float64Var(&opts.rate, "rate", 0, "Per-km fare rate used for the base fare.")
	f.StringVar(&opts.onDuplicate, "on-duplicate", "", "What to do when two rows produce the same file (overwrite, error).")
	f.BoolVar(&opts.strictNumbers, "strict-numbers", false, "Fail on unparsable numbers instead of treating them as 0.")
	f.BoolVar(&opts.autoBind, "auto-bind", false, "Also replace {{<header>}} for every CSV column.")
	f.StringVar(&opts.ledgerPath, "ledger", "", "Record the run in the ledger database at this path.")
	f.BoolVar(&opts.noLedger, "no-ledger", false, "Do not record the run, even if the config enables the ledger.")
	cmd.MarkFlagsMutuallyExclusive("ledger", "no-ledger")

	return cmd
}

// apply copies every flag the user actually set onto config.
func (o *generateOptions) apply(cmd *cobra.Command, config *Config) error {
	f := cmd.Flags()
	gen := config.Generator

	if f.Changed("variant") && o.variant != gen.Variant {
		gen = &pagegen.Config{Variant: o.variant}
		config.Generator = gen
	}
	if f.Changed("template") {
		gen.TemplatePath = o.templatePath
	}
	if f.Changed("data") {
		gen.DataPath = o.dataPath
	}
	if f.Changed("out") {
		gen.OutputDir = o.outputDir
	}
	if f.Changed("rate") {
		// A zero rate would fall back to the preset rate when resolved.
		if o.rate <= 0 {
			return fmt.Errorf("--rate must be greater than 0, got %v", o.rate)
		}
		gen.PerKmRate = o.rate
	}
	if f.Changed("on-duplicate") {
		gen.OnDuplicate = pagegen.DuplicatePolicy(o.onDuplicate)
	}
	if f.Changed("strict-numbers") {
		gen.Numbers = pagegen.NumericLenient
		if o.strictNumbers {
			gen.Numbers = pagegen.NumericStrict
		}
	}
	if f.Changed("auto-bind") {
		gen.AutoBind = o.autoBind
	}
	if f.Changed("ledger") {
		config.Ledger.Enabled = true
		config.Ledger.DatabasePath = o.ledgerPath
	}
	if o.noLedger {
		config.Ledger.Enabled = false
	}
	return nil
}

func runGenerate(cmd *cobra.Command, config *Config, logger *slog.Logger) error {
	ctx := cmd.Context()
	opts := []pagegen.Option{pagegen.WithOutput(cmd.OutOrStdout())}

	var recorder *ledgerRecorder
	if config.Ledger.Enabled {
		recorder = &ledgerRecorder{}
		opts = append(opts, pagegen.WithRecorder(recorder))
	}

	gen, err := pagegen.NewGenerator(*config.Generator, logger, opts...)
	if err != nil {
		return err
	}
	resolved := gen.Config()
	logger.Debug("Resolved generator config",
		"variant", resolved.Variant,
		"template", resolved.TemplatePath,
		"data", resolved.DataPath,
		"output", resolved.OutputDir,
		"pattern", resolved.FilenamePattern,
		"rate", resolved.PerKmRate,
		"bindings", len(resolved.Bindings))

	if recorder != nil {
		l, closeLedger, err := openLedger(config.Ledger.DatabasePath, true, logger)
		if err != nil {
			return err
		}
		defer closeLedger()
		recorder.ledger = l
		recorder.runID, err = l.BeginRun(ctx, resolved.TemplatePath, resolved.DataPath, resolved.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("Recording run in ledger", "run_id", recorder.runID, "database", config.Ledger.DatabasePath)
	}

	summary, runErr := gen.Run(ctx)

	if recorder != nil {
		if err = recorder.finish(runErr); err != nil {
			logger.Error("Failed to finish ledger run", "run_id", recorder.runID, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if summary.Overwritten > 0 {
		logger.Warn("Some rows overwrote pages from earlier rows", "count", summary.Overwritten)
	}
	return nil
}
