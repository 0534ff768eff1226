package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/discovery"
	"github.com/bgricker/testreport/internal/outcome"
	"github.com/bgricker/testreport/internal/output"
	"github.com/bgricker/testreport/internal/parse"
	"github.com/bgricker/testreport/internal/report"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [report...]",
		Short: "Build the HTML report from discovered result files",
		RunE:  runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	files, err := discoverReports(cfg)
	if errors.Is(err, discovery.ErrNoReports) {
		logger.Info("no report files found", zap.String("source", cfg.Source))
		fmt.Fprintln(cmd.OutOrStdout(), "No report files found")
		return nil
	}
	if err != nil {
		return err
	}
	for i, f := range discovery.Resolve(cfg.Source, files) {
		logger.Info("processing report", zap.Int("index", i+1), zap.String("file", filepath.ToSlash(f)))
	}

	writer := output.NewWriter(cfg.Output)
	res, generated, genErr := generate(cfg, files, writer, logger)
	result := decideOutcome(generated, cfg.MarkUnstable, genErr)
	if genErr != nil {
		logger.Error("report generation failed", zap.Error(genErr))
	}
	logger.Info("report outcome",
		zap.String("outcome", result.String()),
		zap.Int("exit_code", result.ExitCode()),
		zap.String("output", cfg.Output),
	)

	if err := renderRun(cmd, cfg, files, writer.Artifacts(), res, result); err != nil {
		return err
	}

	if result != outcome.Success {
		return &exitError{code: result.ExitCode(), err: genErr}
	}
	return nil
}

// generate stages the inputs below <output>/data and renders the report from
// the staged copies. A failed generation removes the staged copies too.
func generate(cfg config.Config, files []string, writer *output.Writer, logger *zap.Logger) (*report.Result, bool, error) {
	stager := output.NewWriter(filepath.Join(cfg.Output, config.DataDir))
	discard := func() {
		if err := stager.Discard(); err != nil {
			logger.Warn("discard staged reports", zap.String("dir", stager.Dir()), zap.Error(err))
		}
	}

	staged, err := discovery.Stage(cfg.Source, files, stager)
	if err != nil {
		discard()
		return nil, false, fmt.Errorf("stage reports: %w", err)
	}

	renderers, err := output.DefaultRenderers(cfg.Metrics)
	if err != nil {
		discard()
		return nil, false, err
	}
	format, err := parse.ParseFormat(cfg.InputFormat)
	if err != nil {
		discard()
		return nil, false, err
	}

	builder := report.New(report.Options{
		Options:     cfg.Options(),
		Format:      format,
		TagPatterns: cfg.Tags,
		Writer:      writer,
		Renderers:   renderers,
		Logger:      logger,
	})
	res, ok, err := builder.Generate(staged)
	if !ok {
		discard()
	}
	return res, ok, err
}

// decideOutcome only lets --mark-unstable soften output write failures.
// Unreadable or malformed inputs always fail the run.
func decideOutcome(generated, markUnstable bool, err error) outcome.Outcome {
	var werr *output.OutputWriteError
	if !generated && err != nil && !errors.As(err, &werr) {
		return outcome.Failure
	}
	return outcome.Decide(generated, markUnstable)
}

func renderRun(cmd *cobra.Command, cfg config.Config, files, artifacts []string, res *report.Result, result outcome.Outcome) error {
	switch cfg.Format {
	case config.FormatPretty:
		if res == nil {
			return nil
		}
		if err := output.NewPretty(cmd.OutOrStdout()).RenderRun(res); err != nil {
			return err
		}
		if result == outcome.Success {
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filepath.ToSlash(filepath.Join(cfg.Output, "index.html")))
		}
		return nil
	case config.FormatJSON:
		rep := output.Report{
			Command:   "generate",
			Source:    cfg.Source,
			Output:    cfg.Output,
			Files:     slashPaths(files),
			Outcome:   result.String(),
			Artifacts: artifacts,
		}
		if res != nil {
			rep.Summary = &res.Summary
			rep.Warnings = output.WarningStrings(res.Warnings)
		}
		return output.NewJSON(cmd.OutOrStdout()).Render(rep)
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
