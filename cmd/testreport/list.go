package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/discovery"
	"github.com/bgricker/testreport/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [report...]",
		Short: "List the report files a generate run would read",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	files, err := discoverReports(cfg)
	if errors.Is(err, discovery.ErrNoReports) {
		fmt.Fprintln(cmd.OutOrStdout(), "No report files found")
		return nil
	}
	if err != nil {
		return err
	}

	return renderList(cmd, cfg, slashPaths(files))
}

func renderList(cmd *cobra.Command, cfg config.Config, files []string) error {
	switch cfg.Format {
	case config.FormatPretty:
		return output.NewPretty(cmd.OutOrStdout()).RenderList(cfg.Source, files)
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Render(output.Report{
			Command: "list",
			Source:  cfg.Source,
			Files:   files,
		})
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
