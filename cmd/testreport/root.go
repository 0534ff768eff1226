package main

import (
	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "testreport",
		Short:         "Testreport turns cucumber JSON and JUnit XML results into an HTML report",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("source", ".", "directory searched for report files")
	persistent.StringP("output", "o", config.DefaultOutput, "directory receiving the generated report")
	persistent.String("include", "", "comma separated Ant globs selecting report files")
	persistent.String("exclude", "", "comma separated Ant globs excluding report files")
	persistent.String("input-format", "auto", "input format (auto|cucumber|junit)")
	persistent.String("format", config.FormatPretty, "console output format (pretty|json)")
	persistent.StringArray("tag", nil, "tag filter, prefix with ! to exclude (repeatable)")
	persistent.StringToString("property", nil, "report property key=value (repeatable)")
	persistent.Bool("mark-unstable", false, "exit unstable instead of failed when the report cannot be written")
	persistent.Bool("metrics", true, "write metrics.prom next to the report")
	persistent.String("log-level", "info", "log level (debug|info|warn|error)")
	persistent.String("log-format", config.LogFormatConsole, "log format (console|json)")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
