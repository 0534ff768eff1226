package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bgricker/testreport/internal/config"
)

func gatherFlags(cmd *cobra.Command, args []string) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	stringFlags := []struct {
		name string
		dst  *config.StringFlag
	}{
		{"source", &values.Source},
		{"output", &values.Output},
		{"include", &values.Include},
		{"exclude", &values.Exclude},
		{"input-format", &values.InputFormat},
		{"format", &values.Format},
		{"log-level", &values.LogLevel},
		{"log-format", &values.LogFormat},
	}
	for _, f := range stringFlags {
		if err := stringFlag(flags, f.name, f.dst); err != nil {
			return values, err
		}
	}

	if flags.Changed("tag") {
		v, err := flags.GetStringArray("tag")
		if err != nil {
			return values, fmt.Errorf("parse --tag: %w", err)
		}
		values.Tags = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("property") {
		v, err := flags.GetStringToString("property")
		if err != nil {
			return values, fmt.Errorf("parse --property: %w", err)
		}
		values.Properties = v
	}

	if err := boolFlag(flags, "mark-unstable", &values.MarkUnstable); err != nil {
		return values, err
	}
	if err := boolFlag(flags, "metrics", &values.Metrics); err != nil {
		return values, err
	}

	if len(args) > 0 {
		values.Reports = config.SliceFlag{Values: append([]string{}, args...)}
	}

	return values, nil
}

func stringFlag(flags *pflag.FlagSet, name string, dst *config.StringFlag) error {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return fmt.Errorf("parse --%s: %w", name, err)
	}
	*dst = config.StringFlag{Value: v, Set: true}
	return nil
}

func boolFlag(flags *pflag.FlagSet, name string, dst *config.BoolFlag) error {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetBool(name)
	if err != nil {
		return fmt.Errorf("parse --%s: %w", name, err)
	}
	*dst = config.BoolFlag{Value: v, Set: true}
	return nil
}
