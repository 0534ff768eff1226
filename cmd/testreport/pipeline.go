package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/discovery"
	"github.com/bgricker/testreport/internal/logging"
	"github.com/bgricker/testreport/internal/parse"
)

// loadConfig layers .env, .testreport.yml, TESTREPORT_* variables and flags,
// in that order, over the defaults.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	if err := config.LoadDotEnv(root); err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return config.Config{}, "", err
	}

	if err := config.ApplyEnv(&cfg, os.Environ()); err != nil {
		return config.Config{}, "", err
	}

	flags, err := gatherFlags(cmd, args)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, root, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return logger, nil
}

// discoverReports returns report paths relative to cfg.Source. Explicit
// reports win over glob discovery. The output directory is never searched.
func discoverReports(cfg config.Config) ([]string, error) {
	if len(cfg.Reports) > 0 {
		return discovery.Explicit(cfg.Source, cfg.Reports)
	}

	include := cfg.Include
	if include == "" {
		format, err := parse.ParseFormat(cfg.InputFormat)
		if err != nil {
			return nil, err
		}
		include = discovery.DefaultInclude(format)
	}

	return discovery.Reports(cfg.Source, include, excludeOutput(cfg))
}

func excludeOutput(cfg config.Config) string {
	rel, err := filepath.Rel(absPath(cfg.Source), absPath(cfg.Output))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cfg.Exclude
	}
	pattern := config.DataDir + "/**"
	if rel != "." {
		pattern = filepath.ToSlash(rel) + "/**"
	}
	if cfg.Exclude == "" {
		return pattern
	}
	return cfg.Exclude + "," + pattern
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func slashPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.ToSlash(p))
	}
	return out
}
