package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bgricker/testreport/internal/options"
	"github.com/bgricker/testreport/internal/parse"
)

// Config captures CLI options sourced from config files, the environment or flags.
type Config struct {
	Source  string   `yaml:"source"`
	Output  string   `yaml:"output"`
	Reports []string `yaml:"reports"`
	Include string   `yaml:"include"`
	Exclude string   `yaml:"exclude"`

	InputFormat  string `yaml:"input_format"`
	Format       string `yaml:"format"`
	MarkUnstable bool   `yaml:"-"`
	Metrics      bool   `yaml:"-"`

	Tags       []string          `yaml:"tags"`
	Properties map[string]string `yaml:"properties"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// fileConfig mirrors Config with pointer booleans so a file can turn a
// default-on switch off.
type fileConfig struct {
	Config       `yaml:",inline"`
	MarkUnstable *bool `yaml:"mark_unstable"`
	Metrics      *bool `yaml:"metrics"`
}

const (
	// FileName is the repository-level configuration file.
	FileName = ".testreport.yml"
	// DotEnvName is the optional environment file loaded before TESTREPORT_* variables are read.
	DotEnvName = ".env"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TESTREPORT_"

	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"

	// LogFormatConsole selects the human readable zap encoder.
	LogFormatConsole = "console"
	// LogFormatJSON selects the structured zap encoder.
	LogFormatJSON = "json"

	// DefaultOutput is where artifacts are written when nothing else is configured.
	DefaultOutput = "test-report"
	// DataDir holds staged copies of the input reports below the output directory.
	DataDir = "data"
)

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Source:      ".",
		Output:      DefaultOutput,
		InputFormat: string(parse.FormatAuto),
		Format:      FormatPretty,
		Metrics:     true,
		LogLevel:    "info",
		LogFormat:   LogFormatConsole,
	}
}

// Load reads .testreport.yml from the repository root when present. Missing files are ignored.
func Load(root string) (Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg fileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg.Config)
	if fileCfg.MarkUnstable != nil {
		cfg.MarkUnstable = *fileCfg.MarkUnstable
	}
	if fileCfg.Metrics != nil {
		cfg.Metrics = *fileCfg.Metrics
	}
	return cfg, nil
}

// LoadDotEnv loads root/.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, DotEnvName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func merge(base, override Config) Config {
	out := base

	if override.Source != "" {
		out.Source = override.Source
	}
	if override.Output != "" {
		out.Output = override.Output
	}
	if len(override.Reports) > 0 {
		out.Reports = append([]string{}, override.Reports...)
	}
	if override.Include != "" {
		out.Include = override.Include
	}
	if override.Exclude != "" {
		out.Exclude = override.Exclude
	}
	if override.InputFormat != "" {
		out.InputFormat = override.InputFormat
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if len(override.Tags) > 0 {
		out.Tags = append([]string{}, override.Tags...)
	}
	for k, v := range override.Properties {
		if out.Properties == nil {
			out.Properties = map[string]string{}
		}
		out.Properties[options.NormalizeKey(k)] = v
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		out.LogFormat = override.LogFormat
	}

	return out
}

// ApplyEnv overrides cfg from the TESTREPORT_* entries of environ, which
// uses the os.Environ key=value form.
// TESTREPORT_PROPERTY_<NAME> sets the run property NAME.
func ApplyEnv(cfg *Config, environ []string) error {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, EnvPrefix)
		if prop, ok := strings.CutPrefix(name, "PROPERTY_"); ok {
			if prop == "" {
				continue
			}
			if cfg.Properties == nil {
				cfg.Properties = map[string]string{}
			}
			cfg.Properties[options.NormalizeKey(prop)] = value
			continue
		}

		switch name {
		case "SOURCE":
			cfg.Source = value
		case "OUTPUT":
			cfg.Output = value
		case "INCLUDE":
			cfg.Include = value
		case "EXCLUDE":
			cfg.Exclude = value
		case "INPUT_FORMAT":
			cfg.InputFormat = value
		case "FORMAT":
			cfg.Format = value
		case "TAGS":
			cfg.Tags = splitList(value)
		case "LOG_LEVEL":
			cfg.LogLevel = value
		case "LOG_FORMAT":
			cfg.LogFormat = value
		case "MARK_UNSTABLE":
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			cfg.MarkUnstable = b
		case "METRICS":
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			cfg.Metrics = b
		}
	}
	return nil
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Source.Set {
		cfg.Source = flags.Source.Value
	}
	if flags.Output.Set {
		cfg.Output = flags.Output.Value
	}
	if len(flags.Reports.Values) > 0 {
		cfg.Reports = append([]string{}, flags.Reports.Values...)
	}
	if flags.Include.Set {
		cfg.Include = flags.Include.Value
	}
	if flags.Exclude.Set {
		cfg.Exclude = flags.Exclude.Value
	}
	if flags.InputFormat.Set {
		cfg.InputFormat = flags.InputFormat.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if len(flags.Tags.Values) > 0 {
		cfg.Tags = append([]string{}, flags.Tags.Values...)
	}
	for k, v := range flags.Properties {
		if cfg.Properties == nil {
			cfg.Properties = map[string]string{}
		}
		cfg.Properties[options.NormalizeKey(k)] = v
	}
	if flags.MarkUnstable.Set {
		cfg.MarkUnstable = flags.MarkUnstable.Value
	}
	if flags.Metrics.Set {
		cfg.Metrics = flags.Metrics.Value
	}
	if flags.LogLevel.Set {
		cfg.LogLevel = flags.LogLevel.Value
	}
	if flags.LogFormat.Set {
		cfg.LogFormat = flags.LogFormat.Value
	}
}

// Validate rejects values no command can act on.
func (c Config) Validate() error {
	if c.Format != FormatPretty && c.Format != FormatJSON {
		return fmt.Errorf("unsupported format %q (pretty|json)", c.Format)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("unsupported log format %q (console|json)", c.LogFormat)
	}
	if _, err := parse.ParseFormat(c.InputFormat); err != nil {
		return err
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output directory must not be empty")
	}
	return nil
}

// Options resolves the run-wide report options from the configured properties.
func (c Config) Options() options.Options {
	return options.Resolve(c.Properties)
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Source       StringFlag
	Output       StringFlag
	Reports      SliceFlag
	Include      StringFlag
	Exclude      StringFlag
	InputFormat  StringFlag
	Format       StringFlag
	Tags         SliceFlag
	Properties   map[string]string
	MarkUnstable BoolFlag
	Metrics      BoolFlag
	LogLevel     StringFlag
	LogFormat    StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("parse %s: %q is not a boolean", key, value)
}
