package options

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	// KeyIgnoreUndefinedSteps treats undefined steps as passing when no
	// failed or skipped step is present.
	KeyIgnoreUndefinedSteps = "ignore_undefined_steps"
	// KeyReportTitle sets the heading of rendered reports.
	KeyReportTitle = "report_title"

	// DefaultReportTitle is used when no title override is supplied.
	DefaultReportTitle = "Test Results"
)

// Options holds run-wide switches resolved once per report generation.
type Options struct {
	IgnoreUndefinedSteps bool
	ReportTitle          string
}

// Default returns the options used when nothing is overridden.
func Default() Options {
	return Resolve(nil)
}

// Resolve applies overrides on top of the built-in defaults. Unknown keys are
// ignored and values that cannot be converted keep their default.
func Resolve(overrides map[string]string) Options {
	v := viper.New()
	v.SetDefault(KeyIgnoreUndefinedSteps, false)
	v.SetDefault(KeyReportTitle, DefaultReportTitle)

	for rawKey, value := range overrides {
		key := NormalizeKey(rawKey)
		switch key {
		case KeyIgnoreUndefinedSteps:
			if b, ok := parseBool(value); ok {
				v.Set(key, b)
			}
		case KeyReportTitle:
			if strings.TrimSpace(value) != "" {
				v.Set(key, strings.TrimSpace(value))
			}
		}
	}

	return Options{
		IgnoreUndefinedSteps: v.GetBool(KeyIgnoreUndefinedSteps),
		ReportTitle:          v.GetString(KeyReportTitle),
	}
}

// NormalizeKey folds case and separators so IGNORE_UNDEFINED_STEPS,
// ignore-undefined-steps and ignore.undefined.steps name the same option.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(key)
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, true
	case "0", "f", "false", "no", "n", "off":
		return false, true
	}
	return false, false
}
