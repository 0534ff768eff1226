package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDefaults(t *testing.T) {
	got := Resolve(nil)
	assert.False(t, got.IgnoreUndefinedSteps)
	assert.Equal(t, DefaultReportTitle, got.ReportTitle)
	assert.Equal(t, got, Default())
}

func TestResolveOverrides(t *testing.T) {
	cases := []struct {
		name      string
		overrides map[string]string
		ignore    bool
		title     string
	}{
		{"canonical key", map[string]string{"ignore_undefined_steps": "true"}, true, DefaultReportTitle},
		{"upper case key", map[string]string{"IGNORE_UNDEFINED_STEPS": "TRUE"}, true, DefaultReportTitle},
		{"dashed key", map[string]string{"ignore-undefined-steps": "yes"}, true, DefaultReportTitle},
		{"dotted key", map[string]string{"ignore.undefined.steps": "1"}, true, DefaultReportTitle},
		{"explicit false", map[string]string{"ignore_undefined_steps": "false"}, false, DefaultReportTitle},
		{"garbage value keeps default", map[string]string{"ignore_undefined_steps": "maybe"}, false, DefaultReportTitle},
		{"unknown key ignored", map[string]string{"colour": "blue"}, false, DefaultReportTitle},
		{"title", map[string]string{"report-title": "  Nightly  "}, false, "Nightly"},
		{"blank title keeps default", map[string]string{"report_title": " "}, false, DefaultReportTitle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.overrides)
			assert.Equal(t, tc.ignore, got.IgnoreUndefinedSteps)
			assert.Equal(t, tc.title, got.ReportTitle)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "ignore_undefined_steps", NormalizeKey(" Ignore-Undefined.Steps "))
}
