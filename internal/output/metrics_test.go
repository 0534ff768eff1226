package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRenderer(t *testing.T) {
	res := buildResult(t, fixturePath("cucumber", "checkout.json"), fixturePath("junit", "rspec.xml"))
	w := NewWriter(t.TempDir())

	require.NoError(t, NewMetrics().Render(w, res))
	assert.Equal(t, []string{"metrics.prom"}, w.Artifacts())

	out := readArtifact(t, w, "metrics.prom")
	for _, line := range []string{
		"# TYPE testreport_scenarios gauge",
		`testreport_scenarios{status="failed"} 5`,
		`testreport_scenarios{status="passed"} 2`,
		`testreport_suites{status="failed"} 2`,
		`testreport_suites{status="passed"} 0`,
		`testreport_steps{status="passed"} 6`,
		`testreport_steps{status="undefined"} 2`,
		`testreport_steps{status="errored"} 0`,
		`testreport_suite_duration_seconds{status="failed",suite="rspec"} 0.75`,
		"testreport_run_duration_seconds 0.775",
		"testreport_warnings 1",
	} {
		assert.Contains(t, out, line)
	}
}
