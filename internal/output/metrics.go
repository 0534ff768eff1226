package output

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/report"
)

const metricsFile = "metrics.prom"

// MetricsRenderer exports run totals in the Prometheus text format so a
// textfile collector or pushgateway job can pick them up.
type MetricsRenderer struct{}

// NewMetrics constructs a MetricsRenderer.
func NewMetrics() *MetricsRenderer { return &MetricsRenderer{} }

// Name implements report.Renderer.
func (m *MetricsRenderer) Name() string { return "metrics" }

// Render implements report.Renderer.
func (m *MetricsRenderer) Render(w report.ArtifactWriter, res *report.Result) error {
	payload, err := encodeMetrics(res)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	_, err = w.WriteBytes(metricsFile, payload)
	return err
}

func encodeMetrics(res *report.Result) ([]byte, error) {
	registry := prometheus.NewRegistry()
	suites := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "testreport_suites", Help: "Suites by rolled-up status"},
		[]string{"status"},
	)
	scenarios := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "testreport_scenarios", Help: "Scenarios by rolled-up status"},
		[]string{"status"},
	)
	steps := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "testreport_steps", Help: "Steps by recorded status"},
		[]string{"status"},
	)
	suiteDuration := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "testreport_suite_duration_seconds", Help: "Summed step duration per suite"},
		[]string{"suite", "status"},
	)
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{Name: "testreport_run_duration_seconds", Help: "Summed step duration of the run"})
	warnings := prometheus.NewGauge(prometheus.GaugeOpts{Name: "testreport_warnings", Help: "Parser warnings raised while reading inputs"})

	registry.MustRegister(suites, scenarios, steps, suiteDuration, runDuration, warnings)

	run := res.Run
	suites.WithLabelValues(string(model.StatusPassed)).Set(float64(run.SuiteCounts.Passed))
	suites.WithLabelValues(string(model.StatusFailed)).Set(float64(run.SuiteCounts.Failed))
	scenarios.WithLabelValues(string(model.StatusPassed)).Set(float64(run.ScenarioCounts.Passed))
	scenarios.WithLabelValues(string(model.StatusFailed)).Set(float64(run.ScenarioCounts.Failed))
	for _, status := range model.Statuses {
		steps.WithLabelValues(string(status)).Set(float64(run.StepCounts.Of(status)))
	}
	for _, suite := range run.Suites {
		suiteDuration.WithLabelValues(suite.Name, string(suite.Status)).Add(suite.Duration.Seconds())
	}
	runDuration.Set(run.Duration.Seconds())
	warnings.Set(float64(len(res.Warnings)))

	families, err := registry.Gather()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
