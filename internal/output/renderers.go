package output

import "github.com/bgricker/testreport/internal/report"

// DefaultRenderers returns the artifact renderers for a report generation in
// the order they run. The metrics file is optional.
func DefaultRenderers(withMetrics bool) ([]report.Renderer, error) {
	html, err := NewHTML()
	if err != nil {
		return nil, err
	}
	renderers := []report.Renderer{html, NewJSONArtifact()}
	if withMetrics {
		renderers = append(renderers, NewMetrics())
	}
	return renderers, nil
}
