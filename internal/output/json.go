package output

import (
	"encoding/json"
	"io"

	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/parse"
	"github.com/bgricker/testreport/internal/report"
)

const reportFile = "report.json"

// JSONRenderer emits structured command output.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures JSON output schema.
type Report struct {
	Command   string          `json:"command"`
	Source    string          `json:"source,omitempty"`
	Output    string          `json:"output,omitempty"`
	Files     []string        `json:"files"`
	Artifacts []string        `json:"artifacts,omitempty"`
	Summary   *report.Summary `json:"summary,omitempty"`
	Outcome   string          `json:"outcome,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WarningStrings flattens parser warnings for Report.Warnings.
func WarningStrings(warnings []parse.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.String())
	}
	return out
}

// JSONArtifactRenderer writes the finalized run as report.json.
type JSONArtifactRenderer struct{}

// NewJSONArtifact constructs a JSONArtifactRenderer.
func NewJSONArtifact() *JSONArtifactRenderer { return &JSONArtifactRenderer{} }

// Name implements report.Renderer.
func (j *JSONArtifactRenderer) Name() string { return "json" }

// Render implements report.Renderer.
func (j *JSONArtifactRenderer) Render(w report.ArtifactWriter, res *report.Result) error {
	_, err := w.WriteJSON(reportFile, artifactDocument{
		Title:    res.Options.ReportTitle,
		Summary:  res.Summary,
		Files:    res.Files,
		Warnings: WarningStrings(res.Warnings),
		Run:      res.Run,
	})
	return err
}

type artifactDocument struct {
	Title    string         `json:"title"`
	Summary  report.Summary `json:"summary"`
	Files    []string       `json:"files"`
	Warnings []string       `json:"warnings,omitempty"`
	Run      model.Run      `json:"run"`
}
