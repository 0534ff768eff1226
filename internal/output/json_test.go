package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/bgricker/testreport/internal/report"
)

func TestJSONRenderer(t *testing.T) {
	summary := report.Summary{TotalSuites: 1, Passed: 2, DurationMS: 10}
	rep := Report{
		Command:  "generate",
		Source:   "reports",
		Files:    []string{"reports/a.json"},
		Summary:  &summary,
		Outcome:  "success",
		Warnings: []string{"a.json > F > S > x: note"},
	}

	buf := &bytes.Buffer{}
	renderer := NewJSON(buf)
	if err := renderer.Render(rep); err != nil {
		t.Fatalf("render json: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Command != rep.Command {
		t.Fatalf("command mismatch: %s vs %s", decoded.Command, rep.Command)
	}
	if len(decoded.Files) != 1 || decoded.Files[0] != "reports/a.json" {
		t.Fatalf("files mismatch: %+v", decoded.Files)
	}
	if decoded.Summary == nil || decoded.Summary.Passed != 2 {
		t.Fatalf("summary mismatch: %+v", decoded.Summary)
	}
	if len(decoded.Warnings) != 1 {
		t.Fatalf("expected warnings serialized")
	}
}

func TestJSONArtifactRenderer(t *testing.T) {
	res := buildResult(t, fixturePath("cucumber", "checkout.json"))
	w := NewWriter(t.TempDir())
	if err := NewJSONArtifact().Render(w, res); err != nil {
		t.Fatalf("render artifact: %v", err)
	}

	var doc struct {
		Title   string `json:"title"`
		Summary struct {
			Failed int `json:"failed"`
		} `json:"summary"`
		Warnings []string `json:"warnings"`
		Run      struct {
			Status string `json:"status"`
			Suites []struct {
				Name      string `json:"name"`
				Scenarios []struct {
					UniqueID   string `json:"unique_id"`
					DurationMS int64  `json:"duration_ms"`
					Status     string `json:"status"`
				} `json:"scenarios"`
			} `json:"suites"`
		} `json:"run"`
	}
	if err := json.Unmarshal([]byte(readArtifact(t, w, "report.json")), &doc); err != nil {
		t.Fatalf("decode report.json: %v", err)
	}
	if doc.Title != "Test Results" || doc.Run.Status != "failed" || doc.Summary.Failed != 3 {
		t.Fatalf("unexpected document header: %+v", doc)
	}
	if len(doc.Run.Suites) != 1 || len(doc.Run.Suites[0].Scenarios) != 3 {
		t.Fatalf("unexpected suites: %+v", doc.Run.Suites)
	}
	first := doc.Run.Suites[0].Scenarios[0]
	if first.UniqueID != "sc-1" || first.DurationMS != 18 || first.Status != "failed" {
		t.Fatalf("unexpected first scenario: %+v", first)
	}
	if len(doc.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", doc.Warnings)
	}
}
