package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrettyRenderList(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.RenderList("reports", []string{"reports/a.json", "reports/b.xml"}); err != nil {
		t.Fatalf("render list: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Reports reports") {
		t.Fatalf("expected header, got %q", out)
	}
	if !strings.Contains(out, "[2] reports/b.xml") {
		t.Fatalf("expected indexed entry, got %q", out)
	}
}

func TestPrettyRenderRun(t *testing.T) {
	res := buildResult(t, fixturePath("junit", "rspec.xml"))

	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.RenderRun(res); err != nil {
		t.Fatalf("render run: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "✓ User validates email (250ms)") {
		t.Fatalf("expected success glyph, got %q", out)
	}
	if !strings.Contains(out, "✗ User rejects blank name") {
		t.Fatalf("expected failure glyph, got %q", out)
	}
	if !strings.Contains(out, "        expected valid? to be false") {
		t.Fatalf("expected indented error message, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes when not writing to a terminal, got %q", out)
	}
	if !strings.Contains(out, "SUMMARY: 2 passed, 2 failed (steps: 2 passed, 1 failed, 1 skipped, 0 undefined, 0 errored) (750ms)") {
		t.Fatalf("expected summary line, got %q", out)
	}
}
