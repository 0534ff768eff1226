package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/report"
)

// PrettyRenderer renders results in a human-friendly format. Colors are only
// emitted when out is a terminal.
type PrettyRenderer struct {
	out    io.Writer
	styles map[model.Status]lipgloss.Style
	dim    lipgloss.Style
	bold   lipgloss.Style
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	r := lipgloss.NewRenderer(out)
	return &PrettyRenderer{
		out: out,
		styles: map[model.Status]lipgloss.Style{
			model.StatusPassed:    r.NewStyle().Foreground(lipgloss.Color("42")),
			model.StatusFailed:    r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			model.StatusSkipped:   r.NewStyle().Foreground(lipgloss.Color("39")),
			model.StatusUndefined: r.NewStyle().Foreground(lipgloss.Color("214")),
			model.StatusErrored:   r.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		},
		dim:  r.NewStyle().Foreground(lipgloss.Color("243")),
		bold: r.NewStyle().Bold(true),
	}
}

// RenderList renders discovered report files in list mode.
func (p *PrettyRenderer) RenderList(root string, files []string) error {
	if _, err := fmt.Fprintf(p.out, "Reports %s\n", p.bold.Render(root)); err != nil {
		return err
	}
	for i, file := range files {
		if _, err := fmt.Fprintf(p.out, "  %s %s\n", p.dim.Render(fmt.Sprintf("[%d]", i+1)), file); err != nil {
			return err
		}
	}
	return nil
}

// RenderRun shows every suite and scenario with a summary. Failing steps of
// failed scenarios are expanded with their error messages.
func (p *PrettyRenderer) RenderRun(res *report.Result) error {
	var buffer bytes.Buffer
	for _, suite := range res.Run.Suites {
		fmt.Fprintf(&buffer, "%s %s\n", p.glyph(suite.Status), p.bold.Render(decorateName(suite.Name, suite.URI)))
		for _, sc := range suite.Scenarios {
			fmt.Fprintf(&buffer, "  %s %s %s\n", p.glyph(sc.Status), sc.Name, p.dim.Render("("+formatDuration(sc.Duration)+")"))
			if sc.Status != model.StatusFailed {
				continue
			}
			for _, st := range sc.Steps {
				if st.Result.Status == model.StatusPassed {
					continue
				}
				label := strings.TrimSpace(st.Keyword + " " + st.Name)
				fmt.Fprintf(&buffer, "      %s %s %s\n", p.glyph(st.Result.Status), label, p.dim.Render(string(st.Result.Status)))
				if st.Result.ErrorMessage != "" {
					fmt.Fprintf(&buffer, "%s\n", indent(st.Result.ErrorMessage, "        "))
				}
			}
		}
		if _, err := buffer.WriteTo(p.out); err != nil {
			return err
		}
	}

	for _, w := range res.Warnings {
		if _, err := fmt.Fprintf(p.out, "%s %s\n", p.styles[model.StatusUndefined].Render("warning:"), w.String()); err != nil {
			return err
		}
	}

	s := res.Summary
	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed (steps: %d passed, %d failed, %d skipped, %d undefined, %d errored) (%s)\n",
		s.Passed, s.Failed,
		s.Steps.Passed, s.Steps.Failed, s.Steps.Skipped, s.Steps.Undefined, s.Steps.Errored,
		formatDuration(s.Duration))
	return err
}

func (p *PrettyRenderer) glyph(status model.Status) string {
	style, ok := p.styles[status]
	if !ok {
		return statusGlyph(status)
	}
	return style.Render(statusGlyph(status))
}

func decorateName(name, path string) string {
	if name == "" || name == path {
		return path
	}
	if path == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, path)
}

func statusGlyph(status model.Status) string {
	switch status {
	case model.StatusPassed:
		return "✓"
	case model.StatusFailed, model.StatusErrored:
		return "✗"
	case model.StatusSkipped:
		return "-"
	default:
		return "?"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
