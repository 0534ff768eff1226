package output

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/yuin/goldmark"

	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/parse"
	"github.com/bgricker/testreport/internal/report"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets/report.css
var reportCSS []byte

const (
	indexFile = "index.html"
	tagsFile  = "tags.html"
	cssFile   = "assets/report.css"
)

// HTMLRenderer writes the browsable report: an overview page, one page per
// suite, a tag index and the stylesheet.
type HTMLRenderer struct {
	tmpl     *template.Template
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTMLRenderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"statusClass": statusClass,
		"duration":    formatDuration,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &HTMLRenderer{
		tmpl:     tmpl,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
	}, nil
}

// Name implements report.Renderer.
func (h *HTMLRenderer) Name() string { return "html" }

// Render implements report.Renderer.
func (h *HTMLRenderer) Render(w report.ArtifactWriter, res *report.Result) error {
	title := res.Options.ReportTitle
	hrefs := make([]string, len(res.Run.Suites))
	for i, suite := range res.Run.Suites {
		hrefs[i] = SuitePage(i, suite.Name)
	}

	idx := indexPage{page: page{Title: title}, Summary: res.Summary, Warnings: res.Warnings}
	for i, suite := range res.Run.Suites {
		idx.Suites = append(idx.Suites, suiteRow{
			Name:     suite.Name,
			Href:     hrefs[i],
			Tags:     suite.Tags,
			Counts:   suite.Counts,
			Steps:    suite.StepCounts,
			Duration: suite.Duration,
			Status:   suite.Status,
		})
	}
	if err := h.execute(w, indexFile, "index", idx); err != nil {
		return err
	}

	for i, suite := range res.Run.Suites {
		if err := h.execute(w, hrefs[i], "feature", h.featurePage(title, suite)); err != nil {
			return err
		}
	}

	if err := h.execute(w, tagsFile, "tagindex", tagsPage{
		page: page{Title: title, Heading: "Tags"},
		Tags: buildTagIndex(res.Run.Suites, hrefs),
	}); err != nil {
		return err
	}

	_, err := w.WriteBytes(cssFile, reportCSS)
	return err
}

func (h *HTMLRenderer) execute(w report.ArtifactWriter, name, tmpl string, data any) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := w.WriteBytes(name, buf.Bytes())
	return err
}

func (h *HTMLRenderer) featurePage(title string, suite model.SuiteResult) featurePage {
	fp := featurePage{
		page:        page{Title: title, Heading: suite.Name, Root: "../"},
		Suite:       suite,
		Description: h.describe(suite.Description),
	}
	for i, sc := range suite.Scenarios {
		view := scenarioView{
			Anchor:      scenarioAnchor(i),
			Name:        sc.Name,
			Keyword:     sc.Keyword,
			Tags:        sc.Tags,
			Status:      sc.Status,
			Duration:    sc.Duration,
			Description: h.describe(sc.Description),
		}
		for _, st := range sc.Steps {
			sv := stepView{
				Keyword:      st.Keyword,
				Name:         st.Name,
				Status:       st.Result.Status,
				Duration:     st.Result.Duration,
				ErrorMessage: st.Result.ErrorMessage,
				DocString:    st.DocString,
				Output:       st.Output,
			}
			for _, e := range st.Embeddings {
				sv.Embeddings = append(sv.Embeddings, embeddingViewOf(e))
			}
			view.Steps = append(view.Steps, sv)
		}
		fp.Scenarios = append(fp.Scenarios, view)
	}
	return fp
}

// describe renders markdown and strips anything unsafe from the result.
func (h *HTMLRenderer) describe(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(h.policy.SanitizeBytes(buf.Bytes()))
}

// SuitePage returns the slash-separated artifact path of the idx-th suite page.
func SuitePage(idx int, name string) string {
	return fmt.Sprintf("features/%d-%s.html", idx+1, slug(name))
}

func scenarioAnchor(idx int) string { return fmt.Sprintf("scenario-%d", idx+1) }

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "suite"
	}
	return s
}

func statusClass(s model.Status) string { return "status-" + string(s) }

func embeddingViewOf(e model.Embedding) embeddingView {
	view := embeddingView{Name: e.Name, MimeType: e.MimeType}
	raw, err := base64.StdEncoding.DecodeString(e.Data)
	decoded := err == nil
	if decoded {
		view.Size = humanize.Bytes(uint64(len(raw)))
	} else {
		view.Size = humanize.Bytes(uint64(len(e.Data)))
	}

	switch {
	case strings.HasPrefix(e.MimeType, "image/") && decoded:
		view.ImageURI = template.URL("data:" + e.MimeType + ";base64," + e.Data)
	case strings.HasPrefix(e.MimeType, "text/") || e.MimeType == "application/json":
		if decoded && utf8.Valid(raw) {
			view.Text = string(raw)
		} else {
			view.Text = e.Data
		}
	}
	return view
}

// buildTagIndex groups scenarios by tag in first-seen order. Suite tags
// apply to every scenario of the suite.
func buildTagIndex(suites []model.SuiteResult, hrefs []string) []tagView {
	index := orderedmap.New[string, *tagView]()
	for i, suite := range suites {
		for j, sc := range suite.Scenarios {
			seen := map[string]bool{}
			for _, tag := range append(append([]model.Tag(nil), suite.Tags...), sc.Tags...) {
				if seen[tag.Name] {
					continue
				}
				seen[tag.Name] = true
				view, ok := index.Get(tag.Name)
				if !ok {
					view = &tagView{Name: tag.Name}
					index.Set(tag.Name, view)
				}
				if sc.Status == model.StatusFailed {
					view.Failed++
				} else {
					view.Passed++
				}
				view.Scenarios = append(view.Scenarios, tagScenario{
					Suite:  suite.Name,
					Name:   sc.Name,
					Href:   hrefs[i] + "#" + scenarioAnchor(j),
					Status: sc.Status,
				})
			}
		}
	}

	out := make([]tagView, 0, index.Len())
	for pair := index.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, *pair.Value)
	}
	return out
}

type page struct {
	Title   string
	Heading string
	Root    string
}

type indexPage struct {
	page
	Summary  report.Summary
	Suites   []suiteRow
	Warnings []parse.Warning
}

type suiteRow struct {
	Name     string
	Href     string
	Tags     []model.Tag
	Counts   model.ScenarioCounts
	Steps    model.StepCounts
	Duration time.Duration
	Status   model.Status
}

type featurePage struct {
	page
	Suite       model.SuiteResult
	Description template.HTML
	Scenarios   []scenarioView
}

type scenarioView struct {
	Anchor      string
	Name        string
	Keyword     string
	Tags        []model.Tag
	Status      model.Status
	Duration    time.Duration
	Description template.HTML
	Steps       []stepView
}

type stepView struct {
	Keyword      string
	Name         string
	Status       model.Status
	Duration     time.Duration
	ErrorMessage string
	DocString    string
	Output       []string
	Embeddings   []embeddingView
}

type embeddingView struct {
	Name     string
	MimeType string
	Size     string
	ImageURI template.URL
	Text     string
}

type tagsPage struct {
	page
	Tags []tagView
}

type tagView struct {
	Name      string
	Passed    int
	Failed    int
	Scenarios []tagScenario
}

type tagScenario struct {
	Suite  string
	Name   string
	Href   string
	Status model.Status
}
