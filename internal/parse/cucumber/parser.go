package cucumber

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/parse"
)

// Parser decodes Cucumber JSON reports: an array of features, each holding
// elements (scenarios and backgrounds) with steps.
type Parser struct{}

// NewParser constructs a Cucumber JSON parser.
func NewParser() *Parser {
	return &Parser{}
}

// Format implements parse.Parser.
func (p *Parser) Format() parse.Format { return parse.FormatCucumber }

// Parse reads one Cucumber JSON document.
func (p *Parser) Parse(path string, r io.Reader) ([]model.Suite, []parse.Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read report %q: %w", path, err)
	}
	return decodeFeatures(data, path)
}

func decodeFeatures(data []byte, path string) ([]model.Suite, []parse.Warning, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, parse.Malformedf(path, "empty document")
	}
	if trimmed[0] != '[' {
		return nil, nil, parse.Malformedf(path, "expected a JSON array of features")
	}

	var docs []featureDocument
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, nil, parse.Malformed(path, "decode cucumber json", err)
	}

	suites := make([]model.Suite, 0, len(docs))
	warnings := make([]parse.Warning, 0)
	for fi, doc := range docs {
		suite := model.Suite{
			Name:        doc.Name,
			ID:          doc.ID,
			URI:         doc.URI,
			Keyword:     strings.TrimSpace(doc.Keyword),
			Description: strings.TrimSpace(doc.Description),
			Line:        doc.Line,
			Format:      string(parse.FormatCucumber),
			Tags:        convertTags(doc.Tags),
		}
		if suite.Name == "" {
			suite.Name = doc.URI
		}
		if suite.Name == "" {
			suite.Name = fmt.Sprintf("%s #%d", filepath.Base(path), fi+1)
		}

		suite.Scenarios = make([]model.Scenario, 0, len(doc.Elements))
		for ei, el := range doc.Elements {
			scenario := model.Scenario{
				Name:        el.Name,
				ID:          el.ID,
				Line:        el.Line,
				Keyword:     strings.TrimSpace(el.Keyword),
				Description: strings.TrimSpace(el.Description),
				Type:        el.Type,
				Tags:        convertTags(el.Tags),
			}
			if scenario.Name == "" {
				scenario.Name = fmt.Sprintf("scenario %d", ei+1)
			}

			scenario.Steps = make([]model.Step, 0, len(el.Steps))
			for si, st := range el.Steps {
				step := model.Step{
					Keyword:    strings.TrimSpace(st.Keyword),
					Name:       st.Name,
					Line:       st.Line,
					Embeddings: convertEmbeddings(st.Embeddings),
					Output:     convertOutput(st.Output),
				}
				if st.DocString != nil {
					step.DocString = st.DocString.Value
				}
				if step.Name == "" {
					step.Name = fmt.Sprintf("step %d", si+1)
				}
				if st.Result == nil {
					return nil, nil, parse.Malformedf(path, "feature %q scenario %q step %q has no result", suite.Name, scenario.Name, step.Name)
				}

				status, ok := model.ParseStatus(st.Result.Status)
				if !ok {
					warnings = append(warnings, parse.UnknownStatus(path, suite.Name, scenario.Name, step.Name, st.Result.Status))
				}
				d, err := parseDuration(st.Result.Duration)
				if err != nil {
					return nil, nil, parse.Malformed(path, fmt.Sprintf("feature %q scenario %q step %q", suite.Name, scenario.Name, step.Name), err)
				}
				step.Result = model.NewResult(status, d, st.Result.ErrorMessage)
				scenario.Steps = append(scenario.Steps, step)
			}
			suite.Scenarios = append(suite.Scenarios, scenario)
		}
		suites = append(suites, suite)
	}

	return suites, warnings, nil
}

// parseDuration accepts integer nanoseconds. Floats are truncated, anything
// else is rejected.
func parseDuration(raw json.RawMessage) (time.Duration, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %d", n)
		}
		return time.Duration(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable duration %s", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0, fmt.Errorf("duration %s out of range", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return time.Duration(f), nil
}

func convertTags(docs []tagDocument) []model.Tag {
	if len(docs) == 0 {
		return nil
	}
	out := make([]model.Tag, 0, len(docs))
	for _, d := range docs {
		if d.Name == "" {
			continue
		}
		out = append(out, model.Tag{Name: d.Name, Line: d.Line})
	}
	return out
}

func convertOutput(lines []any) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if s, ok := l.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func convertEmbeddings(docs []embeddingDocument) []model.Embedding {
	if len(docs) == 0 {
		return nil
	}
	out := make([]model.Embedding, 0, len(docs))
	for _, d := range docs {
		mime := d.MimeType
		if mime == "" && d.Media != nil {
			mime = d.Media.Type
		}
		if mime == "" {
			mime = "application/octet-stream"
		}
		out = append(out, model.Embedding{MimeType: mime, Data: d.Data, Name: d.Name})
	}
	return out
}

type featureDocument struct {
	URI         string            `json:"uri"`
	ID          string            `json:"id"`
	Keyword     string            `json:"keyword"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Line        int               `json:"line"`
	Tags        []tagDocument     `json:"tags"`
	Elements    []elementDocument `json:"elements"`
}

type elementDocument struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Line        int            `json:"line"`
	Keyword     string         `json:"keyword"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Tags        []tagDocument  `json:"tags"`
	Steps       []stepDocument `json:"steps"`
}

type stepDocument struct {
	Keyword    string              `json:"keyword"`
	Name       string              `json:"name"`
	Line       int                 `json:"line"`
	Result     *resultDocument     `json:"result"`
	Embeddings []embeddingDocument `json:"embeddings"`
	DocString  *docStringDocument  `json:"doc_string"`
	Output     []any               `json:"output"`
}

type resultDocument struct {
	Status       string          `json:"status"`
	Duration     json.RawMessage `json:"duration"`
	ErrorMessage string          `json:"error_message"`
}

type tagDocument struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

type embeddingDocument struct {
	MimeType string         `json:"mime_type"`
	Media    *mediaDocument `json:"media"`
	Data     string         `json:"data"`
	Name     string         `json:"name"`
}

type mediaDocument struct {
	Type string `json:"type"`
}

type docStringDocument struct {
	Value string `json:"value"`
}
