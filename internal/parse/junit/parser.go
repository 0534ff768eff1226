package junit

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
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

const (
	suiteKeyword = "Test Suite"
	caseKeyword  = "Test Case"
	caseType     = "testcase"
)

// Parser decodes JUnit-style XML as produced by RSpec, Surefire and most
// xUnit formatters. The root may be <testsuites> or a bare <testsuite>.
type Parser struct{}

// NewParser constructs a JUnit XML parser.
func NewParser() *Parser {
	return &Parser{}
}

// Format implements parse.Parser.
func (p *Parser) Format() parse.Format { return parse.FormatJUnit }

// Parse reads one XML report.
func (p *Parser) Parse(path string, r io.Reader) ([]model.Suite, []parse.Warning, error) {
	decoder := xml.NewDecoder(r)

	root, err := firstElement(decoder)
	if err != nil {
		return nil, nil, parse.Malformed(path, "decode junit xml", err)
	}

	var docs []testSuiteDocument
	switch root.Name.Local {
	case "testsuites":
		var doc testSuitesDocument
		if err := decoder.DecodeElement(&doc, &root); err != nil {
			return nil, nil, parse.Malformed(path, "decode junit xml", err)
		}
		docs = doc.Suites
	case "testsuite":
		var doc testSuiteDocument
		if err := decoder.DecodeElement(&doc, &root); err != nil {
			return nil, nil, parse.Malformed(path, "decode junit xml", err)
		}
		docs = []testSuiteDocument{doc}
	default:
		return nil, nil, parse.Malformedf(path, "unexpected root element <%s>", root.Name.Local)
	}

	conv := converter{path: path}
	for _, doc := range docs {
		if err := conv.addSuite(doc); err != nil {
			return nil, nil, err
		}
	}
	return conv.suites, conv.warnings, nil
}

func firstElement(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, errors.New("no root element")
			}
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

type converter struct {
	path     string
	suites   []model.Suite
	warnings []parse.Warning
}

// addSuite flattens doc and its nested suites in document order.
func (c *converter) addSuite(doc testSuiteDocument) error {
	if len(doc.Cases) > 0 || len(doc.Suites) == 0 {
		suite, err := c.convertSuite(doc)
		if err != nil {
			return err
		}
		c.suites = append(c.suites, suite)
	}
	for _, nested := range doc.Suites {
		if err := c.addSuite(nested); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) convertSuite(doc testSuiteDocument) (model.Suite, error) {
	suite := model.Suite{
		Name:    strings.TrimSpace(doc.Name),
		ID:      strings.TrimSpace(doc.ID),
		URI:     doc.File,
		Keyword: suiteKeyword,
		Format:  string(parse.FormatJUnit),
	}
	if suite.Name == "" {
		suite.Name = filepath.Base(c.path)
	}
	if suite.ID == "" {
		suite.ID = suite.Name
	}
	if suite.URI == "" {
		suite.URI = c.path
	}
	if doc.Hostname != "" || doc.Timestamp != "" {
		suite.Description = strings.TrimSpace(strings.Join(nonEmpty(doc.Hostname, doc.Timestamp), " "))
	}

	suite.Scenarios = make([]model.Scenario, 0, len(doc.Cases))
	for idx, tc := range doc.Cases {
		scenario, err := c.convertCase(suite.Name, idx, tc)
		if err != nil {
			return model.Suite{}, err
		}
		suite.Scenarios = append(suite.Scenarios, scenario)
	}
	return suite, nil
}

func (c *converter) convertCase(suiteName string, idx int, tc testCaseDocument) (model.Scenario, error) {
	name := strings.TrimSpace(tc.Name)
	if name == "" {
		name = fmt.Sprintf("test case %d", idx+1)
	}
	id := name
	if tc.ClassName != "" {
		id = tc.ClassName + "." + name
	}

	scenario := model.Scenario{
		Name:        name,
		ID:          id,
		Keyword:     caseKeyword,
		Type:        caseType,
		Description: tc.ClassName,
	}
	if line, err := strconv.Atoi(strings.TrimSpace(tc.Line)); err == nil && line > 0 {
		scenario.Line = line
	}

	d, err := parseSeconds(tc.Time)
	if err != nil {
		return model.Scenario{}, parse.Malformed(c.path, fmt.Sprintf("suite %q test case %q", suiteName, name), err)
	}

	status, errMsg := c.classify(suiteName, name, tc)
	step := model.Step{
		Name:       name,
		Line:       scenario.Line,
		Result:     model.NewResult(status, d, errMsg),
		Embeddings: outputEmbeddings(tc),
	}
	scenario.Steps = []model.Step{step}
	return scenario, nil
}

// classify maps child elements onto a status: failure, then error, then
// skipped, then an explicit status attribute, otherwise passed.
func (c *converter) classify(suiteName, caseName string, tc testCaseDocument) (model.Status, string) {
	switch {
	case len(tc.Failures) > 0:
		return model.StatusFailed, tc.Failures[0].message()
	case len(tc.Errors) > 0:
		return model.StatusErrored, tc.Errors[0].message()
	case tc.Skipped != nil:
		return model.StatusSkipped, strings.TrimSpace(tc.Skipped.Message)
	case strings.TrimSpace(tc.Status) != "":
		status, ok := model.ParseStatus(tc.Status)
		if !ok {
			c.warnings = append(c.warnings, parse.UnknownStatus(c.path, suiteName, caseName, caseName, tc.Status))
		}
		return status, ""
	default:
		return model.StatusPassed, ""
	}
}

func outputEmbeddings(tc testCaseDocument) []model.Embedding {
	var out []model.Embedding
	if s := strings.TrimSpace(tc.SystemOut); s != "" {
		out = append(out, model.Embedding{MimeType: "text/plain", Name: "system-out", Data: base64.StdEncoding.EncodeToString([]byte(s))})
	}
	if s := strings.TrimSpace(tc.SystemErr); s != "" {
		out = append(out, model.Embedding{MimeType: "text/plain", Name: "system-err", Data: base64.StdEncoding.EncodeToString([]byte(s))})
	}
	return out
}

// parseSeconds converts a JUnit time attribute (float seconds) to a duration.
func parseSeconds(raw string) (time.Duration, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable time %q", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative time %q", raw)
	}
	ns := f * float64(time.Second)
	if math.IsNaN(ns) || math.IsInf(ns, 0) || ns >= math.MaxInt64 {
		return 0, fmt.Errorf("time %q out of range", raw)
	}
	return time.Duration(ns), nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

type testSuitesDocument struct {
	Name   string              `xml:"name,attr"`
	Suites []testSuiteDocument `xml:"testsuite"`
}

type testSuiteDocument struct {
	Name      string              `xml:"name,attr"`
	ID        string              `xml:"id,attr"`
	File      string              `xml:"file,attr"`
	Time      string              `xml:"time,attr"`
	Timestamp string              `xml:"timestamp,attr"`
	Hostname  string              `xml:"hostname,attr"`
	Cases     []testCaseDocument  `xml:"testcase"`
	Suites    []testSuiteDocument `xml:"testsuite"`
}

type testCaseDocument struct {
	Name      string           `xml:"name,attr"`
	ClassName string           `xml:"classname,attr"`
	File      string           `xml:"file,attr"`
	Line      string           `xml:"line,attr"`
	Time      string           `xml:"time,attr"`
	Status    string           `xml:"status,attr"`
	Failures  []faultDocument  `xml:"failure"`
	Errors    []faultDocument  `xml:"error"`
	Skipped   *skippedDocument `xml:"skipped"`
	SystemOut string           `xml:"system-out"`
	SystemErr string           `xml:"system-err"`
}

type faultDocument struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

func (f faultDocument) message() string {
	return strings.Join(nonEmpty(f.Message, f.Text), "\n")
}

type skippedDocument struct {
	Message string `xml:"message,attr"`
}
