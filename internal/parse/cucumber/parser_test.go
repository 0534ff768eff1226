package cucumber

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/parse"
)

const sampleFeature = `[
  {
    "uri": "features/login.feature",
    "id": "login",
    "keyword": "Feature",
    "name": "Login",
    "description": "  Users sign in  ",
    "line": 1,
    "tags": [{"name": "@auth", "line": 1}],
    "future_field": {"ignored": true},
    "elements": [
      {
        "id": "login;valid-credentials",
        "name": "Valid credentials",
        "line": 4,
        "keyword": "Scenario",
        "type": "scenario",
        "tags": [{"name": "@smoke"}],
        "steps": [
          {"keyword": "Given ", "name": "a user", "line": 5,
           "result": {"status": "passed", "duration": 10000000}},
          {"keyword": "When ", "name": "they sign in", "line": 6,
           "result": {"status": "undefined", "duration": 5000000}},
          {"keyword": "Then ", "name": "they see the dashboard", "line": 7,
           "result": {"status": "passed", "duration": 3000000},
           "embeddings": [
             {"mime_type": "image/png", "data": "iVBORw0KGgo="},
             {"media": {"type": "text/plain"}, "data": "aGVsbG8=", "name": "log"}
           ],
           "doc_string": {"value": "payload"},
           "output": ["line one", {"structured": true}]}
        ]
      }
    ]
  }
]`

func TestParseSample(t *testing.T) {
	suites, warnings, err := NewParser().Parse("login.json", strings.NewReader(sampleFeature))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, suites, 1)

	suite := suites[0]
	assert.Equal(t, "Login", suite.Name)
	assert.Equal(t, "features/login.feature", suite.URI)
	assert.Equal(t, "Users sign in", suite.Description)
	assert.Equal(t, string(parse.FormatCucumber), suite.Format)
	assert.Equal(t, []model.Tag{{Name: "@auth", Line: 1}}, suite.Tags)
	require.Len(t, suite.Scenarios, 1)

	sc := suite.Scenarios[0]
	assert.Equal(t, "Valid credentials", sc.Name)
	assert.Equal(t, "login;valid-credentials", sc.ID)
	assert.Equal(t, 4, sc.Line)
	assert.Equal(t, "scenario", sc.Type)
	require.Len(t, sc.Steps, 3)

	assert.Equal(t, "Given", sc.Steps[0].Keyword)
	assert.Equal(t, model.StatusPassed, sc.Steps[0].Result.Status)
	assert.Equal(t, 10*time.Millisecond, sc.Steps[0].Result.Duration)
	assert.Equal(t, model.StatusUndefined, sc.Steps[1].Result.Status)

	last := sc.Steps[2]
	require.Len(t, last.Embeddings, 2)
	assert.Equal(t, "image/png", last.Embeddings[0].MimeType)
	assert.Equal(t, "text/plain", last.Embeddings[1].MimeType)
	assert.Equal(t, "log", last.Embeddings[1].Name)
	assert.Equal(t, "payload", last.DocString)
	assert.Equal(t, []string{"line one"}, last.Output)
}

func TestParseUnknownStatusIsUndefinedWithWarning(t *testing.T) {
	doc := `[{"name": "F", "elements": [{"name": "S", "steps": [
	  {"name": "ok", "result": {"status": "passed", "duration": 1}},
	  {"name": "odd", "result": {"status": "pending", "duration": 2}}
	]}]}]`
	suites, warnings, err := NewParser().Parse("f.json", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, `"pending"`)
	assert.Equal(t, "odd", warnings[0].Step)
	assert.Equal(t, model.StatusUndefined, suites[0].Scenarios[0].Steps[1].Result.Status)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"syntax":             `[{"name": `,
		"not an array":       `{"name": "F"}`,
		"empty":              `   `,
		"missing result":     `[{"elements": [{"steps": [{"name": "x"}]}]}]`,
		"null result":        `[{"elements": [{"steps": [{"name": "x", "result": null}]}]}]`,
		"string duration":    `[{"elements": [{"steps": [{"result": {"status": "passed", "duration": "soon"}}]}]}]`,
		"negative duration":  `[{"elements": [{"steps": [{"result": {"status": "passed", "duration": -5}}]}]}]`,
		"huge duration":      `[{"elements": [{"steps": [{"result": {"status": "passed", "duration": 99999999999999999999}}]}]}]`,
		"feature not object": `[1, 2]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := NewParser().Parse("broken.json", strings.NewReader(doc))
			require.Error(t, err)
			var malformed *parse.MalformedInputError
			require.True(t, errors.As(err, &malformed), "expected MalformedInputError, got %T: %v", err, err)
			assert.Equal(t, "broken.json", malformed.Path)
		})
	}
}

func TestParseFallbackNames(t *testing.T) {
	doc := `[{"uri": "a.feature", "elements": [{"steps": [{"result": {"status": "passed"}}]}]}, {"elements": []}]`
	suites, _, err := NewParser().Parse("/tmp/run/out.json", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "a.feature", suites[0].Name)
	assert.Equal(t, "scenario 1", suites[0].Scenarios[0].Name)
	assert.Equal(t, "step 1", suites[0].Scenarios[0].Steps[0].Name)
	assert.Equal(t, "out.json #2", suites[1].Name)
	assert.Empty(t, suites[1].Scenarios)
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration([]byte("1500000000"))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = parseDuration([]byte("2.5e3"))
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Nanosecond, d)

	d, err = parseDuration(nil)
	require.NoError(t, err)
	assert.Zero(t, d)

	for _, raw := range []string{"99999999999999999999", "9.3e18", "1e400"} {
		_, err := parseDuration([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestParseFixtureFile(t *testing.T) {
	path := filepath.Join(projectRoot(t), "testdata", "reports", "cucumber", "checkout.json")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	suites, warnings, err := NewParser().Parse(path, f)
	require.NoError(t, err)
	require.Len(t, suites, 1)
	require.Len(t, warnings, 1)
	assert.Len(t, suites[0].Scenarios, 3)
}

func projectRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root := filepath.Clean(filepath.Join(wd, "..", "..", ".."))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("locate project root: %v", err)
	}
	return root
}
