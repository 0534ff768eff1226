package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgricker/testreport/internal/model"
)

func TestHTMLRendererWritesPages(t *testing.T) {
	res := buildResult(t, fixturePath("cucumber", "checkout.json"), fixturePath("junit", "rspec.xml"))
	html, err := NewHTML()
	require.NoError(t, err)

	w := NewWriter(t.TempDir())
	require.NoError(t, html.Render(w, res))
	assert.Equal(t, []string{
		"assets/report.css",
		"features/1-checkout.html",
		"features/2-rspec.html",
		"index.html",
		"tags.html",
	}, w.Artifacts())

	index := readArtifact(t, w, "index.html")
	assert.Contains(t, index, `<link rel="stylesheet" href="assets/report.css">`)
	assert.Contains(t, index, `<a href="features/1-checkout.html">Checkout</a>`)
	assert.Contains(t, index, "Test Results")
	assert.Contains(t, index, `unknown status &#34;pending&#34; treated as undefined`)

	feature := readArtifact(t, w, "features/1-checkout.html")
	assert.Contains(t, feature, `href="../assets/report.css"`)
	assert.Contains(t, feature, "expected balance 10 but was 9")
	assert.Contains(t, feature, `<img src="data:image/png;base64,`)
	assert.Contains(t, feature, "cart is empty")
	assert.Contains(t, feature, "<strong>")
	assert.NotContains(t, feature, "<script")

	tags := readArtifact(t, w, "tags.html")
	assert.Less(t, strings.Index(tags, "@shop"), strings.Index(tags, "@smoke"))
	assert.Less(t, strings.Index(tags, "@smoke"), strings.Index(tags, "@voucher"))
	assert.Contains(t, tags, `href="features/1-checkout.html#scenario-2"`)
}

func TestDescribeSanitizesMarkdown(t *testing.T) {
	html, err := NewHTML()
	require.NoError(t, err)

	out := string(html.describe("Some **bold** text <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Empty(t, html.describe("   "))
}

func TestSlugAndSuitePage(t *testing.T) {
	assert.Equal(t, "features/3-user-sign-in.html", SuitePage(2, "User: sign-in!"))
	assert.Equal(t, "suite", slug("???"))
	assert.Equal(t, "caf", slug("Café"))
}

func TestEmbeddingView(t *testing.T) {
	img := embeddingViewOf(model.Embedding{MimeType: "image/png", Data: "iVBORw0KGgo="})
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", string(img.ImageURI))
	assert.Equal(t, "8 B", img.Size)

	text := embeddingViewOf(model.Embedding{MimeType: "text/plain", Data: "aGVsbG8="})
	assert.Equal(t, "hello", text.Text)
	assert.Empty(t, text.ImageURI)

	raw := embeddingViewOf(model.Embedding{MimeType: "text/plain", Data: "not base64!"})
	assert.Equal(t, "not base64!", raw.Text)

	bad := embeddingViewOf(model.Embedding{MimeType: "image/png", Data: "%%%"})
	assert.Empty(t, bad.ImageURI)
}

func TestBuildTagIndexCountsOncePerScenario(t *testing.T) {
	suites := []model.SuiteResult{{
		Suite: model.Suite{Name: "s", Tags: []model.Tag{{Name: "@a"}}},
		Scenarios: []model.ScenarioResult{
			{Scenario: model.Scenario{Name: "x", Tags: []model.Tag{{Name: "@a"}, {Name: "@b"}}}, Status: model.StatusPassed},
			{Scenario: model.Scenario{Name: "y"}, Status: model.StatusFailed},
		},
	}}
	index := buildTagIndex(suites, []string{"features/1-s.html"})
	require.Len(t, index, 2)
	assert.Equal(t, "@a", index[0].Name)
	assert.Equal(t, 1, index[0].Passed)
	assert.Equal(t, 1, index[0].Failed)
	assert.Len(t, index[0].Scenarios, 2)
	assert.Equal(t, "@b", index[1].Name)
}

func readArtifact(t *testing.T, w *Writer, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(w.Dir(), filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}
