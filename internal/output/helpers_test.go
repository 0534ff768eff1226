package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgricker/testreport/internal/report"
	"github.com/bgricker/testreport/internal/rollup"
)

func fixturePath(parts ...string) string {
	return filepath.Join(append([]string{"..", "..", "testdata", "reports"}, parts...)...)
}

func buildResult(t *testing.T, paths ...string) *report.Result {
	t.Helper()
	res, err := report.New(report.Options{IDs: &rollup.SequenceGenerator{Prefix: "sc"}}).Build(paths)
	require.NoError(t, err)
	return res
}
