package discovery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/testreport/internal/parse"
)

const (
	// DefaultJSONInclude matches Cucumber JSON reports anywhere below the source.
	DefaultJSONInclude = "**/*.json"
	// DefaultXMLInclude matches JUnit XML reports anywhere below the source.
	DefaultXMLInclude = "**/*.xml"
)

// DefaultInclude returns the include pattern used when none is configured.
func DefaultInclude(format parse.Format) string {
	switch format {
	case parse.FormatCucumber:
		return DefaultJSONInclude
	case parse.FormatJUnit:
		return DefaultXMLInclude
	default:
		return DefaultJSONInclude + "," + DefaultXMLInclude
	}
}

// compileGlobs turns a comma separated list of Ant-style patterns into
// anchored regular expressions. "**" spans directories, "*" and "?" stay
// within one path segment, and a trailing "/" means everything below.
func compileGlobs(list string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, raw := range strings.Split(list, ",") {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		re, err := compileGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile glob %q: %w", pattern, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func compileGlob(pattern string) (*regexp.Regexp, error) {
	pattern = strings.TrimPrefix(strings.ReplaceAll(pattern, "\\", "/"), "./")
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}

	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func matchAny(patterns []*regexp.Regexp, path string) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
