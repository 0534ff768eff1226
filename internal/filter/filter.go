// Package filter narrows parsed suites to the scenarios whose tags match a
// set of patterns.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/testreport/internal/model"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := compileOne(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func compileOne(raw string) (Pattern, error) {
	if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
		re, err := regexp.Compile(raw[1 : len(raw)-1])
		if err != nil {
			return Pattern{}, fmt.Errorf("compile regexp %q: %w", raw, err)
		}
		return Pattern{raw: raw, regex: re}, nil
	}
	return Pattern{raw: raw, lower: strings.ToLower(raw)}, nil
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// Selector keeps scenarios carrying a tag matched by Only and drops those
// carrying a tag matched by Skip. Suite tags count for every scenario inside.
type Selector struct {
	Only []Pattern
	Skip []Pattern
}

// NewSelector compiles tag expressions. A leading "!" or "~" marks an
// exclusion, so "@smoke,!@slow" keeps smoke scenarios that are not slow.
func NewSelector(exprs []string) (Selector, error) {
	var only, skip []string
	for _, raw := range exprs {
		raw = strings.TrimSpace(raw)
		switch {
		case raw == "":
		case strings.HasPrefix(raw, "!"), strings.HasPrefix(raw, "~"):
			skip = append(skip, raw[1:])
		default:
			only = append(only, raw)
		}
	}
	var sel Selector
	var err error
	if sel.Only, err = Compile(only); err != nil {
		return Selector{}, err
	}
	if sel.Skip, err = Compile(skip); err != nil {
		return Selector{}, err
	}
	return sel, nil
}

// Empty reports whether the selector keeps everything.
func (s Selector) Empty() bool { return len(s.Only) == 0 && len(s.Skip) == 0 }

// Apply returns copies of suites holding only the selected scenarios. Suites
// left without scenarios are dropped. The input is not modified.
func (s Selector) Apply(suites []model.Suite) []model.Suite {
	if s.Empty() {
		return suites
	}
	result := make([]model.Suite, 0, len(suites))
	for _, suite := range suites {
		kept := make([]model.Scenario, 0, len(suite.Scenarios))
		for _, sc := range suite.Scenarios {
			tags := append(append([]model.Tag(nil), suite.Tags...), sc.Tags...)
			if len(s.Only) > 0 && !matchesTags(tags, s.Only) {
				continue
			}
			if len(s.Skip) > 0 && matchesTags(tags, s.Skip) {
				continue
			}
			kept = append(kept, sc)
		}
		if len(kept) == 0 {
			continue
		}
		suiteCopy := suite
		suiteCopy.Scenarios = kept
		result = append(result, suiteCopy)
	}
	return result
}

func matchesTags(tags []model.Tag, patterns []Pattern) bool {
	for _, tag := range tags {
		for _, pattern := range patterns {
			if pattern.Match(tag.Name) {
				return true
			}
		}
	}
	return false
}
