package parse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bgricker/testreport/internal/model"
)

// Format names a supported input format.
type Format string

const (
	// FormatAuto detects the format per file.
	FormatAuto Format = "auto"
	// FormatCucumber is the Cucumber JSON array-of-features format.
	FormatCucumber Format = "cucumber"
	// FormatJUnit is the RSpec/JUnit XML format.
	FormatJUnit Format = "junit"
)

// ErrUnknownFormat indicates a file whose format could not be determined.
var ErrUnknownFormat = errors.New("unknown report format")

// Parser decodes one result file into zero or more suites.
type Parser interface {
	Format() Format
	Parse(path string, r io.Reader) ([]model.Suite, []Warning, error)
}

// Warning captures non-fatal issues encountered while parsing a file.
type Warning struct {
	File     string `json:"file"`
	Suite    string `json:"suite,omitempty"`
	Scenario string `json:"scenario,omitempty"`
	Step     string `json:"step,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	parts := []string{w.File}
	for _, p := range []string{w.Suite, w.Scenario, w.Step} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, " > "), w.Message)
}

// UnknownStatus builds the warning emitted when a status string is not
// recognised and the step is classified as undefined.
func UnknownStatus(file, suite, scenario, step, raw string) Warning {
	return Warning{
		File:     file,
		Suite:    suite,
		Scenario: scenario,
		Step:     step,
		Message:  fmt.Sprintf("unknown status %q treated as %s", raw, model.StatusUndefined),
	}
}

// ParseFormat converts a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(FormatAuto):
		return FormatAuto, nil
	case string(FormatCucumber), "json":
		return FormatCucumber, nil
	case string(FormatJUnit), "rspec", "xml":
		return FormatJUnit, nil
	default:
		return "", fmt.Errorf("unsupported input format %q", name)
	}
}

// Detect picks a format from the file extension, falling back to the first
// non-whitespace byte of head.
func Detect(path string, head []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatCucumber, nil
	case ".xml":
		return FormatJUnit, nil
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return "", ErrUnknownFormat
	}
	switch trimmed[0] {
	case '[', '{':
		return FormatCucumber, nil
	case '<':
		return FormatJUnit, nil
	}
	return "", ErrUnknownFormat
}
