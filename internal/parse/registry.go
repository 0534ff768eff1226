package parse

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/bgricker/testreport/internal/model"
)

const sniffSize = 512

// Registry resolves parsers by format.
type Registry struct {
	parsers map[Format]Parser
}

// NewRegistry returns a registry holding the given parsers.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{parsers: make(map[Format]Parser, len(parsers))}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the parser for p.Format().
func (r *Registry) Register(p Parser) {
	r.parsers[p.Format()] = p
}

// Lookup returns the parser for f.
func (r *Registry) Lookup(f Format) (Parser, bool) {
	p, ok := r.parsers[f]
	return p, ok
}

// Formats lists registered formats in sorted order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFile opens path and decodes it with the parser for forced, or with the
// detected format when forced is FormatAuto. Every decoding failure is
// reported as a MalformedInputError naming path.
func (r *Registry) ParseFile(path string, forced Format) ([]model.Suite, []Warning, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open report %q: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, sniffSize)
	format := forced
	if format == "" || format == FormatAuto {
		head, _ := br.Peek(sniffSize)
		format, err = Detect(path, head)
		if err != nil {
			return nil, nil, "", Malformed(path, "detect format", err)
		}
	}

	p, ok := r.Lookup(format)
	if !ok {
		return nil, nil, format, Malformedf(path, "no parser registered for format %q", format)
	}
	suites, warnings, err := p.Parse(path, br)
	if err != nil {
		if IsMalformed(err) {
			return nil, nil, format, err
		}
		return nil, nil, format, Malformed(path, "parse "+string(format), err)
	}
	return suites, warnings, format, nil
}
