// Package report drives one report generation: parse every input, filter by
// tag, roll up, then hand the finalized run to the artifact renderers.
package report

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bgricker/testreport/internal/filter"
	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/options"
	"github.com/bgricker/testreport/internal/parse"
	"github.com/bgricker/testreport/internal/parse/cucumber"
	"github.com/bgricker/testreport/internal/parse/junit"
	"github.com/bgricker/testreport/internal/rollup"
)

// ArtifactWriter stores rendered files below one output directory.
type ArtifactWriter interface {
	Dir() string
	WriteBytes(name string, data []byte) (string, error)
	WriteText(name string, data string) (string, error)
	WriteJSON(name string, value any) (string, error)
	// Discard removes everything written so far.
	Discard() error
}

// Renderer produces one family of artifacts from a finished Result.
type Renderer interface {
	Name() string
	Render(w ArtifactWriter, res *Result) error
}

// Result is everything a renderer may draw on.
type Result struct {
	Run      model.Run
	Summary  Summary
	Options  options.Options
	Warnings []parse.Warning
	Files    []string
}

// Options configures a Builder.
type Options struct {
	Options     options.Options
	IDs         rollup.IDGenerator
	Registry    *parse.Registry
	Format      parse.Format
	TagPatterns []string
	Writer      ArtifactWriter
	Renderers   []Renderer
	Logger      *zap.Logger
}

// Builder runs the parse, rollup and render stages in order.
type Builder struct {
	opts   Options
	logger *zap.Logger
}

// DefaultRegistry knows every supported input format.
func DefaultRegistry() *parse.Registry {
	return parse.NewRegistry(cucumber.NewParser(), junit.NewParser())
}

// New constructs a Builder, filling unset collaborators with defaults.
func New(opts Options) *Builder {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Format == "" {
		opts.Format = parse.FormatAuto
	}
	if opts.Options.ReportTitle == "" {
		opts.Options.ReportTitle = options.DefaultReportTitle
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{opts: opts, logger: logger}
}

// Build parses paths in order and rolls the suites up. It stops at the first
// file that cannot be read or parsed.
func (b *Builder) Build(paths []string) (*Result, error) {
	res := &Result{Options: b.opts.Options, Files: append([]string(nil), paths...)}
	engine := rollup.New(b.opts.Options, b.opts.IDs)

	if len(paths) == 0 {
		b.logger.Info("no input files; nothing to report")
		res.Run = engine.Run(nil)
		res.Summary = b.summarize(res)
		return res, nil
	}

	selector, err := filter.NewSelector(b.opts.TagPatterns)
	if err != nil {
		return nil, errors.Wrap(err, "compile tag filter")
	}

	var suites []model.Suite
	for idx, path := range paths {
		parsed, warnings, format, err := b.opts.Registry.ParseFile(path, b.opts.Format)
		if err != nil {
			b.logger.Error("parse report", zap.String("file", path), zap.Error(err))
			return nil, errors.Wrapf(err, "report %d of %d", idx+1, len(paths))
		}
		b.logger.Debug("parsed report",
			zap.String("file", path),
			zap.String("format", string(format)),
			zap.Int("suites", len(parsed)),
		)
		for _, w := range warnings {
			b.logger.Warn(w.Message,
				zap.String("file", w.File),
				zap.String("suite", w.Suite),
				zap.String("scenario", w.Scenario),
				zap.String("step", w.Step),
			)
		}
		res.Warnings = append(res.Warnings, warnings...)
		suites = append(suites, parsed...)
	}

	if !selector.Empty() {
		before := len(suites)
		suites = selector.Apply(suites)
		b.logger.Debug("applied tag filter", zap.Strings("tags", b.opts.TagPatterns), zap.Int("suites_before", before), zap.Int("suites_after", len(suites)))
	}

	res.Run = engine.Run(suites)
	res.Summary = b.summarize(res)
	b.logger.Info("rolled up results",
		zap.Int("suites", res.Summary.TotalSuites),
		zap.Int("scenarios", res.Summary.TotalScenarios),
		zap.Int("steps", res.Summary.TotalSteps),
		zap.String("status", string(res.Run.Status)),
	)
	return res, nil
}

// WriteReportsOnDisk builds the run and renders every artifact. It reports
// true only when all artifacts were written; failing tests do not make it
// false. When a renderer fails, whatever earlier renderers wrote is discarded.
// With no paths nothing is written and the result is true.
func (b *Builder) WriteReportsOnDisk(paths []string) (bool, error) {
	_, ok, err := b.Generate(paths)
	return ok, err
}

// Generate is WriteReportsOnDisk that also returns the built Result.
func (b *Builder) Generate(paths []string) (*Result, bool, error) {
	res, err := b.Build(paths)
	if err != nil {
		return nil, false, err
	}
	if len(paths) == 0 {
		return res, true, nil
	}
	if len(b.opts.Renderers) > 0 && b.opts.Writer == nil {
		return res, false, errors.New("no artifact writer configured")
	}
	for _, r := range b.opts.Renderers {
		if err := r.Render(b.opts.Writer, res); err != nil {
			b.logger.Error("render artifacts", zap.String("renderer", r.Name()), zap.Error(err))
			if derr := b.opts.Writer.Discard(); derr != nil {
				b.logger.Warn("discard partial artifacts", zap.String("dir", b.opts.Writer.Dir()), zap.Error(derr))
			}
			return res, false, errors.Wrapf(err, "render %s", r.Name())
		}
		b.logger.Debug("rendered artifacts", zap.String("renderer", r.Name()), zap.String("dir", b.opts.Writer.Dir()))
	}
	return res, true, nil
}

func (b *Builder) summarize(res *Result) Summary {
	s := Summarize(res.Run)
	s.Title = res.Options.ReportTitle
	s.TotalFiles = len(res.Files)
	s.Warnings = len(res.Warnings)
	return s
}
