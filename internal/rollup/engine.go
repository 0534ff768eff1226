// Package rollup turns parsed suites into finalized results: per-scenario
// durations, step counts, embeddings and pass/fail status, then the same
// aggregates for suites and the whole run.
package rollup

import (
	"github.com/bgricker/testreport/internal/model"
	"github.com/bgricker/testreport/internal/options"
)

// Engine computes rollups under one set of resolved options.
type Engine struct {
	opts options.Options
	ids  IDGenerator
}

// New constructs an Engine. A nil ids uses random UUIDs.
func New(opts options.Options, ids IDGenerator) *Engine {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Engine{opts: opts, ids: ids}
}

// Options returns the options the engine was built with.
func (e *Engine) Options() options.Options { return e.opts }

// Scenario finalizes one scenario. The input is not modified.
func (e *Engine) Scenario(sc model.Scenario) model.ScenarioResult {
	res := model.ScenarioResult{
		Scenario: sc,
		UniqueID: e.ids.NewID(),
	}

	var sawUndefined, sawFailure bool
	for _, step := range sc.Steps {
		res.Duration += step.Result.Duration
		switch step.Result.Status {
		case model.StatusPassed:
			res.Counts.Passed++
		case model.StatusFailed:
			res.Counts.Failed++
			sawFailure = true
		case model.StatusSkipped:
			res.Counts.Skipped++
			sawFailure = true
		case model.StatusErrored:
			// JUnit <error>, kept out of the four cucumber buckets.
			res.Counts.Errored++
			sawFailure = true
		default:
			res.Counts.Undefined++
			sawUndefined = true
		}
		res.Embeddings = append(res.Embeddings, step.Embeddings...)
	}
	res.DurationMS = res.Duration.Milliseconds()

	// Undefined steps fail the scenario only when not ignored, but failed or
	// skipped steps always do, whatever was decided before.
	res.Status = model.StatusPassed
	if sawUndefined && !e.opts.IgnoreUndefinedSteps {
		res.Status = model.StatusFailed
	}
	if sawFailure {
		res.Status = model.StatusFailed
	}
	return res
}

// Suite finalizes every scenario of s in order.
func (e *Engine) Suite(s model.Suite) model.SuiteResult {
	res := model.SuiteResult{
		Suite:     s,
		Scenarios: make([]model.ScenarioResult, 0, len(s.Scenarios)),
		Status:    model.StatusPassed,
	}
	res.Suite.Scenarios = nil

	for _, sc := range s.Scenarios {
		sr := e.Scenario(sc)
		res.Duration += sr.Duration
		res.StepCounts = res.StepCounts.Add(sr.Counts)
		if sr.Status == model.StatusFailed {
			res.Counts.Failed++
			res.Status = model.StatusFailed
		} else {
			res.Counts.Passed++
		}
		res.Scenarios = append(res.Scenarios, sr)
	}
	res.DurationMS = res.Duration.Milliseconds()
	return res
}

// Run finalizes all suites of one report generation.
func (e *Engine) Run(suites []model.Suite) model.Run {
	run := model.Run{
		Suites: make([]model.SuiteResult, 0, len(suites)),
		Status: model.StatusPassed,
	}
	for _, s := range suites {
		sr := e.Suite(s)
		run.Duration += sr.Duration
		run.StepCounts = run.StepCounts.Add(sr.StepCounts)
		run.ScenarioCounts.Passed += sr.Counts.Passed
		run.ScenarioCounts.Failed += sr.Counts.Failed
		if sr.Status == model.StatusFailed {
			run.SuiteCounts.Failed++
			run.Status = model.StatusFailed
		} else {
			run.SuiteCounts.Passed++
		}
		run.Suites = append(run.Suites, sr)
	}
	run.DurationMS = run.Duration.Milliseconds()
	return run
}
