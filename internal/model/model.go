package model

import "time"

// Suite is the top-level unit parsed from one input document: a Cucumber
// feature or a JUnit test suite.
type Suite struct {
	Name        string     `json:"name"`
	ID          string     `json:"id,omitempty"`
	URI         string     `json:"uri,omitempty"`
	Keyword     string     `json:"keyword,omitempty"`
	Description string     `json:"description,omitempty"`
	Line        int        `json:"line,omitempty"`
	Format      string     `json:"format"`
	Tags        []Tag      `json:"tags,omitempty"`
	Scenarios   []Scenario `json:"scenarios"`
}

// Scenario is one test case within a suite, holding only parsed fields.
type Scenario struct {
	Name        string `json:"name"`
	ID          string `json:"id,omitempty"`
	Line        int    `json:"line,omitempty"`
	Keyword     string `json:"keyword,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Tags        []Tag  `json:"tags,omitempty"`
	Steps       []Step `json:"steps"`
}

// Step is one executable line of a scenario.
type Step struct {
	Keyword    string      `json:"keyword,omitempty"`
	Name       string      `json:"name"`
	Line       int         `json:"line,omitempty"`
	Result     Result      `json:"result"`
	Embeddings []Embedding `json:"embeddings,omitempty"`
	DocString  string      `json:"doc_string,omitempty"`
	Output     []string    `json:"output,omitempty"`
}

// Tag labels a suite or scenario. Tags never influence status.
type Tag struct {
	Name string `json:"name"`
	Line int    `json:"line,omitempty"`
}

// Result is the recorded outcome of a step.
type Result struct {
	Status       Status        `json:"status"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// NewResult builds a Result keeping DurationMS in sync with Duration.
func NewResult(status Status, d time.Duration, errMsg string) Result {
	return Result{Status: status, Duration: d, DurationMS: d.Milliseconds(), ErrorMessage: errMsg}
}

// Embedding is an attachment surfaced verbatim in rendered output.
type Embedding struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
	Name     string `json:"name,omitempty"`
}

// StepCounts tallies steps per status. Errored steps sit outside the four
// countable buckets but are tracked so that Total always equals the step count.
type StepCounts struct {
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Undefined int `json:"undefined"`
	Errored   int `json:"errored"`
}

// Total returns the number of steps counted.
func (c StepCounts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Undefined + c.Errored
}

// Add returns the element-wise sum of c and o.
func (c StepCounts) Add(o StepCounts) StepCounts {
	return StepCounts{
		Passed:    c.Passed + o.Passed,
		Failed:    c.Failed + o.Failed,
		Skipped:   c.Skipped + o.Skipped,
		Undefined: c.Undefined + o.Undefined,
		Errored:   c.Errored + o.Errored,
	}
}

// Of returns the count for a single status.
func (c StepCounts) Of(s Status) int {
	switch s {
	case StatusPassed:
		return c.Passed
	case StatusFailed:
		return c.Failed
	case StatusSkipped:
		return c.Skipped
	case StatusUndefined:
		return c.Undefined
	case StatusErrored:
		return c.Errored
	}
	return 0
}

// ScenarioCounts tallies rolled-up scenarios.
type ScenarioCounts struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Total returns the number of scenarios counted.
func (c ScenarioCounts) Total() int { return c.Passed + c.Failed }

// ScenarioResult is a scenario after rollup. It is only ever produced by the
// rollup engine, so the derived fields cannot be observed before they exist.
type ScenarioResult struct {
	Scenario
	UniqueID   string        `json:"unique_id"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Counts     StepCounts    `json:"counts"`
	Status     Status        `json:"status"`
	Embeddings []Embedding   `json:"embeddings,omitempty"`
}

// SuiteResult is a suite whose scenarios have all been rolled up.
type SuiteResult struct {
	Suite
	Scenarios  []ScenarioResult `json:"scenarios"`
	Duration   time.Duration    `json:"-"`
	DurationMS int64            `json:"duration_ms"`
	Counts     ScenarioCounts   `json:"scenario_counts"`
	StepCounts StepCounts       `json:"step_counts"`
	Status     Status           `json:"status"`
}

// Run aggregates every suite of one report generation.
type Run struct {
	Suites         []SuiteResult  `json:"suites"`
	Duration       time.Duration  `json:"-"`
	DurationMS     int64          `json:"duration_ms"`
	SuiteCounts    ScenarioCounts `json:"suite_counts"`
	ScenarioCounts ScenarioCounts `json:"scenario_counts"`
	StepCounts     StepCounts     `json:"step_counts"`
	Status         Status         `json:"status"`
}

// Passed reports whether no suite in the run failed.
func (r Run) Passed() bool { return r.Status != StatusFailed }
