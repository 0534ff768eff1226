package report

import (
	"time"

	"github.com/bgricker/testreport/internal/model"
)

// Summary aggregates one rolled-up run for console output.
type Summary struct {
	Title          string           `json:"title"`
	Status         model.Status     `json:"status"`
	TotalFiles     int              `json:"total_files"`
	TotalSuites    int              `json:"total_suites"`
	TotalScenarios int              `json:"total_scenarios"`
	TotalSteps     int              `json:"total_steps"`
	Passed         int              `json:"passed"`
	Failed         int              `json:"failed"`
	Steps          model.StepCounts `json:"steps"`
	Warnings       int              `json:"warnings"`
	Duration       time.Duration    `json:"-"`
	DurationMS     int64            `json:"duration_ms"`
}

// Summarize derives totals from a finalized run. Passed and Failed count
// scenarios.
func Summarize(run model.Run) Summary {
	return Summary{
		Status:         run.Status,
		TotalSuites:    len(run.Suites),
		TotalScenarios: run.ScenarioCounts.Total(),
		TotalSteps:     run.StepCounts.Total(),
		Passed:         run.ScenarioCounts.Passed,
		Failed:         run.ScenarioCounts.Failed,
		Steps:          run.StepCounts,
		Duration:       run.Duration,
		DurationMS:     run.DurationMS,
	}
}
