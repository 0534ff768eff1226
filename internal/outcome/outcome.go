// Package outcome maps a report generation onto the host's build result.
package outcome

// Outcome is the build result reported to the host.
type Outcome int

const (
	Success Outcome = iota
	Unstable
	Failure
)

// Process exit codes for each outcome.
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitUnstable = 2
)

// Decide returns Success when every artifact was written. Otherwise the
// build is Unstable when markUnstable is set, else Failure.
func Decide(generated, markUnstable bool) Outcome {
	switch {
	case generated:
		return Success
	case markUnstable:
		return Unstable
	default:
		return Failure
	}
}

// ExitCode returns the process exit code for o.
func (o Outcome) ExitCode() int {
	switch o {
	case Success:
		return ExitSuccess
	case Unstable:
		return ExitUnstable
	default:
		return ExitFailure
	}
}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Unstable:
		return "unstable"
	default:
		return "failure"
	}
}
