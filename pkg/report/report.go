// Package report defines the run report: the ordered record of every
// action's terminal state that the executor produces and the output
// renderers consume.
package report

import "time"

// Status is the lifecycle state of a single action.
type Status string

const (
	// StatusPending means the action has not started.
	StatusPending Status = "pending"

	// StatusRunning means the action is currently executing.
	StatusRunning Status = "running"

	// StatusPassed means the action executed and validated.
	StatusPassed Status = "passed"

	// StatusFailed means the action executed but validation rejected it.
	StatusFailed Status = "failed"

	// StatusSkipped means the action was never executed.
	StatusSkipped Status = "skipped"

	// StatusErrored means the action could not execute to completion.
	StatusErrored Status = "errored"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped, StatusErrored:
		return true
	}
	return false
}

// Reason qualifies a Failed, Skipped or Errored status so reporting can
// distinguish "ran and produced wrong output" from "did not finish" from
// "never ran".
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonValidation Reason = "validation-mismatch"
	ReasonTimeout    Reason = "timeout"
	ReasonBadPattern Reason = "bad-pattern"
	ReasonPathEscape Reason = "path-escape"
	ReasonFilesystem Reason = "filesystem"
	ReasonExecution  Reason = "execution"

	// ReasonHalted marks actions skipped because an earlier action
	// failed without continue-on-error.
	ReasonHalted Reason = "halted"

	// ReasonExists marks once=true file actions whose target was
	// already present.
	ReasonExists Reason = "already-exists"

	// ReasonUserSkipped marks actions declined in guided mode.
	ReasonUserSkipped Reason = "user-skipped"

	// ReasonNotSelected marks actions outside the requested step.
	ReasonNotSelected Reason = "not-selected"

	// ReasonDryRun marks actions withheld because the run was a dry run.
	ReasonDryRun Reason = "dry-run"
)

// ActionKind distinguishes the two action variants in reports.
type ActionKind string

const (
	KindRun  ActionKind = "run"
	KindFile ActionKind = "file"
)

// ActionReport is the outcome of one action.
type ActionReport struct {
	// StepID and StepTitle identify the step the action belongs to.
	StepID    string
	StepTitle string

	Kind  ActionKind
	Label string
	Line  int

	Status Status
	Reason Reason

	// Message carries human-readable context: the validation message,
	// the filesystem error, or what a skip was caused by.
	Message string

	// Expected and Actual are populated on validation failures.
	Expected string
	Actual   string

	// Command is the substituted command for run actions.
	Command string

	// Output is the combined stdout+stderr stream of a run action.
	Output string

	// ExitCode is the subprocess exit code, -1 when the process did
	// not run to completion. Zero and meaningless for file actions.
	ExitCode int

	// Captured holds variable captures recorded after validation
	// succeeded, keyed by variable name.
	Captured map[string]string

	Duration time.Duration
}

// AddCapture records a captured variable on the action.
func (a *ActionReport) AddCapture(name, value string) {
	if a.Captured == nil {
		a.Captured = make(map[string]string)
	}
	a.Captured[name] = value
}

// Report is the full record of one run.
type Report struct {
	// Title and Source identify the tutorial that was executed.
	Title  string
	Source string

	// DryRun indicates nothing was executed; all actions stay pending.
	DryRun bool

	Actions []*ActionReport

	// StartTime is when execution began.
	StartTime time.Time

	// EndTime is when execution completed.
	EndTime time.Time

	// Counters over terminal statuses.
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errored int

	// Success is true when no action failed or errored.
	Success bool
}

// New creates an empty report and stamps the start time.
func New(title, source string, dryRun bool) *Report {
	return &Report{
		Title:     title,
		Source:    source,
		DryRun:    dryRun,
		StartTime: time.Now(),
	}
}

// Add appends an action outcome and updates the counters.
func (r *Report) Add(ar *ActionReport) {
	r.Actions = append(r.Actions, ar)
	r.Total++

	switch ar.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	case StatusErrored:
		r.Errored++
	}
}

// Complete stamps the end time and settles the success flag.
func (r *Report) Complete() {
	r.EndTime = time.Now()
	r.Success = r.Failed == 0 && r.Errored == 0
}

// Duration is the wall-clock time of the whole run.
func (r *Report) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// StepIDs returns the distinct step ids in report order.
func (r *Report) StepIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, a := range r.Actions {
		if !seen[a.StepID] {
			seen[a.StepID] = true
			ids = append(ids, a.StepID)
		}
	}
	return ids
}

// ByStep groups action outcomes by step id, preserving order.
func (r *Report) ByStep() map[string][]*ActionReport {
	grouped := make(map[string][]*ActionReport)
	for _, a := range r.Actions {
		grouped[a.StepID] = append(grouped[a.StepID], a)
	}
	return grouped
}
