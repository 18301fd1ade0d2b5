package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/filesystem"
	"github.com/arthur-debert/guiderails/pkg/logging"
	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
	"github.com/arthur-debert/guiderails/pkg/vars"
)

// Observer receives lifecycle notifications during a run. Implementations
// must be fast; they are called synchronously between actions.
type Observer interface {
	StepStarted(step *tutorial.Step)
	ActionStarted(ar *report.ActionReport)
	ActionFinished(ar *report.ActionReport)
}

type noopObserver struct{}

func (noopObserver) StepStarted(*tutorial.Step) {}
func (noopObserver) ActionStarted(*report.ActionReport) {}
func (noopObserver) ActionFinished(*report.ActionReport) {}

// Options contains configuration for the executor.
type Options struct {
	// WorkDir is the run-wide working directory. Defaults to the
	// process working directory.
	WorkDir string

	// AllowUnsafePaths lifts the path sandbox for file actions and
	// out-file captures. This is a CLI-level decision, never a
	// per-action attribute.
	AllowUnsafePaths bool

	// Vars seeds the variable store before the first action runs.
	Vars map[string]string

	// DryRun reports every action as skipped without executing it.
	DryRun bool

	// Step restricts execution to one step, addressed by id or by
	// 1-based position. Actions of other steps are reported skipped.
	Step string

	// Logger overrides the default component logger.
	Logger *zerolog.Logger

	// FS is the filesystem seam used by file actions and captures.
	FS filesystem.FS

	// Observer receives per-step and per-action notifications.
	Observer Observer
}

// Executor runs tutorials sequentially. Steps and actions execute in
// document order and no two actions ever run concurrently; the variable
// store and working directory are shared state between them.
type Executor struct {
	workDir          string
	allowUnsafePaths bool
	dryRun           bool
	step             string
	vars             *vars.Store
	fs               filesystem.FS
	logger           zerolog.Logger
	observer         Observer
}

// New creates a new executor instance.
func New(opts Options) *Executor {
	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	workDir := opts.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		} else {
			workDir = "."
		}
	}

	observer := opts.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &Executor{
		workDir:          workDir,
		allowUnsafePaths: opts.AllowUnsafePaths,
		dryRun:           opts.DryRun,
		step:             opts.Step,
		vars:             vars.NewStore(opts.Vars),
		fs:               fs,
		logger:           logger,
		observer:         observer,
	}
}

// Vars exposes the run's variable store, populated by captures.
func (e *Executor) Vars() *vars.Store {
	return e.vars
}

// Run executes the tutorial and returns its report. The only error case
// is a step selection that matches nothing; execution failures are
// recorded in the report, not returned.
func (e *Executor) Run(tut *tutorial.Tutorial) (*report.Report, error) {
	if e.step != "" && !hasStep(tut, e.step) {
		return nil, errors.Newf(errors.ErrNotFound, "step %q not found in %s", e.step, tut.Source)
	}

	e.logger.Info().
		Str("tutorial", tut.Title).
		Str("source", tut.Source).
		Int("steps", len(tut.Steps)).
		Bool("dry_run", e.dryRun).
		Msg("Starting run")

	rep := report.New(tut.Title, tut.Source, e.dryRun)
	halted := false

	for i, step := range tut.Steps {
		selected := e.step == "" || stepMatches(step, i, e.step)
		e.observer.StepStarted(step)

		for _, action := range step.Actions {
			var ar *report.ActionReport
			switch {
			case halted:
				ar = e.SkipAction(step, action, report.ReasonHalted, "earlier action failed")
			case !selected:
				ar = e.SkipAction(step, action, report.ReasonNotSelected,
					fmt.Sprintf("step %s not selected", step.ID))
			case e.dryRun:
				ar = e.SkipAction(step, action, report.ReasonDryRun, "dry run, nothing executed")
			default:
				ar = e.executeAction(step, action)
			}
			rep.Add(ar)

			if ShouldHalt(action, ar) {
				halted = true
				e.logger.Warn().
					Str("step", step.ID).
					Str("action", ar.Label).
					Str("status", string(ar.Status)).
					Msg("Halting run, remaining actions will be skipped")
			}
		}
	}

	rep.Complete()
	e.logger.Info().
		Int("total", rep.Total).
		Int("passed", rep.Passed).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Int("errored", rep.Errored).
		Bool("success", rep.Success).
		Msg("Run complete")
	return rep, nil
}

// ShouldHalt reports whether an action outcome stops the run. Only run
// actions carry continue-on-error; a failed file action always halts.
func ShouldHalt(action tutorial.Action, ar *report.ActionReport) bool {
	if ar.Status != report.StatusFailed && ar.Status != report.StatusErrored {
		return false
	}
	if run, ok := action.(*tutorial.RunAction); ok && run.ContinueOnError {
		return false
	}
	return true
}

// SkipAction produces a skipped outcome without executing the action.
// Guided mode uses it for actions the user declines.
func (e *Executor) SkipAction(step *tutorial.Step, action tutorial.Action, reason report.Reason, message string) *report.ActionReport {
	ar := e.newActionReport(step, action)
	ar.Status = report.StatusSkipped
	ar.Reason = reason
	ar.Message = message
	e.observer.ActionFinished(ar)
	return ar
}

// ExecuteAction runs a single action against the shared run state and
// returns its outcome. Callers driving their own loop (guided mode) must
// still respect ShouldHalt between actions.
func (e *Executor) ExecuteAction(step *tutorial.Step, action tutorial.Action) *report.ActionReport {
	return e.executeAction(step, action)
}

func (e *Executor) executeAction(step *tutorial.Step, action tutorial.Action) *report.ActionReport {
	switch a := action.(type) {
	case *tutorial.RunAction:
		return e.executeRun(step, a)
	case *tutorial.FileAction:
		return e.executeFile(step, a)
	default:
		ar := e.newActionReport(step, action)
		ar.Status = report.StatusErrored
		ar.Reason = report.ReasonExecution
		ar.Message = fmt.Sprintf("unknown action type %T", action)
		return ar
	}
}

func (e *Executor) executeRun(step *tutorial.Step, a *tutorial.RunAction) *report.ActionReport {
	start := time.Now()
	ar := e.newActionReport(step, a)
	ar.Status = report.StatusRunning
	ar.ExitCode = -1

	command := vars.Substitute(a.Command, e.vars)
	ar.Command = command
	e.observer.ActionStarted(ar)

	e.logger.Debug().
		Str("step", step.ID).
		Str("command", command).
		Str("mode", string(a.Mode)).
		Int("timeout_secs", a.TimeoutSecs).
		Msg("Executing command")

	finish := func() *report.ActionReport {
		if ar.Duration == 0 {
			ar.Duration = time.Since(start)
		}
		e.observer.ActionFinished(ar)
		return ar
	}

	workdir, err := e.resolveWorkdir(a.Workdir)
	if err != nil {
		ar.Status = report.StatusErrored
		ar.Reason = report.ReasonFilesystem
		ar.Message = err.Error()
		e.logger.Error().Err(err).Str("step", step.ID).Msg("Command rejected")
		return finish()
	}

	res, err := runShell(command, workdir, a.TimeoutSecs)
	ar.Output = res.Combined
	ar.ExitCode = res.ExitCode
	ar.Duration = res.Duration

	if res.TimedOut {
		ar.Status = report.StatusErrored
		ar.Reason = report.ReasonTimeout
		ar.Message = fmt.Sprintf("command timed out after %d seconds", a.TimeoutSecs)
		e.logger.Error().
			Str("step", step.ID).
			Str("command", command).
			Int("timeout_secs", a.TimeoutSecs).
			Msg("Command timed out")
		return finish()
	}
	if err != nil {
		ar.Status = report.StatusErrored
		ar.Reason = report.ReasonExecution
		ar.Message = fmt.Sprintf("execution error: %v", err)
		e.logger.Error().Err(err).Str("step", step.ID).Msg("Command failed to run")
		return finish()
	}

	v := Validate(res, a.Mode, a.Expected)
	if !v.OK {
		ar.Status = report.StatusFailed
		ar.Reason = v.Reason
		ar.Message = v.Message
		ar.Expected = a.Expected
		ar.Actual = v.Actual
		e.logger.Warn().
			Str("step", step.ID).
			Str("command", command).
			Str("message", v.Message).
			Msg("Validation failed")
		return finish()
	}

	// Captures happen only after validation succeeds, so a failed
	// command never pollutes the variable store.
	if a.OutVar != "" {
		value := strings.TrimSpace(res.Combined)
		e.vars.Set(a.OutVar, value)
		ar.AddCapture(a.OutVar, value)
	}
	if a.CodeVar != "" {
		value := strconv.Itoa(res.ExitCode)
		e.vars.Set(a.CodeVar, value)
		ar.AddCapture(a.CodeVar, value)
	}
	if a.OutFile != "" {
		if err := e.writeOutFile(a.OutFile, res.Stdout); err != nil {
			ar.Status = report.StatusErrored
			ar.Reason = reasonForError(err)
			ar.Message = err.Error()
			e.logger.Error().Err(err).Str("step", step.ID).Msg("Output capture failed")
			return finish()
		}
	}

	ar.Status = report.StatusPassed
	ar.Message = v.Message
	e.logger.Info().
		Str("step", step.ID).
		Str("command", command).
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Msg("Command passed")
	return finish()
}

func (e *Executor) resolveWorkdir(override string) (string, error) {
	dir := e.workDir
	if override != "" {
		if filepath.IsAbs(override) {
			dir = override
		} else {
			dir = filepath.Join(e.workDir, override)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFilesystem, "working directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrFilesystem, "working directory is not a directory: %s", dir)
	}
	return dir, nil
}

func (e *Executor) newActionReport(step *tutorial.Step, action tutorial.Action) *report.ActionReport {
	kind := report.KindRun
	if _, ok := action.(*tutorial.FileAction); ok {
		kind = report.KindFile
	}
	return &report.ActionReport{
		StepID:    step.ID,
		StepTitle: step.Title,
		Kind:      kind,
		Label:     action.Label(),
		Line:      action.Position(),
		Status:    report.StatusPending,
	}
}

func hasStep(tut *tutorial.Tutorial, sel string) bool {
	for i, step := range tut.Steps {
		if stepMatches(step, i, sel) {
			return true
		}
	}
	return false
}

func stepMatches(step *tutorial.Step, index int, sel string) bool {
	if sel == step.ID {
		return true
	}
	if n, err := strconv.Atoi(sel); err == nil && n == index+1 {
		return true
	}
	return false
}
