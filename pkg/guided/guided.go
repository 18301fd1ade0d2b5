// Package guided walks a user through a tutorial interactively: step
// prose is rendered to the terminal, every action is previewed with its
// substituted command, and nothing runs without confirmation. The run
// produces the same report as batch execution.
package guided

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/guiderails/pkg/config"
	"github.com/arthur-debert/guiderails/pkg/executor"
	"github.com/arthur-debert/guiderails/pkg/logging"
	"github.com/arthur-debert/guiderails/pkg/output"
	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
	"github.com/arthur-debert/guiderails/pkg/vars"
)

// Options configures a guided run.
type Options struct {
	// Executor performs the actual action execution. Required.
	Executor *executor.Executor

	// Config drives the result renderer's verbosity toggles.
	Config *config.Config

	// Out receives all output. Defaults to stdout.
	Out io.Writer

	// Prompter answers the run/skip/quit question per action. Defaults
	// to the pterm terminal prompter.
	Prompter Prompter

	// Plain disables pterm styling and glamour rendering. Prose and
	// previews are printed as-is.
	Plain bool

	// Logger overrides the default component logger.
	Logger *zerolog.Logger
}

// Runner drives one interactive run.
type Runner struct {
	ex       *executor.Executor
	cfg      *config.Config
	out      io.Writer
	prompter Prompter
	plain    bool
	text     *output.Text
	logger   zerolog.Logger
}

// New creates a guided runner.
func New(opts Options) *Runner {
	logger := logging.GetLogger("guided")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = &TerminalPrompter{}
	}

	return &Runner{
		ex:       opts.Executor,
		cfg:      cfg,
		out:      out,
		prompter: prompter,
		plain:    opts.Plain,
		text:     output.NewText(out, cfg, !opts.Plain),
		logger:   logger,
	}
}

// Run walks the tutorial action by action. Declined actions are
// reported Skipped; a failing action without continue-on-error halts
// the rest exactly as in batch mode; quitting skips everything left.
func (r *Runner) Run(tut *tutorial.Tutorial) (*report.Report, error) {
	r.logger.Info().
		Str("tutorial", tut.Title).
		Int("steps", len(tut.Steps)).
		Msg("Starting guided run")

	r.title(tut)

	rep := report.New(tut.Title, tut.Source, false)
	halted := false
	quit := false

	for _, step := range tut.Steps {
		if !halted && !quit {
			r.stepBanner(step)
		}

		for _, action := range step.Actions {
			switch {
			case quit:
				rep.Add(r.ex.SkipAction(step, action, report.ReasonUserSkipped, "run aborted by user"))
				continue
			case halted:
				rep.Add(r.ex.SkipAction(step, action, report.ReasonHalted, "earlier action failed"))
				continue
			}

			r.preview(action)
			choice, err := r.prompter.Confirm(action.Label())
			if err != nil {
				// A broken prompt (closed stdin, ctrl-c) aborts like
				// an explicit quit.
				r.logger.Warn().Err(err).Msg("Prompt failed, aborting run")
				choice = ChoiceQuit
			}

			var ar *report.ActionReport
			switch choice {
			case ChoiceRun:
				ar = r.ex.ExecuteAction(step, action)
				r.text.ActionFinished(ar)
			case ChoiceSkip:
				ar = r.ex.SkipAction(step, action, report.ReasonUserSkipped, "skipped by user")
				r.text.ActionFinished(ar)
			default:
				quit = true
				ar = r.ex.SkipAction(step, action, report.ReasonUserSkipped, "run aborted by user")
				r.text.ActionFinished(ar)
			}
			rep.Add(ar)

			if executor.ShouldHalt(action, ar) {
				halted = true
			}
		}
	}

	rep.Complete()
	if err := r.text.Summary(rep); err != nil {
		return rep, err
	}
	return rep, nil
}

func (r *Runner) title(tut *tutorial.Tutorial) {
	if r.plain {
		fmt.Fprintf(r.out, "%s\n", tut.Title)
		return
	}
	pterm.DefaultHeader.WithWriter(r.out).Println(tut.Title)
}

func (r *Runner) stepBanner(step *tutorial.Step) {
	title := step.Title
	if title == "" {
		title = step.ID
	}
	if r.plain {
		fmt.Fprintf(r.out, "\n== %s ==\n", title)
	} else {
		pterm.DefaultSection.WithWriter(r.out).Println(title)
	}
	if step.Content != "" {
		fmt.Fprint(r.out, r.markdown(step.Content))
	}
}

// preview shows what confirming would do: the substituted command for
// run actions, the target and write mode for file actions.
func (r *Runner) preview(action tutorial.Action) {
	var lines []string
	switch a := action.(type) {
	case *tutorial.RunAction:
		lines = append(lines, "$ "+vars.Substitute(a.Command, r.ex.Vars()))
		if a.Mode != tutorial.ModeExit || a.Expected != "0" {
			lines = append(lines, fmt.Sprintf("expect %s: %s", a.Mode, a.Expected))
		}
	case *tutorial.FileAction:
		lines = append(lines, a.Label())
	}

	fmt.Fprintln(r.out)
	for _, line := range lines {
		if r.plain {
			fmt.Fprintf(r.out, "  %s\n", line)
		} else {
			fmt.Fprintf(r.out, "  %s\n", pterm.FgCyan.Sprint(line))
		}
	}
}

// markdown renders step prose for the terminal, falling back to the raw
// text when rendering is unavailable.
func (r *Runner) markdown(content string) string {
	if r.plain {
		return content + "\n"
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content + "\n"
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
