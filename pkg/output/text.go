package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/guiderails/pkg/config"
	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

// Text renders human-readable progress while a run executes, then a
// final summary. It honors the verbosity toggles from the configuration:
// failures and errors always surface, everything else is gated.
type Text struct {
	w      io.Writer
	cfg    *config.Config
	styles styleSet
}

// NewText creates a text renderer writing to w. When color is false all
// styling is disabled and the renderer emits plain text.
func NewText(w io.Writer, cfg *config.Config, color bool) *Text {
	styles := plainStyles()
	if color {
		styles = colorStyles()
	}
	return &Text{w: w, cfg: cfg, styles: styles}
}

// StepStarted prints the step banner.
func (t *Text) StepStarted(step *tutorial.Step) {
	if !t.cfg.ShowStepBanners {
		return
	}
	title := step.Title
	if title == "" {
		title = step.ID
	}
	fmt.Fprintf(t.w, "\n%s%s\n", t.timestamp(), t.styles.Banner.Render("▶ "+title))
}

// ActionStarted announces the action about to run.
func (t *Text) ActionStarted(ar *report.ActionReport) {
	if !t.cfg.Verbosity.AtLeast(config.VerbosityNormal) || !t.cfg.ShowCommands {
		return
	}
	fmt.Fprintf(t.w, "%s  → %s\n", t.timestamp(), ar.Label)
	if t.cfg.ShowSubstituted && ar.Kind == report.KindRun && ar.Command != "" {
		for i, line := range strings.Split(ar.Command, "\n") {
			prefix := "$ "
			if i > 0 {
				prefix = "  "
			}
			fmt.Fprintf(t.w, "%s      %s\n", t.timestamp(), t.styles.Muted.Render(prefix+line))
		}
	}
}

// ActionFinished prints the action outcome.
func (t *Text) ActionFinished(ar *report.ActionReport) {
	switch ar.Status {
	case report.StatusPassed:
		if !t.cfg.Verbosity.AtLeast(config.VerbosityNormal) {
			return
		}
		fmt.Fprintf(t.w, "%s  %s %s %s\n",
			t.timestamp(), t.styles.Pass.Render("✓"), ar.Label,
			t.styles.Muted.Render(formatDuration(ar.Duration)))
		t.printCaptured(ar)

	case report.StatusFailed:
		fmt.Fprintf(t.w, "%s  %s %s %s: %s\n",
			t.timestamp(), t.styles.Fail.Render("✗"), ar.Label,
			t.styles.Muted.Render(formatDuration(ar.Duration)), ar.Message)
		if t.cfg.ShowExpected && (ar.Expected != "" || ar.Actual != "") {
			t.printBlock("expected", ar.Expected)
			t.printBlock("actual", ar.Actual)
		}

	case report.StatusErrored:
		fmt.Fprintf(t.w, "%s  %s %s %s: %s\n",
			t.timestamp(), t.styles.Errored.Render("!"), ar.Label,
			t.styles.Muted.Render(formatDuration(ar.Duration)), ar.Message)

	case report.StatusSkipped:
		// Deselected actions are only interesting when verbose.
		if ar.Reason == report.ReasonNotSelected && !t.cfg.Verbosity.AtLeast(config.VerbosityVerbose) {
			return
		}
		if !t.cfg.Verbosity.AtLeast(config.VerbosityNormal) {
			return
		}
		line := fmt.Sprintf("○ %s", ar.Label)
		if ar.Message != "" {
			line += ": " + ar.Message
		}
		fmt.Fprintf(t.w, "%s  %s\n", t.timestamp(), t.styles.Skip.Render(line))
	}
}

// Summary prints the final run totals. It is printed at every verbosity
// level.
func (t *Text) Summary(rep *report.Report) error {
	parts := []string{fmt.Sprintf("%d passed", rep.Passed)}
	if rep.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", rep.Failed))
	}
	if rep.Errored > 0 {
		parts = append(parts, fmt.Sprintf("%d errored", rep.Errored))
	}
	if rep.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", rep.Skipped))
	}

	line := fmt.Sprintf("%s: %s in %s", rep.Title,
		strings.Join(parts, ", "), strings.Trim(formatDuration(rep.Duration()), "()"))
	if rep.DryRun {
		line += " (dry run)"
	}

	style := t.styles.Pass
	if !rep.Success {
		style = t.styles.Fail
	}
	_, err := fmt.Fprintf(t.w, "\n%s%s\n", t.timestamp(), style.Render(line))
	return err
}

func (t *Text) printCaptured(ar *report.ActionReport) {
	if !t.cfg.ShowCaptured || len(ar.Captured) == 0 {
		return
	}
	names := make([]string, 0, len(ar.Captured))
	for name := range ar.Captured {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(t.w, "%s      %s\n", t.timestamp(),
			t.styles.Muted.Render(fmt.Sprintf("captured %s=%q", name, ar.Captured[name])))
	}
}

func (t *Text) printBlock(name, value string) {
	fmt.Fprintf(t.w, "%s      %s\n", t.timestamp(), t.styles.Muted.Render(name+":"))
	for _, line := range strings.Split(value, "\n") {
		fmt.Fprintf(t.w, "%s        %s\n", t.timestamp(), line)
	}
}

func (t *Text) timestamp() string {
	if !t.cfg.ShowTimestamps {
		return ""
	}
	return time.Now().Format("15:04:05") + " "
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("(%dms)", d.Milliseconds())
	}
	return fmt.Sprintf("(%.1fs)", d.Seconds())
}
