package output

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

// JSONL streams one JSON object per finished action and a trailing
// summary object, each on its own line.
type JSONL struct {
	enc *json.Encoder
	err error
}

// NewJSONL creates a JSONL renderer writing to w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w)}
}

type jsonAction struct {
	Type       string            `json:"type"`
	Step       string            `json:"step"`
	StepTitle  string            `json:"step_title,omitempty"`
	Kind       string            `json:"kind"`
	Label      string            `json:"label"`
	Line       int               `json:"line"`
	Status     string            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Message    string            `json:"message,omitempty"`
	Expected   string            `json:"expected,omitempty"`
	Actual     string            `json:"actual,omitempty"`
	Command    string            `json:"command,omitempty"`
	Output     string            `json:"output,omitempty"`
	ExitCode   int               `json:"exit_code"`
	Captured   map[string]string `json:"captured,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

type jsonSummary struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Source     string `json:"source,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Errored    int    `json:"errored"`
	Success    bool   `json:"success"`
	DurationMS int64  `json:"duration_ms"`
}

// StepStarted is part of the observer contract; steps carry no line of
// their own in JSONL output.
func (j *JSONL) StepStarted(step *tutorial.Step) {}

// ActionStarted is part of the observer contract; only finished actions
// are emitted.
func (j *JSONL) ActionStarted(ar *report.ActionReport) {}

// ActionFinished emits the action outcome as one JSON line.
func (j *JSONL) ActionFinished(ar *report.ActionReport) {
	rec := jsonAction{
		Type:       "action",
		Step:       ar.StepID,
		StepTitle:  ar.StepTitle,
		Kind:       string(ar.Kind),
		Label:      ar.Label,
		Line:       ar.Line,
		Status:     string(ar.Status),
		Reason:     string(ar.Reason),
		Message:    ar.Message,
		Expected:   ar.Expected,
		Actual:     ar.Actual,
		Command:    ar.Command,
		Output:     ar.Output,
		ExitCode:   ar.ExitCode,
		Captured:   ar.Captured,
		DurationMS: ar.Duration.Milliseconds(),
	}
	if err := j.enc.Encode(rec); err != nil && j.err == nil {
		j.err = err
	}
}

// Summary emits the trailing summary object and reports the first
// encoding error seen, if any.
func (j *JSONL) Summary(rep *report.Report) error {
	rec := jsonSummary{
		Type:       "summary",
		Title:      rep.Title,
		Source:     rep.Source,
		DryRun:     rep.DryRun,
		Total:      rep.Total,
		Passed:     rep.Passed,
		Failed:     rep.Failed,
		Skipped:    rep.Skipped,
		Errored:    rep.Errored,
		Success:    rep.Success,
		DurationMS: rep.Duration().Milliseconds(),
	}
	if err := j.enc.Encode(rec); err != nil && j.err == nil {
		j.err = err
	}
	return j.err
}
