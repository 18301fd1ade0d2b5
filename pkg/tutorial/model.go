package tutorial

import "fmt"

// ValidationMode selects how a run block's result is checked.
type ValidationMode string

const (
	// ModeExit compares the exit code against the expected integer.
	ModeExit ValidationMode = "exit"

	// ModeContains checks that combined output contains the expected string.
	ModeContains ValidationMode = "contains"

	// ModeRegex searches combined output for the expected pattern.
	ModeRegex ValidationMode = "regex"

	// ModeExact compares combined output, minus one trailing newline,
	// against the expected string.
	ModeExact ValidationMode = "exact"
)

// WriteMode controls whether a file block replaces or extends the target.
type WriteMode string

const (
	WriteModeWrite  WriteMode = "write"
	WriteModeAppend WriteMode = "append"
)

// TemplateMode controls variable substitution in file block content.
type TemplateMode string

const (
	TemplateNone  TemplateMode = "none"
	TemplateShell TemplateMode = "shell"
)

// Tutorial is a fully parsed document. Steps appear in source order and
// the structure is never mutated after parsing.
type Tutorial struct {
	// Title comes from the first untagged H1, or "Untitled Tutorial".
	Title string

	// Source identifies where the document came from (path or URL).
	Source string

	Steps []*Step
}

// Actions returns every action in the tutorial in execution order.
func (t *Tutorial) Actions() []Action {
	var all []Action
	for _, s := range t.Steps {
		all = append(all, s.Actions...)
	}
	return all
}

// Step is one titled stage of a tutorial. ID is the annotation id when
// given, otherwise a generated "step-N" with N the 1-based position.
type Step struct {
	Title   string
	ID      string
	Line    int
	Content string
	Actions []Action
}

// Action is one executable unit of a step. The set of implementations is
// closed: *RunAction and *FileAction. Consumers type-switch over them.
type Action interface {
	// Label returns a short human-readable description of the action.
	Label() string

	// Position returns the source line of the action's opening fence.
	Position() int

	isAction()
}

// RunAction executes its command through the platform shell and validates
// the result. Command is stored pre-substitution.
type RunAction struct {
	Command  string
	Language string

	Mode     ValidationMode
	Expected string

	// TimeoutSecs bounds execution in seconds. Zero disables the limit.
	TimeoutSecs int

	// Workdir overrides the run-wide working directory when non-empty.
	// Relative values resolve against the run-wide directory.
	Workdir string

	ContinueOnError bool

	// OutVar, CodeVar and OutFile capture results after successful
	// validation: combined output, exit code, and raw stdout.
	OutVar  string
	CodeVar string
	OutFile string

	Line int
}

func (a *RunAction) Label() string {
	return fmt.Sprintf("run: %s", firstLine(a.Command))
}

func (a *RunAction) Position() int { return a.Line }

func (a *RunAction) isAction() {}

// FileAction materializes its content at Path, resolved through the path
// sandbox. Content is stored pre-substitution.
type FileAction struct {
	Path    string
	Mode    WriteMode
	Content string

	// Executable adds the execute bits after writing.
	Executable bool

	// Template enables ${NAME} substitution of Content when set to shell.
	Template TemplateMode

	// Once skips the write entirely when the target already exists.
	Once bool

	Line int
}

func (a *FileAction) Label() string {
	verb := "write"
	if a.Mode == WriteModeAppend {
		verb = "append"
	}
	return fmt.Sprintf("file: %s %s", verb, a.Path)
}

func (a *FileAction) Position() int { return a.Line }

func (a *FileAction) isAction() {}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
