package guided

import (
	"github.com/pterm/pterm"
)

// Choice is the user's decision for one previewed action.
type Choice string

const (
	ChoiceRun  Choice = "run"
	ChoiceSkip Choice = "skip"
	ChoiceQuit Choice = "quit"
)

// Prompter asks the user what to do with the next action. Tests inject
// scripted implementations.
type Prompter interface {
	Confirm(label string) (Choice, error)
}

// TerminalPrompter asks through a pterm interactive select.
type TerminalPrompter struct{}

// Confirm implements Prompter.
func (TerminalPrompter) Confirm(label string) (Choice, error) {
	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions([]string{string(ChoiceRun), string(ChoiceSkip), string(ChoiceQuit)}).
		WithDefaultOption(string(ChoiceRun)).
		Show(label)
	if err != nil {
		return ChoiceQuit, err
	}
	return Choice(selected), nil
}
