package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Color definitions using AdaptiveColor for automatic light/dark mode
// switching.
var (
	successColor = lipgloss.AdaptiveColor{
		Light: "#28A745",
		Dark:  "#4CDD76",
	}

	errorColor = lipgloss.AdaptiveColor{
		Light: "#DC3545",
		Dark:  "#FF6B7D",
	}

	warningColor = lipgloss.AdaptiveColor{
		Light: "#FFC107",
		Dark:  "#FFD54F",
	}

	headingColor = lipgloss.AdaptiveColor{
		Light: "#212529",
		Dark:  "#F8F9FA",
	}

	mutedColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#A0A8B0",
	}
)

// styleSet bundles the styles the text renderer uses. The zero styles of
// plainStyles render unmodified text for no-color output.
type styleSet struct {
	Banner  lipgloss.Style
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Errored lipgloss.Style
	Skip    lipgloss.Style
	Muted   lipgloss.Style
}

func colorStyles() styleSet {
	return styleSet{
		Banner:  lipgloss.NewStyle().Foreground(headingColor).Bold(true),
		Pass:    lipgloss.NewStyle().Foreground(successColor).Bold(true),
		Fail:    lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		Errored: lipgloss.NewStyle().Foreground(warningColor).Bold(true),
		Skip:    lipgloss.NewStyle().Foreground(mutedColor),
		Muted:   lipgloss.NewStyle().Foreground(mutedColor),
	}
}

func plainStyles() styleSet {
	return styleSet{}
}
