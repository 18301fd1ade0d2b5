package output

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorEnabled determines whether rich output should be used for the
// file, based on environment and terminal capabilities.
func ColorEnabled(out *os.File) bool {
	// NO_COLOR always wins.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Piped or redirected output gets plain text.
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return false
	}

	return termenv.ColorProfile() != termenv.Ascii
}
