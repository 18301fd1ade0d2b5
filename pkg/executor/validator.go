package executor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

// Validation is the outcome of comparing a command result against a run
// block's expectation.
type Validation struct {
	OK bool

	// Reason is set on failure: validation-mismatch for a plain
	// comparison failure, bad-pattern for an uncompilable regex.
	Reason report.Reason

	Message string

	// Actual is the value that was compared, in the form the mode
	// compares it (exit code, combined output, trimmed output).
	Actual string
}

// Validate applies the four comparison semantics. Exit compares codes,
// contains does a byte-exact substring check, regex searches anywhere in
// the combined output, and exact compares the combined output after
// stripping at most one trailing newline.
func Validate(res CommandResult, mode tutorial.ValidationMode, expected string) Validation {
	switch mode {
	case tutorial.ModeExit:
		actual := strconv.Itoa(res.ExitCode)
		want, err := strconv.Atoi(expected)
		if err != nil {
			return Validation{
				Reason:  report.ReasonBadPattern,
				Message: fmt.Sprintf("expected exit code %q is not an integer", expected),
				Actual:  actual,
			}
		}
		if res.ExitCode == want {
			return Validation{OK: true, Message: fmt.Sprintf("exit code matched: %d", want), Actual: actual}
		}
		return Validation{
			Reason:  report.ReasonValidation,
			Message: fmt.Sprintf("exit code %d != expected %d", res.ExitCode, want),
			Actual:  actual,
		}

	case tutorial.ModeContains:
		if strings.Contains(res.Combined, expected) {
			return Validation{OK: true, Message: fmt.Sprintf("output contains %q", expected), Actual: res.Combined}
		}
		return Validation{
			Reason:  report.ReasonValidation,
			Message: fmt.Sprintf("output does not contain %q", expected),
			Actual:  res.Combined,
		}

	case tutorial.ModeRegex:
		// (?m) so ^ and $ anchor per line, matching how authors write
		// patterns against multi-line command output.
		re, err := regexp.Compile("(?m)" + expected)
		if err != nil {
			return Validation{
				Reason:  report.ReasonBadPattern,
				Message: fmt.Sprintf("invalid regex pattern %q: %v", expected, err),
				Actual:  res.Combined,
			}
		}
		if re.MatchString(res.Combined) {
			return Validation{OK: true, Message: fmt.Sprintf("output matches pattern %q", expected), Actual: res.Combined}
		}
		return Validation{
			Reason:  report.ReasonValidation,
			Message: fmt.Sprintf("output does not match pattern %q", expected),
			Actual:  res.Combined,
		}

	case tutorial.ModeExact:
		actual := strings.TrimSuffix(res.Combined, "\n")
		if actual == expected {
			return Validation{OK: true, Message: "output matches exactly", Actual: actual}
		}
		return Validation{
			Reason:  report.ReasonValidation,
			Message: "output does not match exactly",
			Actual:  actual,
		}
	}

	return Validation{
		Reason:  report.ReasonValidation,
		Message: fmt.Sprintf("unknown validation mode %q", mode),
	}
}
