package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/guiderails/internal/version"
	"github.com/arthur-debert/guiderails/pkg/config"
	"github.com/arthur-debert/guiderails/pkg/logging"
)

// rootFlags collects the persistent output flags shared by exec and
// guided. Toggle values are only honored when their flag was given.
type rootFlags struct {
	logVerbosity int

	verbosity string
	quiet     bool
	debug     bool
	ci        bool
	format    string

	showCommands    bool
	showSubstituted bool
	showExpected    bool
	showCaptured    bool
	showTimestamps  bool
	showStepBanners bool
}

// NewRootCmd builds the guiderun command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "guiderun",
		Short: "Run annotated Markdown tutorials",
		Long: `guiderun executes annotated Markdown tutorials: ordinary prose with
fenced code blocks tagged to run as shell commands or to materialize
files, each checked against expectations. Documentation that drifts
from reality fails instead of misleading.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.logVerbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flags.logVerbosity, "verbose", "v", "Increase log verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.StringVar(&flags.verbosity, "verbosity", "", "Output verbosity: quiet, normal, verbose or debug")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "Only print failures and the summary")
	pf.BoolVar(&flags.debug, "debug", false, "Most detailed output")
	pf.BoolVar(&flags.ci, "ci", false, "CI mode: plain, quiet output unless verbosity is set")
	pf.StringVar(&flags.format, "format", "", "Report format: text, jsonl or junit")

	pf.BoolVar(&flags.showCommands, "show-commands", true, "Show each command before it runs")
	pf.BoolVar(&flags.showSubstituted, "show-substituted", false, "Show commands after variable substitution")
	pf.BoolVar(&flags.showExpected, "show-expected", true, "Show expected vs actual on failures")
	pf.BoolVar(&flags.showCaptured, "show-captured", true, "Show captured variables")
	pf.BoolVar(&flags.showTimestamps, "timestamps", false, "Prefix output lines with timestamps")
	pf.BoolVar(&flags.showStepBanners, "step-banners", true, "Print a banner when a step starts")

	rootCmd.AddCommand(newExecCmd(flags))
	rootCmd.AddCommand(newGuidedCmd(flags))
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newWorkflowCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(newManCmd(rootCmd))

	return rootCmd
}

// configFlags translates the cobra flag state into config overrides,
// only carrying toggles the user actually set.
func (f *rootFlags) configFlags(cmd *cobra.Command) config.Flags {
	cf := config.Flags{
		Verbosity: f.verbosity,
		Quiet:     f.quiet,
		Debug:     f.debug,
		CI:        f.ci,
		Format:    f.format,
	}

	set := func(name string, value *bool) *bool {
		if cmd.Flags().Changed(name) {
			return value
		}
		return nil
	}
	cf.ShowCommands = set("show-commands", &f.showCommands)
	cf.ShowSubstituted = set("show-substituted", &f.showSubstituted)
	cf.ShowExpected = set("show-expected", &f.showExpected)
	cf.ShowCaptured = set("show-captured", &f.showCaptured)
	cf.ShowTimestamps = set("timestamps", &f.showTimestamps)
	cf.ShowStepBanners = set("step-banners", &f.showStepBanners)
	return cf
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("guiderun version %s\n", version.Version)
		cmd.Printf("  commit: %s\n", version.Commit)
		cmd.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(guiderun completion bash)

Zsh:
  $ guiderun completion zsh > "${fpath[1]}/_guiderun"

Fish:
  $ guiderun completion fish | source

PowerShell:
  PS> guiderun completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}

func newManCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man pages",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "GUIDERUN",
				Section: "1",
			}
			return doc.GenManTree(root, header, "/tmp")
		},
	}
}
