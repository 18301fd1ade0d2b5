package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/guiderails/pkg/config"
	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/executor"
	"github.com/arthur-debert/guiderails/pkg/guided"
)

func newGuidedCmd(flags *rootFlags) *cobra.Command {
	var (
		workdir     string
		varFlags    []string
		allowUnsafe bool
		plain       bool
	)

	cmd := &cobra.Command{
		Use:   "guided <tutorial.md|URL>",
		Short: "Walk through a tutorial interactively",
		Long: `Guided renders each step's prose, previews every action with its
substituted command, and asks before running anything. Skipped actions
are recorded in the report; failures halt exactly as in exec.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain && !isatty.IsTerminal(os.Stdin.Fd()) {
				return errors.New(errors.ErrInvalidInput,
					"guided mode needs an interactive terminal, use exec instead")
			}

			workdir, err := resolveWorkdir(workdir)
			if err != nil {
				return err
			}

			cfg, err := config.Load(workdir, flags.configFlags(cmd))
			if err != nil {
				return err
			}

			tut, err := loadTutorial(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			seed, err := parseVarFlags(varFlags)
			if err != nil {
				return err
			}

			runner := guided.New(guided.Options{
				Executor: executor.New(executor.Options{
					WorkDir:          workdir,
					AllowUnsafePaths: allowUnsafe,
					Vars:             seed,
				}),
				Config: cfg,
				Out:    cmd.OutOrStdout(),
				Plain:  plain || cfg.CI,
			})

			rep, err := runner.Run(tut)
			if err != nil {
				return err
			}
			if !rep.Success {
				return errors.Newf(errors.ErrExecution,
					"tutorial failed: %d passed, %d failed, %d errored, %d skipped",
					rep.Passed, rep.Failed, rep.Errored, rep.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Working directory for the run (default: current directory)")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "Seed a variable as NAME=VALUE (repeatable)")
	cmd.Flags().BoolVar(&allowUnsafe, "allow-unsafe-paths", false, "Allow file actions to write outside the working directory")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable rich terminal rendering")

	return cmd
}
