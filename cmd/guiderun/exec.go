package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/guiderails/pkg/config"
	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/executor"
	"github.com/arthur-debert/guiderails/pkg/fetch"
	"github.com/arthur-debert/guiderails/pkg/output"
	"github.com/arthur-debert/guiderails/pkg/report"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

// renderer is what exec needs from an output format: live progress plus
// a final summary.
type renderer interface {
	executor.Observer
	Summary(rep *report.Report) error
}

func newExecCmd(flags *rootFlags) *cobra.Command {
	var (
		workdir     string
		varFlags    []string
		allowUnsafe bool
		step        string
		dryRun      bool
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "exec <tutorial.md|URL>",
		Short: "Execute a tutorial",
		Long: `Execute parses the tutorial and runs every step's actions in document
order: commands through the shell, file blocks onto disk, each checked
against its expectation. The exit code is zero only when every action
passed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out, closeOut, err := openOutput(cmd, outputPath, cfg.Format)
			if err != nil {
				return err
			}
			defer closeOut()

			var rend renderer
			switch cfg.Format {
			case config.FormatJSONL:
				rend = output.NewJSONL(out)
			case config.FormatJUnit:
				// Progress goes to stderr so the XML stream stays clean.
				rend = output.NewText(cmd.ErrOrStderr(), cfg, colorFor(cmd.ErrOrStderr()) && !cfg.CI)
			default:
				rend = output.NewText(out, cfg, colorFor(out) && !cfg.CI)
			}

			ex := executor.New(executor.Options{
				WorkDir:          workdir,
				AllowUnsafePaths: allowUnsafe,
				Vars:             seed,
				DryRun:           dryRun,
				Step:             step,
				Observer:         rend,
			})

			rep, err := ex.Run(tut)
			if err != nil {
				return err
			}
			if err := rend.Summary(rep); err != nil {
				return err
			}
			if cfg.Format == config.FormatJUnit {
				if err := output.WriteJUnit(rep, out); err != nil {
					return err
				}
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
	cmd.Flags().StringVar(&step, "step", "", "Run only the step with this id or 1-based position")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and report what would run without executing anything")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the jsonl/junit report to this file instead of stdout")

	return cmd
}

// loadTutorial reads a tutorial from disk or, for http(s) arguments,
// over the network.
func loadTutorial(ctx context.Context, arg string) (*tutorial.Tutorial, error) {
	if fetch.IsURL(arg) {
		client := fetch.New(fetch.Options{})
		content, source, err := client.Fetch(ctx, arg)
		if err != nil {
			return nil, err
		}
		return tutorial.Parse(content, source)
	}
	return tutorial.ParseFile(arg)
}

func resolveWorkdir(flag string) (string, error) {
	if flag == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFilesystem, "cannot determine working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(flag)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid working directory %q", flag)
	}
	return abs, nil
}

// parseVarFlags turns repeated NAME=VALUE flags into the seed map.
func parseVarFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	seed := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid --var %q, expected NAME=VALUE", pair)
		}
		seed[name] = value
	}
	return seed, nil
}

// openOutput decides where the report stream goes. Text always goes to
// the command's stdout; jsonl/junit honor --output.
func openOutput(cmd *cobra.Command, path string, format config.Format) (io.Writer, func(), error) {
	noop := func() {}
	if path == "" || format == config.FormatText {
		return cmd.OutOrStdout(), noop, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, noop, errors.Wrapf(err, errors.ErrFilesystem, "cannot create report file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return output.ColorEnabled(f)
}
