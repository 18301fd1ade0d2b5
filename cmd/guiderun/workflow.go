package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/render"
)

func newWorkflowCmd() *cobra.Command {
	var (
		outputPath string
		name       string
		goVersion  string
		branches   []string
	)

	cmd := &cobra.Command{
		Use:   "workflow <tutorial.yaml|tutorial.md>",
		Short: "Generate a GitHub Actions workflow that runs the tutorial",
		Long: `Workflow emits a GitHub Actions job that executes the tutorial with
"guiderun exec --ci" on every push and pull request, so the tutorial is
verified continuously. YAML sources get a render step first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := render.Workflow(args[0], render.WorkflowOptions{
				Name:      name,
				GoVersion: goVersion,
				Branches:  branches,
			})
			if err != nil {
				return err
			}

			if outputPath == "" {
				cmd.Print(string(data))
				return nil
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return errors.Wrapf(err, errors.ErrFilesystem, "cannot write %s", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the workflow to this file instead of stdout")
	cmd.Flags().StringVar(&name, "name", "", "Workflow name (default: derived from the tutorial file)")
	cmd.Flags().StringVar(&goVersion, "go-version", "", "Go toolchain for the job (default: stable)")
	cmd.Flags().StringSliceVar(&branches, "branch", nil, "Branches to trigger on (default: main)")

	return cmd
}
