package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/render"
)

func newRenderCmd() *cobra.Command {
	var (
		templatePath string
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "render <tutorial.yaml>",
		Short: "Render a YAML tutorial source to annotated Markdown",
		Long: `Render turns the YAML authoring format into annotated Markdown. The
output carries the same gr-step/gr-run/gr-file annotations exec
consumes, so a rendered tutorial is immediately executable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := render.LoadSource(args[0])
			if err != nil {
				return err
			}

			tmplText := ""
			if templatePath != "" {
				data, err := os.ReadFile(templatePath)
				if err != nil {
					return errors.Wrapf(err, errors.ErrNotFound, "cannot read template %s", templatePath)
				}
				tmplText = string(data)
			}

			md, err := render.Markdown(src, tmplText)
			if err != nil {
				return err
			}

			if outputPath == "" {
				cmd.Print(md)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(md), 0o644); err != nil {
				return errors.Wrapf(err, errors.ErrFilesystem, "cannot write %s", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Custom Go text/template for the Markdown layout")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the Markdown to this file instead of stdout")

	return cmd
}
