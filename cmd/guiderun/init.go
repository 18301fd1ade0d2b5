package main

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/render"
)

func newInitCmd() *cobra.Command {
	var (
		dir    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Scaffold a runnable sample tutorial",
		Long: `Init writes a sample tutorial under tutorials/ together with a
guiderails.yml, giving a working starting point that exercises file
writes, captures and substitution.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			asYAML := false
			switch format {
			case "", "markdown", "md":
			case "yaml", "yml":
				asYAML = true
			default:
				return errors.Newf(errors.ErrInvalidInput,
					"invalid --format %q, expected markdown or yaml", format)
			}

			written, err := render.Scaffold(render.ScaffoldOptions{
				Dir:    dir,
				Name:   name,
				AsYAML: asYAML,
			})
			if err != nil {
				return err
			}

			for _, path := range written {
				cmd.Printf("wrote %s\n", path)
			}
			cmd.Printf("run it with: guiderun exec %s\n", written[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Project directory (default: current directory)")
	cmd.Flags().StringVar(&format, "format", "", "Tutorial format: markdown (default) or yaml")

	return cmd
}
