package render

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/filesystem"
)

// ScaffoldOptions controls what init writes.
type ScaffoldOptions struct {
	// Dir is the project root. Defaults to the current directory.
	Dir string

	// Name is the tutorial name, without extension. Defaults to
	// "getting-started".
	Name string

	// AsYAML writes the YAML source form instead of annotated Markdown.
	AsYAML bool

	// FS overrides the filesystem, for tests.
	FS filesystem.FS
}

const scaffoldConfig = `# guiderails configuration. Every key is optional;
# environment variables (GUIDERAILS_*) and CLI flags override this file.
verbosity: normal
format: text
`

// Scaffold writes a runnable sample tutorial under tutorials/ plus a
// guiderails.yml when one does not exist yet. It returns the paths it
// wrote, relative to the project root.
func Scaffold(opts ScaffoldOptions) ([]string, error) {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	name := opts.Name
	if name == "" {
		name = "getting-started"
	}

	var written []string

	rel := filepath.Join("tutorials", name+".md")
	content, err := Markdown(sampleSource(name), "")
	if err != nil {
		return nil, err
	}
	if opts.AsYAML {
		rel = filepath.Join("tutorials", name+".yaml")
		data, err := yaml.Marshal(sampleSource(name))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRender, "failed to marshal sample tutorial")
		}
		content = string(data)
	}

	target := filepath.Join(dir, rel)
	if _, err := fs.Stat(target); err == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "refusing to overwrite %s", target)
	}
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "cannot create %s", filepath.Dir(target))
	}
	if err := fs.WriteFile(target, []byte(content), 0o644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "cannot write %s", target)
	}
	written = append(written, rel)

	cfgPath := filepath.Join(dir, "guiderails.yml")
	if _, err := fs.Stat(cfgPath); os.IsNotExist(err) {
		if err := fs.WriteFile(cfgPath, []byte(scaffoldConfig), 0o644); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "cannot write %s", cfgPath)
		}
		written = append(written, "guiderails.yml")
	}

	return written, nil
}

// sampleSource is the tutorial init ships: it exercises a file write, a
// capture and a substitution so new users see the whole loop.
func sampleSource(name string) *Source {
	timeout := 5
	return &Source{
		Title:       "Getting started with " + name,
		Description: "A minimal tutorial. Run it with `guiderun exec`.",
		Steps: []StepSource{
			{
				ID:          "greet",
				Name:        "Capture a greeting",
				Description: "Command output can be captured into a variable.",
				Command:     `echo -n "World"`,
				OutVar:      "NAME",
				Timeout:     &timeout,
			},
			{
				ID:          "use-capture",
				Name:        "Use the captured value",
				Description: "Captured variables substitute into later commands as ${NAME}.",
				Command:     `echo "Hello ${NAME}"`,
				Mode:        "contains",
				Expected:    "Hello World",
			},
			{
				ID:          "write-file",
				Name:        "Materialize a file",
				Description: "File blocks write their body to disk before the command runs.",
				Files: []FileSource{
					{Path: "hello.txt", Content: "hello from " + name, Once: true},
				},
				Command:  "cat hello.txt",
				Mode:     "exact",
				Expected: Scalar("hello from " + name),
			},
		},
	}
}
