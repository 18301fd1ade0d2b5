package render

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/guiderails/pkg/errors"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

// Source is the YAML form of a tutorial, the authoring format behind
// the render command.
type Source struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description,omitempty"`
	Steps       []StepSource `yaml:"steps"`
}

// StepSource describes one step: prose, at most one command, and any
// number of files to materialize. Files render before the command, so a
// step can write a script and immediately run it.
type StepSource struct {
	ID          string `yaml:"id,omitempty"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Command         string `yaml:"command,omitempty"`
	Mode            string `yaml:"mode,omitempty"`
	Expected        Scalar `yaml:"expected,omitempty"`
	Timeout         *int   `yaml:"timeout,omitempty"`
	Workdir         string `yaml:"workdir,omitempty"`
	ContinueOnError bool   `yaml:"continue_on_error,omitempty"`
	OutVar          string `yaml:"out_var,omitempty"`
	CodeVar         string `yaml:"code_var,omitempty"`
	OutFile         string `yaml:"out_file,omitempty"`

	Files []FileSource `yaml:"files,omitempty"`
}

// FileSource describes one file block of a step.
type FileSource struct {
	Path     string `yaml:"path"`
	Content  string `yaml:"content"`
	Mode     string `yaml:"mode,omitempty"`
	Exec     bool   `yaml:"exec,omitempty"`
	Template string `yaml:"template,omitempty"`
	Once     bool   `yaml:"once,omitempty"`
}

// Scalar is a string that also accepts bare YAML numbers and booleans,
// so `expected: 0` does not force authors to quote exit codes.
type Scalar string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", value.Line)
	}
	*s = Scalar(value.Value)
	return nil
}

// ParseSource decodes and validates a YAML tutorial source.
func ParseSource(data []byte, source string) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRender, "invalid tutorial source %s", source)
	}
	if err := src.validate(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRender, "invalid tutorial source %s", source)
	}
	return &src, nil
}

// LoadSource reads and parses a YAML tutorial source from disk.
func LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "cannot read tutorial source %s", path)
	}
	return ParseSource(data, path)
}

func (s *Source) validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *StepSource) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if s.Command == "" && len(s.Files) == 0 {
		return fmt.Errorf("%s: a command or at least one file is required", s.Name)
	}
	switch tutorial.ValidationMode(s.Mode) {
	case "", tutorial.ModeExit, tutorial.ModeContains, tutorial.ModeRegex, tutorial.ModeExact:
	default:
		return fmt.Errorf("%s: invalid mode %q", s.Name, s.Mode)
	}
	if s.Timeout != nil && *s.Timeout < 0 {
		return fmt.Errorf("%s: timeout must be non-negative", s.Name)
	}
	for j, f := range s.Files {
		if err := f.validate(); err != nil {
			return fmt.Errorf("%s: file %d: %w", s.Name, j+1, err)
		}
	}
	return nil
}

func (f *FileSource) validate() error {
	if strings.TrimSpace(f.Path) == "" {
		return fmt.Errorf("path is required")
	}
	switch tutorial.WriteMode(f.Mode) {
	case "", tutorial.WriteModeWrite, tutorial.WriteModeAppend:
	default:
		return fmt.Errorf("%s: invalid mode %q", f.Path, f.Mode)
	}
	switch tutorial.TemplateMode(f.Template) {
	case "", tutorial.TemplateNone, tutorial.TemplateShell:
	default:
		return fmt.Errorf("%s: invalid template %q", f.Path, f.Template)
	}
	return nil
}
