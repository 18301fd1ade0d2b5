package render

import (
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/guiderails/pkg/errors"
)

// WorkflowOptions controls workflow generation.
type WorkflowOptions struct {
	// Name overrides the workflow name. Defaults to "Tutorial: <file>".
	Name string

	// GoVersion selects the toolchain installed in the job.
	GoVersion string

	// Branches to trigger on. Defaults to main.
	Branches []string
}

type workflow struct {
	Name string       `yaml:"name"`
	On   workflowOn   `yaml:"on"`
	Jobs workflowJobs `yaml:"jobs"`
}

type workflowOn struct {
	Push        workflowBranches `yaml:"push"`
	PullRequest workflowBranches `yaml:"pull_request"`
}

type workflowBranches struct {
	Branches []string `yaml:"branches"`
}

type workflowJobs struct {
	Tutorial workflowJob `yaml:"tutorial"`
}

type workflowJob struct {
	Name   string         `yaml:"name"`
	RunsOn string         `yaml:"runs-on"`
	Steps  []workflowStep `yaml:"steps"`
}

type workflowStep struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

// Workflow generates a GitHub Actions workflow that executes the
// tutorial under CI mode. A YAML source gets a render step first so the
// job runs the Markdown it produces; an annotated Markdown file is
// executed directly.
func Workflow(tutorialPath string, opts WorkflowOptions) ([]byte, error) {
	if strings.TrimSpace(tutorialPath) == "" {
		return nil, errors.New(errors.ErrInvalidInput, "tutorial path is required")
	}

	name := opts.Name
	if name == "" {
		name = "Tutorial: " + filepath.Base(tutorialPath)
	}
	goVersion := opts.GoVersion
	if goVersion == "" {
		goVersion = "stable"
	}
	branches := opts.Branches
	if len(branches) == 0 {
		branches = []string{"main"}
	}

	execPath := tutorialPath
	steps := []workflowStep{
		{Name: "Checkout", Uses: "actions/checkout@v4"},
		{Name: "Set up Go", Uses: "actions/setup-go@v5", With: map[string]string{"go-version": goVersion}},
		{Name: "Install guiderun", Run: "go install github.com/arthur-debert/guiderails/cmd/guiderun@latest"},
	}

	if isYAMLSource(tutorialPath) {
		execPath = strings.TrimSuffix(strings.TrimSuffix(tutorialPath, ".yaml"), ".yml") + ".md"
		steps = append(steps, workflowStep{
			Name: "Render tutorial",
			Run:  "guiderun render " + tutorialPath + " -o " + execPath,
		})
	}

	steps = append(steps, workflowStep{
		Name: "Run tutorial",
		Run:  "guiderun exec --ci " + execPath,
	})

	wf := workflow{
		Name: name,
		On: workflowOn{
			Push:        workflowBranches{Branches: branches},
			PullRequest: workflowBranches{Branches: branches},
		},
		Jobs: workflowJobs{
			Tutorial: workflowJob{
				Name:   "Run tutorial",
				RunsOn: "ubuntu-latest",
				Steps:  steps,
			},
		},
	}

	data, err := yaml.Marshal(&wf)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRender, "failed to marshal workflow")
	}
	return data, nil
}

func isYAMLSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
