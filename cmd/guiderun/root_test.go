package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/guiderails/pkg/testutil"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test drives sh")
	}
}

// runCommand executes the CLI with args and returns stdout+stderr.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func passingTutorial(t *testing.T, dir string) string {
	t.Helper()
	return testutil.WriteTutorial(t, dir, "tutorial.md",
		"# Demo",
		"",
		"## Write {.gr-step}",
		"",
		"```{.gr-file path=note.txt}",
		"hello",
		"```",
		"",
		"## Check {.gr-step}",
		"",
		"```{.gr-run mode=contains exp=hello}",
		"cat note.txt",
		"```",
	)
}

func TestExecPassingTutorial(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := passingTutorial(t, dir)

	out, err := runCommand(t, "exec", "--workdir", dir, path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 passed")
	assert.Equal(t, "hello\n", testutil.ReadFile(t, filepath.Join(dir, "note.txt")))
}

func TestExecFailingTutorialReturnsError(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := testutil.WriteTutorial(t, dir, "tutorial.md",
		"# Demo",
		"",
		"## Fail {.gr-step}",
		"",
		"```{.gr-run}",
		"false",
		"```",
	)

	out, err := runCommand(t, "exec", "--workdir", dir, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tutorial failed")
	assert.Contains(t, out, "1 failed")
}

func TestExecDryRunExecutesNothing(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := passingTutorial(t, dir)

	_, err := runCommand(t, "exec", "--dry-run", "--workdir", dir, path)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "note.txt"))
}

func TestExecMalformedTutorialAbortsBeforeExecution(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := testutil.WriteTutorial(t, dir, "tutorial.md",
		"# Demo",
		"",
		"## Ok {.gr-step}",
		"",
		"```{.gr-file path=note.txt}",
		"hello",
		"```",
		"",
		"## Broken {.gr-step}",
		"",
		"```{.gr-run timeout=soon}",
		"true",
		"```",
	)

	_, err := runCommand(t, "exec", "--workdir", dir, path)
	require.Error(t, err)
	// The valid first step must not have run either.
	assert.NoFileExists(t, filepath.Join(dir, "note.txt"))
}

func TestExecSeedsVariables(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := testutil.WriteTutorial(t, dir, "tutorial.md",
		"# Demo",
		"",
		"## Greet {.gr-step}",
		"",
		"```{.gr-run mode=exact exp=\"Hi World\"}",
		"echo \"Hi ${NAME}\"",
		"```",
	)

	_, err := runCommand(t, "exec", "--workdir", dir, "--var", "NAME=World", path)
	require.NoError(t, err)

	_, err = runCommand(t, "exec", "--workdir", dir, "--var", "garbage", path)
	require.Error(t, err)
}

func TestExecStepSelection(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := testutil.WriteTutorial(t, dir, "tutorial.md",
		"# Demo",
		"",
		"## One {.gr-step #first}",
		"",
		"```{.gr-file path=one.txt}",
		"1",
		"```",
		"",
		"## Two {.gr-step #second}",
		"",
		"```{.gr-file path=two.txt}",
		"2",
		"```",
	)

	_, err := runCommand(t, "exec", "--workdir", dir, "--step", "second", path)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "one.txt"))
	assert.FileExists(t, filepath.Join(dir, "two.txt"))

	_, err = runCommand(t, "exec", "--workdir", dir, "--step", "missing", path)
	require.Error(t, err)
}

func TestExecJSONLFormat(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := passingTutorial(t, dir)

	out, err := runCommand(t, "exec", "--workdir", dir, "--format", "jsonl", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, "two actions plus a summary")
	for _, line := range lines {
		var obj map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &obj), "line %q", line)
	}
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &summary))
	assert.Equal(t, true, summary["success"])
}

func TestExecJUnitToFile(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	path := passingTutorial(t, dir)
	reportPath := filepath.Join(dir, "report.xml")

	_, err := runCommand(t, "exec", "--workdir", dir, "--format", "junit", "-o", reportPath, path)
	require.NoError(t, err)

	xml := testutil.ReadFile(t, reportPath)
	assert.Contains(t, xml, "<testsuites")
	assert.Contains(t, xml, `tests="2"`)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "tut.yaml")
	testutil.WriteFile(t, srcPath, strings.Join([]string{
		"title: Render me",
		"steps:",
		"  - id: only",
		"    name: Only step",
		"    command: \"true\"",
	}, "\n"))
	outPath := filepath.Join(dir, "tut.md")

	_, err := runCommand(t, "render", srcPath, "-o", outPath)
	require.NoError(t, err)

	tut, err := tutorial.ParseFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Render me", tut.Title)
	require.Len(t, tut.Steps, 1)
	assert.Equal(t, "only", tut.Steps[0].ID)
}

func TestWorkflowCommand(t *testing.T) {
	out, err := runCommand(t, "workflow", "tutorials/demo.md")
	require.NoError(t, err)
	assert.Contains(t, out, "guiderun exec --ci tutorials/demo.md")
}

func TestInitCommand(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	out, err := runCommand(t, "init", "--dir", dir, "sample")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("tutorials", "sample.md"))

	// The scaffolded tutorial must run green end to end.
	_, err = runCommand(t, "exec", "--workdir", dir, filepath.Join(dir, "tutorials", "sample.md"))
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "guiderun version")
}

func TestExecMissingTutorial(t *testing.T) {
	_, err := runCommand(t, "exec", filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
}

func TestMain(m *testing.M) {
	// Keep runs hermetic from a developer's own guiderails config.
	for _, key := range os.Environ() {
		if strings.HasPrefix(key, "GUIDERAILS_") {
			_ = os.Unsetenv(strings.SplitN(key, "=", 2)[0])
		}
	}
	os.Exit(m.Run())
}
