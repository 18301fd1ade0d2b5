package render_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/guiderails/pkg/render"
	"github.com/arthur-debert/guiderails/pkg/tutorial"
)

func TestScaffoldMarkdown(t *testing.T) {
	dir := t.TempDir()

	written, err := render.Scaffold(render.ScaffoldOptions{Dir: dir, Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("tutorials", "demo.md"), "guiderails.yml"}, written)

	// The scaffolded tutorial must be executable as-is.
	tut, err := tutorial.ParseFile(filepath.Join(dir, "tutorials", "demo.md"))
	require.NoError(t, err)
	require.Len(t, tut.Steps, 3)
	assert.Equal(t, "greet", tut.Steps[0].ID)

	cfg, err := os.ReadFile(filepath.Join(dir, "guiderails.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "verbosity:")
}

func TestScaffoldYAMLSource(t *testing.T) {
	dir := t.TempDir()

	written, err := render.Scaffold(render.ScaffoldOptions{Dir: dir, Name: "demo", AsYAML: true})
	require.NoError(t, err)
	assert.Contains(t, written, filepath.Join("tutorials", "demo.yaml"))

	src, err := render.LoadSource(filepath.Join(dir, "tutorials", "demo.yaml"))
	require.NoError(t, err)
	require.Len(t, src.Steps, 3)
	assert.Equal(t, "NAME", src.Steps[0].OutVar)
}

func TestScaffoldRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, err := render.Scaffold(render.ScaffoldOptions{Dir: dir, Name: "demo"})
	require.NoError(t, err)

	_, err = render.Scaffold(render.ScaffoldOptions{Dir: dir, Name: "demo"})
	require.Error(t, err)
}

func TestScaffoldKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	existing := []byte("verbosity: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guiderails.yml"), existing, 0o644))

	written, err := render.Scaffold(render.ScaffoldOptions{Dir: dir, Name: "demo"})
	require.NoError(t, err)
	assert.NotContains(t, written, "guiderails.yml")

	got, err := os.ReadFile(filepath.Join(dir, "guiderails.yml"))
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}
