package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/guiderails/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func boolPtr(b bool) *bool { return &b }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), Flags{})
	require.NoError(t, err)

	assert.Equal(t, VerbosityNormal, cfg.Verbosity)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.CI)
	assert.True(t, cfg.ShowCommands)
	assert.True(t, cfg.ShowExpected)
	assert.True(t, cfg.ShowCaptured)
	assert.True(t, cfg.ShowStepBanners)
	assert.False(t, cfg.ShowPreviews)
	assert.False(t, cfg.ShowTimestamps)
	assert.False(t, cfg.ShowSubstituted)
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("yml_sets_verbosity_and_toggles", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", `
verbosity: verbose
show_commands: false
format: jsonl
`)

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityVerbose, cfg.Verbosity)
		assert.Equal(t, FormatJSONL, cfg.Format)
		// Preset-controlled toggles follow the level.
		assert.True(t, cfg.ShowPreviews)
		assert.True(t, cfg.ShowTimestamps)
		// Toggles outside the presets keep the file value.
		assert.False(t, cfg.ShowCommands)
	})

	t.Run("presets_overwrite_file_toggles_they_control", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", `
verbosity: verbose
show_timestamps: false
`)

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.True(t, cfg.ShowTimestamps)
	})

	t.Run("toml_variant", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.toml", `
verbosity = "quiet"
format = "junit"
`)

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityQuiet, cfg.Verbosity)
		assert.Equal(t, FormatJUnit, cfg.Format)
		assert.False(t, cfg.ShowStepBanners)
	})

	t.Run("yaml_extension_variant", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yaml", "verbosity: debug\n")

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityDebug, cfg.Verbosity)
	})

	t.Run("walks_up_to_parent_directories", func(t *testing.T) {
		root := t.TempDir()
		writeConfig(t, root, "guiderails.yml", "verbosity: verbose\n")
		nested := filepath.Join(root, "docs", "tutorials")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		cfg, err := Load(nested, Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityVerbose, cfg.Verbosity)
	})

	t.Run("yml_wins_over_toml_in_same_directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "verbosity: verbose\n")
		writeConfig(t, dir, "guiderails.toml", `verbosity = "quiet"`+"\n")

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityVerbose, cfg.Verbosity)
	})

	t.Run("malformed_file_errors", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "verbosity: [unclosed\n")

		_, err := Load(dir, Flags{})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})
}

func TestLoadEnvironment(t *testing.T) {
	t.Run("env_verbosity_beats_file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "verbosity: quiet\n")
		t.Setenv("GUIDERAILS_VERBOSITY", "debug")

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityDebug, cfg.Verbosity)
	})

	t.Run("env_toggles_beat_presets", func(t *testing.T) {
		t.Setenv("GUIDERAILS_STEP_BANNERS", "false")

		cfg, err := Load(t.TempDir(), Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityNormal, cfg.Verbosity)
		assert.False(t, cfg.ShowStepBanners)
	})

	t.Run("env_bool_accepts_yes_and_on", func(t *testing.T) {
		t.Setenv("GUIDERAILS_TIMESTAMPS", "yes")
		t.Setenv("GUIDERAILS_PREVIEWS", "on")

		cfg, err := Load(t.TempDir(), Flags{})
		require.NoError(t, err)

		assert.True(t, cfg.ShowTimestamps)
		assert.True(t, cfg.ShowPreviews)
	})

	t.Run("env_format", func(t *testing.T) {
		t.Setenv("GUIDERAILS_FORMAT", "jsonl")

		cfg, err := Load(t.TempDir(), Flags{})
		require.NoError(t, err)

		assert.Equal(t, FormatJSONL, cfg.Format)
	})

	t.Run("unrelated_prefixed_vars_are_ignored", func(t *testing.T) {
		t.Setenv("GUIDERAILS_SOMETHING_ELSE", "true")

		cfg, err := Load(t.TempDir(), Flags{})
		require.NoError(t, err)

		assert.Equal(t, VerbosityNormal, cfg.Verbosity)
	})
}

func TestLoadFlags(t *testing.T) {
	t.Run("explicit_verbosity_beats_env", func(t *testing.T) {
		t.Setenv("GUIDERAILS_VERBOSITY", "debug")

		cfg, err := Load(t.TempDir(), Flags{Verbosity: "quiet"})
		require.NoError(t, err)

		assert.Equal(t, VerbosityQuiet, cfg.Verbosity)
	})

	t.Run("explicit_verbosity_beats_debug_flag", func(t *testing.T) {
		cfg, err := Load(t.TempDir(), Flags{Verbosity: "normal", Debug: true})
		require.NoError(t, err)

		assert.Equal(t, VerbosityNormal, cfg.Verbosity)
	})

	t.Run("verbose_counts", func(t *testing.T) {
		tests := []struct {
			name  string
			flags Flags
			want  Verbosity
		}{
			{"quiet_flag", Flags{Quiet: true}, VerbosityQuiet},
			{"single_v", Flags{Verbose: 1}, VerbosityVerbose},
			{"double_v", Flags{Verbose: 2}, VerbosityVerbose},
			{"triple_v", Flags{Verbose: 3}, VerbosityDebug},
			{"debug_flag", Flags{Debug: true}, VerbosityDebug},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg, err := Load(t.TempDir(), tt.flags)
				require.NoError(t, err)
				assert.Equal(t, tt.want, cfg.Verbosity)
			})
		}
	})

	t.Run("toggle_flags_beat_presets_and_env", func(t *testing.T) {
		t.Setenv("GUIDERAILS_PREVIEWS", "true")

		cfg, err := Load(t.TempDir(), Flags{
			Verbosity:    "verbose",
			ShowPreviews: boolPtr(false),
		})
		require.NoError(t, err)

		assert.False(t, cfg.ShowPreviews)
		// Other preset toggles untouched by the flag.
		assert.True(t, cfg.ShowTimestamps)
	})

	t.Run("format_flag_beats_file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "format: jsonl\n")

		cfg, err := Load(dir, Flags{Format: "junit"})
		require.NoError(t, err)

		assert.Equal(t, FormatJUnit, cfg.Format)
	})

	t.Run("invalid_format_errors", func(t *testing.T) {
		_, err := Load(t.TempDir(), Flags{Format: "xml"})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("invalid_format_in_file_errors", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "format: html\n")

		_, err := Load(dir, Flags{})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})
}

func TestLoadCI(t *testing.T) {
	t.Run("ci_defaults_to_quiet", func(t *testing.T) {
		cfg, err := Load(t.TempDir(), Flags{CI: true})
		require.NoError(t, err)

		assert.True(t, cfg.CI)
		assert.Equal(t, VerbosityQuiet, cfg.Verbosity)
		assert.False(t, cfg.ShowStepBanners)
	})

	t.Run("explicit_flag_keeps_level_in_ci", func(t *testing.T) {
		cfg, err := Load(t.TempDir(), Flags{CI: true, Verbose: 1})
		require.NoError(t, err)

		assert.Equal(t, VerbosityVerbose, cfg.Verbosity)
	})

	t.Run("env_verbosity_keeps_level_in_ci", func(t *testing.T) {
		t.Setenv("GUIDERAILS_VERBOSITY", "normal")

		cfg, err := Load(t.TempDir(), Flags{CI: true})
		require.NoError(t, err)

		assert.Equal(t, VerbosityNormal, cfg.Verbosity)
	})

	t.Run("file_verbosity_keeps_level_in_ci", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "verbosity: normal\n")

		cfg, err := Load(dir, Flags{CI: true})
		require.NoError(t, err)

		assert.Equal(t, VerbosityNormal, cfg.Verbosity)
	})

	t.Run("ci_from_config_file", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "guiderails.yml", "ci: true\n")

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)

		assert.True(t, cfg.CI)
		assert.Equal(t, VerbosityQuiet, cfg.Verbosity)
	})
}
