package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/guiderails/pkg/errors"
)

const envPrefix = "GUIDERAILS_"

// configFileNames are tried in order in each directory while walking up.
var configFileNames = []string{"guiderails.yml", "guiderails.yaml", "guiderails.toml"}

// envKeys maps GUIDERAILS_* suffixes to config keys. Anything else under
// the prefix is ignored.
var envKeys = map[string]string{
	"VERBOSITY":        "verbosity",
	"FORMAT":           "format",
	"SHOW_COMMANDS":    "show_commands",
	"SHOW_SUBSTITUTED": "show_substituted",
	"SHOW_EXPECTED":    "show_expected",
	"SHOW_CAPTURED":    "show_captured",
	"TIMESTAMPS":       "show_timestamps",
	"STEP_BANNERS":     "show_step_banners",
	"PREVIEWS":         "show_previews",
}

// Flags carries command-line overrides. Zero values mean the flag was not
// given; toggle pointers are nil when unset.
type Flags struct {
	Verbosity string
	Quiet     bool
	Verbose   int
	Debug     bool
	CI        bool
	Format    string

	ShowCommands    *bool
	ShowSubstituted *bool
	ShowExpected    *bool
	ShowCaptured    *bool
	ShowTimestamps  *bool
	ShowStepBanners *bool
	ShowPreviews    *bool
}

// Load resolves the configuration for a run rooted at workDir.
//
// Layering, lowest to highest: embedded defaults, the first
// guiderails.yml/.yaml/.toml found walking up from workDir, GUIDERAILS_*
// environment variables, then flags. Verbosity presets are applied after
// the level is resolved, so environment and flag toggles win over presets
// while file toggles for the preset-controlled settings do not.
func Load(workDir string, flags Flags) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default configuration")
	}

	fileSetVerbosity := false
	if path := findConfigFile(workDir); path != "" {
		fileK := koanf.New(".")
		if err := fileK.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
		}
		fileSetVerbosity = fileK.Exists("verbosity")
		if err := k.Load(confmap.Provider(fileK.All(), "."), nil); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to merge config file %s", path)
		}
	}

	envK := koanf.New(".")
	if err := envK.Load(envProvider(), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment configuration")
	}
	if err := k.Load(confmap.Provider(envK.All(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to merge environment configuration")
	}

	cfg := Default()
	if err := unmarshal(k, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	// Convenience flags resolve the level when no explicit --verbosity is
	// given: --debug and --quiet name their levels, -v/-vv mean verbose
	// and -vvv means debug.
	switch {
	case flags.Verbosity != "":
		cfg.Verbosity = ParseVerbosity(flags.Verbosity)
	case flags.Debug:
		cfg.Verbosity = VerbosityDebug
	case flags.Quiet:
		cfg.Verbosity = VerbosityQuiet
	case flags.Verbose >= 3:
		cfg.Verbosity = VerbosityDebug
	case flags.Verbose >= 1:
		cfg.Verbosity = VerbosityVerbose
	}

	cfg.CI = cfg.CI || flags.CI

	// CI runs default to quiet unless the level was set explicitly
	// somewhere.
	explicit := flags.Verbosity != "" || flags.Quiet || flags.Debug || flags.Verbose > 0 ||
		envK.Exists("verbosity") || fileSetVerbosity
	if cfg.CI && !explicit {
		cfg.Verbosity = VerbosityQuiet
	}

	cfg.applyVerbosityPresets()

	// Toggle overrides come back on top of the presets.
	if err := unmarshalMap(envToggles(envK), cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to apply environment toggles")
	}
	applyFlagToggles(cfg, flags)

	if flags.Format != "" {
		cfg.Format = Format(strings.ToLower(flags.Format))
	}
	if !validFormat(cfg.Format) {
		return nil, errors.Newf(errors.ErrConfigLoad,
			"invalid output format %q, expected text, jsonl or junit", string(cfg.Format))
	}

	return cfg, nil
}

func defaultMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"verbosity":         string(d.Verbosity),
		"format":            string(d.Format),
		"show_commands":     d.ShowCommands,
		"show_substituted":  d.ShowSubstituted,
		"show_expected":     d.ShowExpected,
		"show_captured":     d.ShowCaptured,
		"show_timestamps":   d.ShowTimestamps,
		"show_step_banners": d.ShowStepBanners,
		"show_previews":     d.ShowPreviews,
	}
}

// findConfigFile walks up from startDir and returns the first config file
// found, or "" when there is none.
func findConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func parserFor(path string) koanf.Parser {
	if strings.HasSuffix(path, ".toml") {
		return toml.Parser()
	}
	return yaml.Parser()
}

func envProvider() *env.Env {
	return env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		name, ok := envKeys[strings.TrimPrefix(key, envPrefix)]
		if !ok {
			return "", nil
		}
		if name == "verbosity" || name == "format" {
			return name, strings.ToLower(value)
		}
		return name, parseEnvBool(value)
	})
}

func parseEnvBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// envToggles strips the string-valued keys so a second unmarshal cannot
// undo the flag-resolved verbosity or format.
func envToggles(envK *koanf.Koanf) map[string]interface{} {
	m := envK.All()
	delete(m, "verbosity")
	delete(m, "format")
	return m
}

func applyFlagToggles(cfg *Config, flags Flags) {
	if flags.ShowCommands != nil {
		cfg.ShowCommands = *flags.ShowCommands
	}
	if flags.ShowSubstituted != nil {
		cfg.ShowSubstituted = *flags.ShowSubstituted
	}
	if flags.ShowExpected != nil {
		cfg.ShowExpected = *flags.ShowExpected
	}
	if flags.ShowCaptured != nil {
		cfg.ShowCaptured = *flags.ShowCaptured
	}
	if flags.ShowTimestamps != nil {
		cfg.ShowTimestamps = *flags.ShowTimestamps
	}
	if flags.ShowStepBanners != nil {
		cfg.ShowStepBanners = *flags.ShowStepBanners
	}
	if flags.ShowPreviews != nil {
		cfg.ShowPreviews = *flags.ShowPreviews
	}
}

func validFormat(f Format) bool {
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

func unmarshal(k *koanf.Koanf, cfg *Config) error {
	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	})
}

func unmarshalMap(m map[string]interface{}, cfg *Config) error {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return err
	}
	return unmarshal(k, cfg)
}
