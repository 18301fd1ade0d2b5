package config

import (
	"strings"
)

// Verbosity controls how much the output renderer shows.
type Verbosity string

const (
	VerbosityQuiet   Verbosity = "quiet"
	VerbosityNormal  Verbosity = "normal"
	VerbosityVerbose Verbosity = "verbose"
	VerbosityDebug   Verbosity = "debug"
)

var verbosityRank = map[Verbosity]int{
	VerbosityQuiet:   0,
	VerbosityNormal:  1,
	VerbosityVerbose: 2,
	VerbosityDebug:   3,
}

// ParseVerbosity converts a string to a Verbosity level.
// Unknown values fall back to VerbosityNormal.
func ParseVerbosity(s string) Verbosity {
	v := Verbosity(strings.ToLower(s))
	if _, ok := verbosityRank[v]; !ok {
		return VerbosityNormal
	}
	return v
}

// AtLeast reports whether v is at least the given minimum level.
func (v Verbosity) AtLeast(min Verbosity) bool {
	return verbosityRank[v] >= verbosityRank[min]
}

// Format selects the report output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
	FormatJUnit Format = "junit"
)

// ValidFormats lists the accepted values for the format option.
var ValidFormats = []Format{FormatText, FormatJSONL, FormatJUnit}

// Config is the resolved output configuration for a run.
type Config struct {
	Verbosity Verbosity `koanf:"verbosity"`
	Format    Format    `koanf:"format"`
	CI        bool      `koanf:"ci"`

	ShowCommands    bool `koanf:"show_commands"`
	ShowSubstituted bool `koanf:"show_substituted"`
	ShowExpected    bool `koanf:"show_expected"`
	ShowCaptured    bool `koanf:"show_captured"`
	ShowTimestamps  bool `koanf:"show_timestamps"`
	ShowStepBanners bool `koanf:"show_step_banners"`
	ShowPreviews    bool `koanf:"show_previews"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Verbosity:       VerbosityNormal,
		Format:          FormatText,
		ShowCommands:    true,
		ShowSubstituted: true,
		ShowExpected:    true,
		ShowCaptured:    true,
		ShowTimestamps:  false,
		ShowStepBanners: true,
		ShowPreviews:    true,
	}
}

// applyVerbosityPresets sets the level-controlled toggles for the current
// verbosity. Presets overwrite file-provided values for these toggles;
// environment variables and CLI flags are applied afterwards and win.
func (c *Config) applyVerbosityPresets() {
	switch c.Verbosity {
	case VerbosityQuiet:
		c.ShowStepBanners = false
		c.ShowPreviews = false
		c.ShowTimestamps = false
		c.ShowSubstituted = false
	case VerbosityVerbose, VerbosityDebug:
		c.ShowStepBanners = true
		c.ShowPreviews = true
		c.ShowTimestamps = true
		c.ShowSubstituted = true
	default:
		c.ShowStepBanners = true
		c.ShowPreviews = false
		c.ShowTimestamps = false
		c.ShowSubstituted = false
	}
}
