// Package config provides configuration types, defaults, and persistence for hues.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/hues/internal/delay"
	"github.com/zjrosen/hues/internal/icon"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/tracing"
)

// Mode controls when buffers are highlighted.
type Mode string

const (
	// ModeOn highlights while typing.
	ModeOn Mode = "on"
	// ModeOff never highlights.
	ModeOff Mode = "off"
	// ModeLoadSave highlights when a buffer is opened or saved.
	ModeLoadSave Mode = "load-save"
	// ModeSaveOnly highlights only when a buffer is saved.
	ModeSaveOnly Mode = "save-only"
)

// ParseMode reads the highlight setting. YAML booleans arrive as "true" or,
// after weak decoding, "1".
func ParseMode(v string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "true", "1", "on", "yes":
		return ModeOn, nil
	case "false", "0", "off", "no":
		return ModeOff, nil
	case string(ModeLoadSave):
		return ModeLoadSave, nil
	case string(ModeSaveOnly):
		return ModeSaveOnly, nil
	default:
		return "", fmt.Errorf("highlight must be true, false, %q or %q, got %q", ModeLoadSave, ModeSaveOnly, v)
	}
}

// ParseGutterIcon reads the gutter_icon setting: a boolean or a shape name.
func ParseGutterIcon(v string) (icon.Shape, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "0", "off", "no", "none":
		return "", false
	case "", "true", "1", "on", "yes":
		return icon.DefaultShape, true
	default:
		return icon.ParseShape(v), true
	}
}

// Config holds all configuration options for hues.
type Config struct {
	// Colors is filled by Store; see LoadColors.
	Colors             map[string]string `mapstructure:"-"`
	Highlight          string            `mapstructure:"highlight"`
	HighlightValues    bool              `mapstructure:"highlight_values"`
	GutterIcon         string            `mapstructure:"gutter_icon"`
	Delay              float64           `mapstructure:"delay"` // seconds
	LargeFileThreshold int               `mapstructure:"large_file_threshold"`
	MaxSelections      int               `mapstructure:"max_selections"`
	Scheduler          SchedulerConfig   `mapstructure:"scheduler"`
	Icons              IconsConfig       `mapstructure:"icons"`
	History            HistoryConfig     `mapstructure:"history"`
	Tracing            tracing.Config    `mapstructure:"tracing"`
	Flags              map[string]bool   `mapstructure:"flags"`
}

// SchedulerConfig tunes the coalescing scheduler.
type SchedulerConfig struct {
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	BusyFactor int           `mapstructure:"busy_factor"`
	RearmFloor time.Duration `mapstructure:"rearm_floor"`
	Delays     delay.Table   `mapstructure:"delays"`
}

// IconsConfig configures gutter icon synthesis.
type IconsConfig struct {
	CacheDir string `mapstructure:"cache_dir"`
	// Backdrop is "light", "dark" or "auto".
	Backdrop string `mapstructure:"backdrop"`
}

// HistoryConfig configures the pass timing history.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Mode returns the parsed highlight mode.
func (c Config) Mode() (Mode, error) {
	return ParseMode(c.Highlight)
}

// Gutter returns the icon shape and whether icons are drawn.
func (c Config) Gutter() (icon.Shape, bool) {
	return ParseGutterIcon(c.GutterIcon)
}

// MinDelay returns the configured delay.
func (c Config) MinDelay() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

// DelayTable returns the configured table or the built-in one.
func (c Config) DelayTable() delay.Table {
	if len(c.Scheduler.Delays) == 0 {
		return delay.Default()
	}
	return c.Scheduler.Delays
}

// DefaultConfigDir returns ~/.config/hues, or empty if home is unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hues")
}

// DefaultCacheDir returns the icon cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hues.cache")
	}
	return filepath.Join(dir, "hues", "icons")
}

// DefaultHistoryPath returns the timing history database path.
func DefaultHistoryPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "history.db")
}

// DefaultTracesFilePath returns the default JSONL trace output path.
func DefaultTracesFilePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Colors:             map[string]string{},
		Highlight:          "true",
		HighlightValues:    true,
		GutterIcon:         "true",
		Delay:              0,
		LargeFileThreshold: 512000,
		MaxSelections:      100,
		Scheduler: SchedulerConfig{
			MaxDelay:   10 * time.Second,
			BusyFactor: 4,
			RearmFloor: 10 * time.Millisecond,
		},
		Icons: IconsConfig{
			CacheDir: DefaultCacheDir(),
			Backdrop: string(icon.Light),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    DefaultHistoryPath(),
		},
		Tracing: tc,
		Flags:   map[string]bool{},
	}
}

// Validate checks the configuration for errors. Empty values use defaults.
func Validate(c Config) error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", c.Delay)
	}
	if c.LargeFileThreshold < 0 {
		return fmt.Errorf("large_file_threshold must not be negative, got %d", c.LargeFileThreshold)
	}
	if c.MaxSelections < 0 {
		return fmt.Errorf("max_selections must not be negative, got %d", c.MaxSelections)
	}
	if err := ValidateScheduler(c.Scheduler); err != nil {
		return err
	}
	switch icon.Backdrop(c.Icons.Backdrop) {
	case "", icon.Light, icon.Dark, icon.Auto:
	default:
		return fmt.Errorf("icons.backdrop must be \"light\", \"dark\" or \"auto\", got %q", c.Icons.Backdrop)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateScheduler checks scheduler tuning values.
func ValidateScheduler(s SchedulerConfig) error {
	if s.MaxDelay < 0 {
		return fmt.Errorf("scheduler.max_delay must not be negative, got %s", s.MaxDelay)
	}
	if s.BusyFactor < 0 {
		return fmt.Errorf("scheduler.busy_factor must not be negative, got %d", s.BusyFactor)
	}
	if s.RearmFloor < 0 {
		return fmt.Errorf("scheduler.rearm_floor must not be negative, got %s", s.RearmFloor)
	}
	if len(s.Delays) > 0 {
		if err := s.Delays.Validate(); err != nil {
			return fmt.Errorf("scheduler.delays: %w", err)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# hues configuration

# Tokens to highlight, mapped to #rgb, #rgba, #rrggbb or #rrggbbaa colors.
# Tokens match as whole words: "red" does not match "redness" or "x.red".
colors:
  red: "#f00"
  green: "#0f0"
  blue: "#00f"
  gold: "#ffd700"

# When to highlight: true, false, load-save or save-only
highlight: true

# Color the matched text itself
highlight_values: true

# Gutter icon: true, false, or a shape (circle, square, fill)
gutter_icon: true

# Minimum seconds between edits and a highlight pass. Only used when it is
# longer than the adaptive delay.
delay: 0

# Buffers larger than this (in characters) only scan the visible lines
large_file_threshold: 512000

# Above this many selections, edits trigger a full pass instead
max_selections: 100

# scheduler:
#   max_delay: 10s       # longest a burst of edits may postpone a pass
#   busy_factor: 4
#   rearm_floor: 10ms
#   delays:              # last pass duration -> delay, delay while busy
#     - {threshold: 50ms, delay: 50ms, busy: 100ms}
#     - {threshold: 200ms, delay: 200ms, busy: 500ms}

icons:
  backdrop: light        # light, dark or auto (follow the background)
  # cache_dir: ~/.cache/hues/icons

history:
  enabled: true
  # path: ~/.config/hues/history.db

# tracing:
#   enabled: true
#   exporter: file       # none, file, stdout or otlp
#   file_path: ~/.config/hues/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# flags:
#   dirty-line-scan: true
#   timing-history: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
