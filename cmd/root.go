package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
const localConfigPath = ".hues/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "hues [file]",
	Short: "Highlight color tokens in text files",
	Long: `hues finds color tokens (names from your color table and hex specs)
in text files and draws them in their own color, with optional gutter icons.

Running hues with a file opens the interactive viewer, like 'hues view'.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runView(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .hues/config.yaml, then ~/.config/hues/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by HUES_DEBUG)")
}

func initConfig() {
	if err := setupConfig(viper.GetViper(), cfgFile, localConfigPath, config.DefaultConfigDir()); err != nil {
		fmt.Fprintf(os.Stderr, "hues: %v\n", err)
	}
}

// setupConfig points v at a config file and reads it.
// Lookup order:
//  1. explicit (the --config flag), created with defaults when missing
//  2. local (.hues/config.yaml in the current directory)
//  3. config.yaml in userDir, created with defaults when missing
//
// When no file can be written v keeps the built-in defaults.
func setupConfig(v *viper.Viper, explicit, local, userDir string) error {
	switch {
	case explicit != "":
		v.SetConfigFile(explicit)
	case fileExists(local):
		v.SetConfigFile(local)
	case userDir != "":
		v.AddConfigPath(userDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	default:
		return nil
	}

	err := v.ReadInConfig()
	if err == nil {
		log.Debug(log.CatConfig, "Config loaded", "path", v.ConfigFileUsed())
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	defaultPath := explicit
	if defaultPath == "" {
		defaultPath = filepath.Join(userDir, "config.yaml")
	}
	if writeErr := config.WriteDefaultConfig(defaultPath); writeErr != nil {
		// Continue with defaults (no config file)
		log.Warn(log.CatConfig, "Could not write default config", "path", defaultPath, "error", writeErr)
		return nil
	}
	v.SetConfigFile(defaultPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading default config: %w", err)
	}
	log.Info(log.CatConfig, "Wrote default config", "path", defaultPath)
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// initLogging enables the debug log when --debug or HUES_DEBUG is set.
// HUES_LOG names the file and HUES_LOG_LEVEL the minimum level. The TUI logs
// through tea.LogToFile so entries never reach the screen.
func initLogging(tui bool) (func(), error) {
	if os.Getenv("HUES_DEBUG") == "" && !debugFlag {
		return func() {}, nil
	}
	logPath := os.Getenv("HUES_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	level, err := log.ParseLevel(os.Getenv("HUES_LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("HUES_LOG_LEVEL: %w", err)
	}
	opts := log.Options{MinLevel: level}
	if tui {
		opts.Tea = "hues"
	}
	cleanup, err := log.Init(logPath, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
