package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/app"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/surface"
	"github.com/zjrosen/hues/internal/watcher"
)

var viewNoWatch bool

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Open FILE in the interactive viewer",
	Long: `Open FILE in a scrollable viewer with its color tokens highlighted.

The file and the config file are watched: edits made in another editor are
rescanned through the same debounce logic used while typing, and config
changes recompile the color table.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().BoolVar(&viewNoWatch, "no-watch", false, "do not reload the file when it changes on disk")
}

func runView(_ *cobra.Command, args []string) error {
	cleanup, err := initLogging(true)
	if err != nil {
		return err
	}
	defer cleanup()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	svc, err := newServices(viper.GetViper())
	if err != nil {
		return err
	}
	defer svc.Close()

	host := app.NewHost(0)
	sched := svc.newScheduler(host)
	hl := svc.newHighlighter(sched)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	view := surface.NewMemory(svc.workspace.NextID(), path, string(data))
	svc.workspace.Open(view)

	cfg := app.Config{
		Highlighter: hl,
		Settings:    svc.store,
		View:        view,
		Styles:      svc.palette,
		Host:        host,
		Debug:       debugFlag || os.Getenv("HUES_DEBUG") != "",
	}
	if !viewNoWatch {
		cfg.FileWatcher = newWatcher(path)
	}
	if configPath := svc.store.Path(); configPath != "" {
		cfg.ConfigWatcher = newWatcher(configPath)
	}

	model := app.New(cfg)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// newWatcher returns nil when path cannot be watched; the viewer works
// without auto-reload.
func newWatcher(path string) *watcher.Watcher {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.Warn(log.CatWatcher, "Watcher unavailable", "path", path, "error", err)
		return nil
	}
	return w
}
