package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/icon"
	"github.com/zjrosen/hues/internal/tracing"
)

var (
	iconShape    string
	iconBackdrop string
	iconDir      string
)

var iconCmd = &cobra.Command{
	Use:   "icon COLOR...",
	Short: "Synthesize gutter icons into the icon cache",
	Long: `Write the gutter icon of each color into the icon cache and print its
path. Icons already in the cache are reused.

Examples:
  hues icon '#ff0000'
  hues icon --shape square --backdrop dark '#0af' '#ffd700'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := initLogging(false)
		if err != nil {
			return err
		}
		defer cleanup()

		store, err := config.NewStore(viper.GetViper())
		if err != nil {
			return err
		}
		cfg := store.Config()

		dir := iconDir
		if dir == "" {
			dir = cfg.Icons.CacheDir
		}
		backdrop := iconBackdrop
		if backdrop == "" {
			backdrop = cfg.Icons.Backdrop
		}
		shape := icon.ParseShape(iconShape)
		if iconShape == "" {
			if s, ok := store.GutterIcon(); ok {
				shape = s
			}
		}

		synth := icon.NewSynthesizer(dir, icon.WithTracer(tracing.Noop().Tracer()))
		// auto has no view background to consult here
		resolved := icon.ParseBackdrop(backdrop).For("")

		for _, c := range args {
			path, err := synth.Path(cmd.Context(), c, shape, resolved)
			if err != nil {
				return fmt.Errorf("synthesizing icon for %s: %w", c, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(iconCmd)

	iconCmd.Flags().StringVar(&iconShape, "shape", "", "icon shape: circle, square or fill (default from gutter_icon)")
	iconCmd.Flags().StringVar(&iconBackdrop, "backdrop", "", "backdrop: light or dark (default from icons.backdrop)")
	iconCmd.Flags().StringVar(&iconDir, "dir", "", "output directory (default from icons.cache_dir)")
}
