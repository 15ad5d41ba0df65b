package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/history"
)

var historyForget bool

var historyCmd = &cobra.Command{
	Use:   "history FILE",
	Short: "Show the recorded highlight timing of a file",
	Long: `Print how long the last full highlight pass over FILE took and how many
passes were recorded. The timing picks the debounce delay the next time the
file is opened.

Examples:
  hues history theme.css
  hues history --forget theme.css`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore(viper.GetViper())
		if err != nil {
			return err
		}
		cfg := store.Config().History
		if !cfg.Enabled || cfg.Path == "" {
			return errors.New("timing history is disabled")
		}

		h, err := history.Open(cfg.Path)
		if err != nil {
			return err
		}
		defer func() { _ = h.Close() }()

		fileName, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving %s: %w", args[0], err)
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if historyForget {
			if err := h.Forget(ctx, fileName); err != nil {
				return err
			}
			fmt.Fprintf(out, "forgot %s\n", fileName)
			return nil
		}

		last, err := h.Last(ctx, fileName)
		if errors.Is(err, history.ErrNotFound) {
			fmt.Fprintf(out, "%s: no recorded pass\n", fileName)
			return nil
		}
		if err != nil {
			return err
		}
		passes, err := h.Passes(ctx, fileName)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: last pass %s, %d passes\n", fileName, last, passes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyForget, "forget", false, "delete the recorded timing")
}
