package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/config"
)

var modeCmd = &cobra.Command{
	Use:   "mode [on|off|load-save|save-only]",
	Short: "Show or persist the highlight mode",
	Long: `Without an argument, print the current highlight mode. With one, save
it to the config file.

Modes:
  on         highlight while typing
  off        never highlight
  load-save  highlight when a file is opened or saved
  save-only  highlight when a file is saved`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(config.ModeOn), string(config.ModeOff), string(config.ModeLoadSave), string(config.ModeSaveOnly)},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore(viper.GetViper())
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), store.Mode())
			return nil
		}

		mode, err := config.ParseMode(args[0])
		if err != nil {
			return err
		}
		if err := store.SetMode(mode); err != nil {
			return fmt.Errorf("saving highlight mode: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "highlight mode set to %s\n", mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
}
