package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/colors"
	"github.com/zjrosen/hues/internal/config"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize SPEC...",
	Short: "Print the canonical #RRGGBBAA form of colors",
	Long: `Print the canonical #RRGGBBAA form of each argument.

Arguments starting with '#' are parsed as hex specs. Anything else is looked
up in the color table of the config file.

Examples:
  hues normalize '#f00' '#00ff0080'
  hues normalize red`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := map[string]string{}
		if needsTable(args) {
			store, err := config.NewStore(viper.GetViper())
			if err != nil {
				return err
			}
			table = store.Colors()
		}

		var failed []string
		for _, arg := range args {
			c, ok := resolveSpec(table, arg)
			if !ok {
				failed = append(failed, arg)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\tinvalid color\n", arg)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, c)
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d colors invalid: %s", len(failed), len(args), strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func needsTable(args []string) bool {
	for _, a := range args {
		if !strings.HasPrefix(a, "#") {
			return true
		}
	}
	return false
}

// resolveSpec normalizes a hex spec or resolves a table token.
func resolveSpec(table map[string]string, arg string) (string, bool) {
	if strings.HasPrefix(arg, "#") {
		return colors.Normalize(arg)
	}
	return colors.Resolve(table, arg)
}
