package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/app"
	"github.com/zjrosen/hues/internal/colors"
	"github.com/zjrosen/hues/internal/highlight"
	"github.com/zjrosen/hues/internal/surface"
	"github.com/zjrosen/hues/internal/text"
)

var (
	scanList       bool
	scanColor      string
	scanBackground string
	scanNumbers    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Highlight a file once and print the result",
	Long: `Run a single full highlight pass over FILE and print it with every
color token drawn in its color.

Examples:
  hues scan theme.css
  hues scan --list theme.css              # one line per match
  hues scan --background '#fff' notes.md  # adjust colors equal to the background
  hues scan --color always theme.css | less -R`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVarP(&scanList, "list", "l", false, "print one line per match instead of the file")
	scanCmd.Flags().StringVar(&scanColor, "color", "auto", "when to color the output: auto, always or never")
	scanCmd.Flags().StringVar(&scanBackground, "background", "", "background color of the view, e.g. #282c34")
	scanCmd.Flags().BoolVarP(&scanNumbers, "numbers", "n", true, "prefix lines with their number")
}

func runScan(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging(false)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := applyColorMode(scanColor); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	svc, err := newServices(viper.GetViper())
	if err != nil {
		return err
	}
	defer svc.Close()

	loop := surface.NewLoop(0)
	defer loop.Stop()
	hl := svc.newHighlighter(svc.newScheduler(loop))

	fileName, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	view := surface.NewMemory(svc.workspace.NextID(), fileName, string(data))
	if scanBackground != "" {
		bg, ok := colors.Normalize(scanBackground)
		if !ok {
			return fmt.Errorf("invalid background color %q", scanBackground)
		}
		view.SetBackground(bg)
	}
	svc.workspace.Open(view)

	ev := hl.Pass(cmd.Context(), view, false)

	out := cmd.OutOrStdout()
	if scanList {
		printMatches(out, args[0], view, svc.palette)
	} else {
		_, gutter := svc.store.GutterIcon()
		for _, line := range app.Render(view, svc.palette, app.RenderOptions{Gutter: gutter, Numbers: scanNumbers}) {
			fmt.Fprintln(out, line)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d matches, %d colors, %s\n", ev.Matches, ev.Groups, ev.Duration)
	return nil
}

// applyColorMode forces or disables colored output.
func applyColorMode(mode string) error {
	switch mode {
	case "auto", "":
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", mode)
	}
	return nil
}

type match struct {
	region text.Region
	color  string
}

// printMatches writes FILE:LINE:COL, the token and its color for every
// drawn value, in buffer order.
func printMatches(w io.Writer, name string, view *surface.Memory, styles app.Styles) {
	var matches []match
	for _, o := range view.Overlays() {
		if strings.HasSuffix(o.Key, highlight.IconSuffix) {
			continue
		}
		c, ok := styles.Color(o.Style)
		if !ok {
			continue
		}
		for _, r := range o.Regions {
			matches = append(matches, match{region: r, color: c})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].region.Begin < matches[j].region.Begin })

	for _, m := range matches {
		line := view.RowOf(m.region.Begin) + 1
		col := m.region.Begin - view.Line(m.region.Begin).Begin + 1
		token := view.Substr(m.region)
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n", name, line, col, app.Swatch(m.color).Render(token), m.color)
	}
}
