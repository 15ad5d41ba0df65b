// Package app contains the viewer's root Bubble Tea model: a scrollable
// view of one file with its color tokens highlighted live.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/highlight"
	"github.com/zjrosen/hues/internal/keys"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/pubsub"
	"github.com/zjrosen/hues/internal/surface"
	"github.com/zjrosen/hues/internal/text"
	"github.com/zjrosen/hues/internal/watcher"
)

// Settings is the configuration the viewer reads and reloads.
type Settings interface {
	highlight.Settings
	Reload() error
}

// Config wires a Model. Highlighter, Settings, View and Styles are
// required; the watchers are optional.
type Config struct {
	Highlighter *highlight.Highlighter
	Settings    Settings
	View        *surface.Memory
	Styles      Styles
	Host        *Host
	// FileWatcher reports changes to the viewed file.
	FileWatcher *watcher.Watcher
	// ConfigWatcher reports changes to the configuration file.
	ConfigWatcher *watcher.Watcher
	Debug         bool
}

// fileLoadedMsg carries the viewed file's new content.
type fileLoadedMsg struct {
	content string
	err     error
}

// fileChangedMsg and configChangedMsg are sent by the watchers.
type (
	fileChangedMsg   struct{}
	configChangedMsg struct{}
)

// Model is the root application state.
type Model struct {
	cfg      Config
	keys     keys.KeyMap
	help     help.Model
	viewport viewport.Model
	ready    bool

	width  int
	height int

	status  string
	lastLog string
	last    highlight.PassEvent

	ctx          context.Context
	cancel       context.CancelFunc
	passListener *pubsub.ContinuousListener[highlight.PassEvent]
	logListener  *log.LogListener
	fileCh       <-chan struct{}
	configCh     <-chan struct{}
}

// New creates the model and reports the view as activated.
func New(cfg Config) Model {
	if cfg.Host == nil {
		cfg.Host = NewHost(0)
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		cfg:          cfg,
		keys:         keys.DefaultKeyMap(),
		help:         help.New(),
		ctx:          ctx,
		cancel:       cancel,
		passListener: pubsub.NewFilteredListener(ctx, cfg.Highlighter.Broker(), func(ev highlight.PassEvent) bool {
			return ev.View == cfg.View.ID()
		}),
	}
	if cfg.Debug {
		m.logListener = log.NewListener(ctx)
	}
	if cfg.FileWatcher != nil {
		ch, err := cfg.FileWatcher.Start()
		if err != nil {
			log.Warn(log.CatWatcher, "File watcher disabled", "error", err)
		} else {
			m.fileCh = ch
		}
	}
	if cfg.ConfigWatcher != nil {
		ch, err := cfg.ConfigWatcher.Start()
		if err != nil {
			log.Warn(log.CatWatcher, "Config watcher disabled", "error", err)
		} else {
			m.configCh = ch
		}
	}

	cfg.Highlighter.OnActivated(cfg.View)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.cfg.Host.Next(),
		m.passListener.Listen(),
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if m.fileCh != nil {
		cmds = append(cmds, waitFor(m.fileCh, fileChangedMsg{}))
	}
	if m.configCh != nil {
		cmds = append(cmds, waitFor(m.configCh, configChangedMsg{}))
	}
	return tea.Batch(cmds...)
}

func waitFor(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func readFile(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return fileLoadedMsg{content: string(data), err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.bodyHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.bodyHeight()
		}
		m.refresh()
		m.syncVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case runMsg:
		msg.fn()
		return m, m.cfg.Host.Next()

	case pubsub.Event[highlight.PassEvent]:
		if msg.Type == pubsub.HighlightedEvent {
			m.last = msg.Payload
		}
		m.refresh()
		return m, m.passListener.Listen()

	case log.LogEvent:
		if msg.Payload.Level >= log.LevelWarn {
			m.lastLog = msg.Payload.Message
		}
		return m, m.logListener.Listen()

	case fileChangedMsg:
		return m, tea.Batch(readFile(m.cfg.View.FileName()), waitFor(m.fileCh, fileChangedMsg{}))

	case fileLoadedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatWatcher, "Failed to reload file", msg.err, "path", m.cfg.View.FileName())
			m.status = "reload failed: " + msg.err.Error()
			return m, nil
		}
		m.applyContent(msg.content)
		return m, nil

	case configChangedMsg:
		if err := m.cfg.Settings.Reload(); err != nil {
			m.status = err.Error()
		} else {
			m.cfg.Highlighter.Reload()
			m.status = "config reloaded"
		}
		return m, waitFor(m.configCh, configChangedMsg{})
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ScrollUp(max(m.viewport.Height/2, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ScrollDown(max(m.viewport.Height/2, 1))
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	case key.Matches(msg, m.keys.Highlight):
		return m.run(highlight.ActionHighlight)
	case key.Matches(msg, m.keys.Reset):
		return m.run(highlight.ActionReset)
	case key.Matches(msg, m.keys.Toggle):
		if m.cfg.Settings.Mode() == config.ModeOff {
			return m.run(highlight.ActionOn)
		}
		return m.run(highlight.ActionOff)
	case key.Matches(msg, m.keys.LoadSave):
		return m.run(highlight.ActionLoadSave)
	case key.Matches(msg, m.keys.SaveOnly):
		return m.run(highlight.ActionSaveOnly)
	default:
		return m, nil
	}

	m.syncVisible()
	m.cfg.Highlighter.OnSelectionModified(m.cfg.View)
	return m, nil
}

// run performs a if the current mode allows it.
func (m Model) run(a highlight.Action) (tea.Model, tea.Cmd) {
	mode := m.cfg.Settings.Mode()
	if !a.Enabled(mode) {
		m.status = fmt.Sprintf("%s unavailable in mode %s", a, mode)
		return m, nil
	}
	if err := m.cfg.Highlighter.Run(m.ctx, m.cfg.View, a); err != nil {
		log.ErrorErr(log.CatUI, "Action failed", err, "action", a)
		m.status = err.Error()
		return m, nil
	}
	m.status = a.String()
	m.refresh()
	return m, nil
}

// applyContent edits the buffer hunk by hunk and reports the edit.
// Same-sized edits select the changed lines so only they are rescanned.
func (m *Model) applyContent(next string) {
	view := m.cfg.View
	prev := view.String()
	if prev == next {
		return
	}
	diffs := lineDiff(prev, next)
	lines, sameSize := linesOf(diffs, prev, next)
	applyDiff(view, diffs)
	if view.String() != next {
		log.Warn(log.CatWatcher, "Line diff did not reproduce file", "path", view.FileName())
		view.Set(next)
	}
	m.refresh()

	if sameSize {
		regions := make([]text.Region, 0, len(lines))
		for _, l := range lines {
			regions = append(regions, view.LineAt(l))
		}
		view.SetSelections(regions...)
		m.cfg.Highlighter.OnModified(view, "")
	} else {
		view.SetSelections(text.Point(0))
		m.cfg.Highlighter.OnModified(view, highlight.CommandPaste)
	}
	if m.cfg.Settings.Mode() != config.ModeOn {
		m.cfg.Highlighter.OnPostSave(view)
	}
	log.Debug(log.CatWatcher, "File reloaded", "path", view.FileName(), "changed", len(lines), "same_size", sameSize)
}

func (m *Model) bodyHeight() int {
	h := m.height - 1 - lipgloss.Height(m.help.View(m.keys))
	return max(h, 1)
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.viewport.Height = m.bodyHeight()
	m.syncVisible()
}

// refresh re-renders the buffer into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	_, gutter := m.cfg.Settings.GutterIcon()
	lines := Render(m.cfg.View, m.cfg.Styles, RenderOptions{
		Gutter:   gutter,
		Numbers:  true,
		Width:    m.width,
		TabWidth: 4,
	})
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

// syncVisible tells the view which lines are on screen.
func (m *Model) syncVisible() {
	if !m.ready {
		return
	}
	view := m.cfg.View
	top := m.viewport.YOffset
	bottom := min(top+m.viewport.Height, view.LineCount()) - 1
	if bottom < top {
		bottom = top
	}
	view.SetVisibleRegion(text.Region{Begin: view.LineAt(top).Begin, End: view.LineAt(bottom).End})
}

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	logStyle    = lipgloss.NewStyle().Faint(true)
)

// statusLine summarizes the file, mode and last pass.
func (m Model) statusLine() string {
	left := fmt.Sprintf(" %s  [%s]", m.cfg.View.FileName(), m.cfg.Settings.Mode())
	if m.last.PassID != "" {
		left += fmt.Sprintf("  %s pass: %d lines, %d matches, %d colors in %s",
			m.last.Mode, m.last.Lines, m.last.Matches, m.last.Groups, m.last.Duration.Round(time.Microsecond))
	}
	if m.status != "" {
		left += "  " + m.status
	}
	right := ""
	if m.lastLog != "" {
		right = logStyle.Render(m.lastLog) + " "
	}

	gap := m.width - runewidth.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		return statusStyle.Render(ansi.Truncate(left, max(m.width, 0), "…"))
	}
	return statusStyle.Render(left+strings.Repeat(" ", gap)) + right
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.statusLine(),
		m.help.View(m.keys),
	)
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.cancel()
	m.cfg.Host.Close()
	m.cfg.Highlighter.OnClose(m.cfg.View)
	if n := m.cfg.Highlighter.Broker().Dropped(); n > 0 {
		log.Warn(log.CatUI, "Viewer missed pass events", "dropped", n)
	}
	if m.cfg.FileWatcher != nil {
		if err := m.cfg.FileWatcher.Stop(); err != nil {
			return err
		}
	}
	if m.cfg.ConfigWatcher != nil {
		if err := m.cfg.ConfigWatcher.Stop(); err != nil {
			return err
		}
	}
	return nil
}
