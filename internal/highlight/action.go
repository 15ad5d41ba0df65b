package highlight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/surface"
)

// ErrUnknownAction is returned for an action name that is not recognized.
var ErrUnknownAction = errors.New("unknown action")

// Action is a user command.
type Action int

const (
	// ActionHighlight runs a full pass immediately.
	ActionHighlight Action = iota
	// ActionReset erases everything, forgets timings and highlights again.
	ActionReset
	// ActionOn highlights while typing.
	ActionOn
	// ActionOff stops highlighting and erases everything.
	ActionOff
	// ActionLoadSave highlights on open and save only.
	ActionLoadSave
	// ActionSaveOnly highlights on save only.
	ActionSaveOnly
)

var actionNames = map[Action]string{
	ActionHighlight: "highlight",
	ActionReset:     "reset",
	ActionOn:        "on",
	ActionOff:       "off",
	ActionLoadSave:  "load-save",
	ActionSaveOnly:  "save-only",
}

// Actions lists every action.
var Actions = []Action{ActionHighlight, ActionReset, ActionOn, ActionOff, ActionLoadSave, ActionSaveOnly}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction resolves a case-insensitive action name.
func ParseAction(name string) (Action, error) {
	lc := strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == lc {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Enabled reports whether the action changes anything under mode.
func (a Action) Enabled(mode config.Mode) bool {
	switch a {
	case ActionOn:
		return mode == config.ModeOff
	case ActionOff:
		return mode != config.ModeOff
	case ActionLoadSave:
		return mode != config.ModeLoadSave
	case ActionSaveOnly:
		return mode != config.ModeSaveOnly
	default:
		return true
	}
}

// Run performs a on view.
func (h *Highlighter) Run(ctx context.Context, view surface.View, a Action) error {
	log.Info(log.CatUI, "Running action", "action", a, "view", view.ID())
	switch a {
	case ActionHighlight:
		h.Pass(ctx, view, false)
	case ActionReset:
		h.reset(view)
	case ActionOn:
		if err := h.setMode(config.ModeOn); err != nil {
			return err
		}
		h.Queue(view, true, false)
	case ActionOff:
		return h.switchOff(config.ModeOff)
	case ActionLoadSave:
		return h.switchOff(config.ModeLoadSave)
	case ActionSaveOnly:
		return h.switchOff(config.ModeSaveOnly)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	return nil
}

func (h *Highlighter) reset(view surface.View) {
	h.EraseAll()
	h.mu.Lock()
	for _, st := range h.states {
		st.duration = DefaultDuration
	}
	h.mu.Unlock()
	h.Queue(view, true, false)
}

// switchOff persists a mode that does not highlight while typing and erases
// what is drawn.
func (h *Highlighter) switchOff(mode config.Mode) error {
	if err := h.setMode(mode); err != nil {
		return err
	}
	h.EraseAll()
	return nil
}

func (h *Highlighter) setMode(mode config.Mode) error {
	if err := h.cfg.Settings.SetMode(mode); err != nil {
		return fmt.Errorf("saving highlight mode: %w", err)
	}
	return nil
}

// Reload recompiles the color table after a configuration change and resets
// the active view.
func (h *Highlighter) Reload() {
	h.compile()
	log.Info(log.CatConfig, "Color table reloaded", "tokens", len(h.Matcher().Table()), "digest", h.Matcher().Digest())
	if view, ok := h.cfg.Workspace.Active(); ok {
		h.reset(view)
	}
}
