package highlight

import (
	"errors"
	"time"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/delay"
	"github.com/zjrosen/hues/internal/flags"
	"github.com/zjrosen/hues/internal/history"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/surface"
)

// Commands reported as the last command by OnModified.
const (
	CommandRevert = "revert"
	CommandPaste  = "paste"
)

// Queue schedules a pass for view. Preemptive requests run as soon as the
// scheduler allows; others wait the delay picked from the view's last full
// pass duration. The pass is skipped if, by the time it runs, the view was
// closed, is loading, or now holds a different file.
func (h *Highlighter) Queue(view surface.View, preemptive, selection bool) {
	var d, busy time.Duration
	if !preemptive {
		prev, ok := h.Duration(view.ID())
		if !ok {
			prev = DefaultDuration
		}
		policy := delay.Policy{Table: h.cfg.Delays, Min: h.cfg.Settings.MinDelay()}
		d, busy = policy.Delays(prev)
	}
	id := view.ID()
	fileName := view.FileName()
	h.cfg.Scheduler.Enqueue(id, func() { h.update(id, fileName, selection) }, d, busy, preemptive)
	log.Debug(log.CatScheduler, "Queued pass", "view", id, "preemptive", preemptive, "selection", selection, "delay", d, "busy", busy)
}

func (h *Highlighter) update(id surface.ViewID, fileName string, selection bool) {
	view, ok := h.cfg.Workspace.View(id)
	if !ok {
		log.Debug(log.CatScheduler, "Skipping pass for closed view", "view", id)
		return
	}
	if view.IsLoading() {
		log.Debug(log.CatScheduler, "Skipping pass for loading view", "view", id)
		return
	}
	if view.FileName() != fileName {
		log.Debug(log.CatScheduler, "Skipping pass for renamed view", "view", id, "queued", fileName, "now", view.FileName())
		return
	}
	h.Pass(h.ctx, view, selection)
}

// OnModified reacts to an edit. lastCommand is the command that caused it.
func (h *Highlighter) OnModified(view surface.View, lastCommand string) {
	if h.cfg.Settings.Mode() != config.ModeOn {
		return
	}
	switch lastCommand {
	case CommandRevert:
		h.EraseAll()
		h.Queue(view, true, false)
	case CommandPaste:
		h.Queue(view, false, false)
	default:
		h.Queue(view, true, !h.cfg.Flags.Enabled(flags.FlagFullRescan))
	}
}

// OnClose forgets view.
func (h *Highlighter) OnClose(view surface.View) {
	h.mu.Lock()
	delete(h.states, view.ID())
	h.mu.Unlock()
}

// OnActivated highlights a saved view the first time it is activated.
func (h *Highlighter) OnActivated(view surface.View) {
	fileName := view.FileName()
	if fileName == "" {
		return
	}

	h.mu.Lock()
	_, seen := h.states[view.ID()]
	if !seen {
		h.state(view.ID()).duration = h.recalled(fileName)
	}
	h.mu.Unlock()
	if seen {
		return
	}

	switch h.cfg.Settings.Mode() {
	case config.ModeOff, config.ModeSaveOnly:
		return
	}
	h.Queue(view, true, false)
}

// recalled returns the persisted duration for fileName, or DefaultDuration.
func (h *Highlighter) recalled(fileName string) time.Duration {
	if h.cfg.Timings == nil {
		return DefaultDuration
	}
	d, err := h.cfg.Timings.Last(h.ctx, fileName)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			log.ErrorErr(log.CatDB, "Failed to read pass timing", err, "file", fileName)
		}
		return DefaultDuration
	}
	return d
}

// OnPostSave highlights view after it was saved.
func (h *Highlighter) OnPostSave(view surface.View) {
	if h.cfg.Settings.Mode() == config.ModeOff {
		return
	}
	h.Queue(view, true, false)
}

// OnSelectionModified postpones a pending pass so cursor movement stays
// responsive.
func (h *Highlighter) OnSelectionModified(view surface.View) {
	if h.cfg.Flags.Enabled(flags.FlagNoMoveDefer) {
		return
	}
	h.cfg.Scheduler.Delay(MoveDefer)
}
