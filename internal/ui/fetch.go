package ui

import (
	"github.com/atomicstack/popup-select/internal/fetch"
	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/timer"
	tea "github.com/charmbracelet/bubbletea"
)

// handleTimerMsg routes a debounce timer to the machine or the fetch
// coordinator that scheduled it.
func (m *Model) handleTimerMsg(msg tea.Msg) tea.Cmd {
	fired, ok := msg.(timer.FiredMsg)
	if !ok {
		return nil
	}
	if cmd, handled := m.machine.HandleTimer(fired); handled {
		m.sync(m.tracker.FocusedID())
		return cmd
	}
	if m.fetcher == nil {
		return nil
	}
	cmd, handled := m.fetcher.HandleTimer(fired)
	if !handled {
		return nil
	}
	return cmd
}

func (m *Model) handleFetchResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(fetch.ResultMsg)
	if !ok || m.fetcher == nil {
		return nil
	}
	out, owned := m.fetcher.HandleResult(result)
	if !owned || out.Discarded {
		return nil
	}
	if out.Err != nil {
		m.errMsg = out.Err.Error()
		events.Load.Failed("fetch", out.Err)
		m.sync(m.tracker.FocusedID())
		return nil
	}
	m.errMsg = ""
	if !out.Applied {
		return nil
	}
	if out.ResetScroll {
		m.sync("")
		return nil
	}
	m.sync(m.tracker.FocusedID())
	return nil
}
