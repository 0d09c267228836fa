package ui

import (
	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.watcher != nil {
		return batch(cmd, waitForBackendEvent(m.watcher))
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.watcher = nil
	return nil
}

// applyBackendEvent swaps in reloaded options. Paged sources reload by
// refetching the current page instead.
func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	if evt.Err != nil {
		m.errMsg = evt.Err.Error()
		events.Load.Failed("watcher", evt.Err)
		return nil
	}
	if m.fetcher != nil {
		if !m.fetcher.Initialized() {
			return nil
		}
		return m.fetcher.Refresh()
	}
	m.errMsg = ""
	m.machine.ReplaceOptions(evt.Options)
	m.sync(m.tracker.FocusedID())
	if len(evt.Options) == 0 {
		m.setInfo("no options")
	}
	return nil
}
