package ui

import (
	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/ui/event"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	events.UI.Key(m.machine.ID(), keyMsg.String())
	m.clearInfo()

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m.cancel()
	case key.Matches(keyMsg, m.keys.Submit):
		return m.submit()
	case key.Matches(keyMsg, m.keys.Close):
		return m.handleEscapeKey()
	case key.Matches(keyMsg, m.keys.Choose):
		return m.handleEnterKey()
	case key.Matches(keyMsg, m.keys.Toggle):
		if !m.machine.IsOpen() {
			return m.toggleDropdown()
		}
		return m.chooseFocused()
	case key.Matches(keyMsg, m.keys.ToggleMenu):
		return m.toggleDropdown()
	case key.Matches(keyMsg, m.keys.ClearValues):
		return m.clearValues()
	case key.Matches(keyMsg, m.keys.Up):
		return m.moveFocus(func() bool { return m.tracker.Move(focus.Previous) })
	case key.Matches(keyMsg, m.keys.Down):
		return m.moveFocus(func() bool { return m.tracker.Move(focus.Next) })
	case key.Matches(keyMsg, m.keys.PageUp):
		return m.moveFocus(func() bool { return m.tracker.MovePage(focus.Previous) })
	case key.Matches(keyMsg, m.keys.PageDown):
		return m.moveFocus(func() bool { return m.tracker.MovePage(focus.Next) })
	case key.Matches(keyMsg, m.keys.Home):
		return m.moveFocus(m.tracker.MoveHome)
	case key.Matches(keyMsg, m.keys.End):
		return m.moveFocus(m.tracker.MoveEnd)
	}

	_, cmd := m.handleTextInput(keyMsg)
	return cmd
}

// moveFocus opens a closed dropdown, otherwise applies move and reports a
// scroll to the bottom of the list.
func (m *Model) moveFocus(move func() bool) tea.Cmd {
	if !m.machine.IsOpen() {
		return m.toggleDropdown()
	}
	if !move() {
		return nil
	}
	return m.checkBottom()
}

func (m *Model) handleEscapeKey() tea.Cmd {
	if m.machine.IsOpen() {
		return m.toggleDropdown()
	}
	return m.cancel()
}

// handleEnterKey chooses the focused option while the dropdown is open and
// confirms the selection when it is closed.
func (m *Model) handleEnterKey() tea.Cmd {
	if !m.machine.IsOpen() {
		return m.submit()
	}
	cmd := m.chooseFocused()
	if m.opts.SubmitOnSelect && !m.machine.Config().Multi && len(m.machine.Value()) > 0 && !m.machine.IsOpen() {
		return batch(cmd, m.submit())
	}
	return cmd
}

func (m *Model) chooseFocused() tea.Cmd {
	o, ok := m.tracker.Focused()
	if !ok {
		return nil
	}
	return m.chooseOption(o)
}

// chooseOption dispatches an option click.
func (m *Model) chooseOption(o option.Option) tea.Cmd {
	return m.dispatch(event.OptionClick, event.Payload{
		Option:   o,
		Value:    m.machine.Value(),
		IsOpen:   m.machine.IsOpen(),
		Selected: !m.machine.IsSelected(o.ID),
	}, m.defaultOptionClick)
}

// defaultOptionClick toggles the option and moves focus the way the focus
// policy prescribes for a toggle.
func (m *Model) defaultOptionClick(p event.Payload) (event.Payload, tea.Cmd) {
	cfg := m.machine.Config()
	becoming := !(cfg.Multi && m.machine.IsSelected(p.Option.ID))
	target := m.tracker.TargetAfterSelect(p.Option.ID, becoming, cfg.RemoveSelected)
	became, changed := m.machine.ChooseOption(p.Option)
	p.Selected = became
	p.Value = m.machine.Value()
	p.IsOpen = m.machine.IsOpen()
	if !changed {
		return p, nil
	}
	if target == "" {
		target = p.Option.ID
	}
	m.retarget(target)
	var cmd tea.Cmd
	if m.fetcher != nil {
		cmd = m.fetcher.SetSearchQuery(m.machine.InputValue())
	}
	return p, cmd
}

func (m *Model) toggleDropdown() tea.Cmd {
	return m.dispatch(event.DropdownToggle, event.Payload{
		Input:  m.machine.InputValue(),
		Value:  m.machine.Value(),
		IsOpen: m.machine.IsOpen(),
	}, m.defaultDropdownToggle)
}

// defaultDropdownToggle flips the dropdown. Opening focuses the first option
// and runs a deferred first fetch.
func (m *Model) defaultDropdownToggle(p event.Payload) (event.Payload, tea.Cmd) {
	m.machine.ToggleDropdownVisibility()
	p.IsOpen = m.machine.IsOpen()
	if !p.IsOpen {
		return p, nil
	}
	m.retarget("")
	if m.fetcher == nil {
		return p, nil
	}
	return p, m.fetcher.Opened()
}

// clearValues dispatches a clear-indicator click. Hosts hear about it even
// when nothing is selected.
func (m *Model) clearValues() tea.Cmd {
	return m.dispatch(event.ClearIndicatorClick, event.Payload{
		Input:  m.machine.InputValue(),
		Value:  m.machine.Value(),
		IsOpen: m.machine.IsOpen(),
	}, func(p event.Payload) (event.Payload, tea.Cmd) {
		m.machine.ClearAllValues()
		p.Value = nil
		return p, nil
	})
}

// clearValue removes one selected option, as when its chip is clicked.
func (m *Model) clearValue(o option.Option) tea.Cmd {
	return m.dispatch(event.ValueClear, event.Payload{
		Option: o,
		Value:  m.machine.Value(),
		IsOpen: m.machine.IsOpen(),
	}, func(p event.Payload) (event.Payload, tea.Cmd) {
		m.machine.ClearValue(p.Option.ID)
		p.Value = m.machine.Value()
		return p, nil
	})
}

// checkBottom reports a scroll to the last row. The default reveals the
// next client-side page or asks the fetch coordinator for one.
func (m *Model) checkBottom() tea.Cmd {
	if !m.machine.IsOpen() || m.tracker.TotalRows() == 0 || !m.tracker.AtBottom() {
		return nil
	}
	return m.dispatch(event.ScrollToBottom, event.Payload{
		Input:  m.machine.InputValue(),
		Value:  m.machine.Value(),
		IsOpen: true,
	}, func(p event.Payload) (event.Payload, tea.Cmd) {
		if m.fetcher != nil {
			return p, m.fetcher.ScrolledToBottom()
		}
		m.machine.LoadNextPage()
		return p, nil
	})
}
