package ui

import (
	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/ui/event"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) updateCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputCursor, cmd = m.inputCursor.Update(msg)
	return cmd
}

// handleTextInput edits the search text. Edits that change the text are
// dispatched as an input change; the machine value stays authoritative, so
// an override that ignores the text leaves the input as it was.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	m.input.Sync(m.machine.InputValue())
	beforeText, beforeCaret := m.input.Text, m.input.CaretPos()

	switch msg.String() {
	case "ctrl+u":
		if !m.input.DeleteToStart() {
			return false, nil
		}
	case "ctrl+w":
		if !m.input.DeleteWordBackward() {
			return false, nil
		}
		events.Filter.WordBackspace(m.machine.ID(), m.input.Text)
	case "ctrl+a":
		m.input.MoveStart()
	case "ctrl+e":
		m.input.MoveEnd()
	case "alt+b":
		m.input.MoveWordBackward()
	case "alt+f":
		m.input.MoveWordForward()
	case "left":
		m.input.MoveRuneBackward()
	case "right":
		m.input.MoveRuneForward()
	case "backspace", "ctrl+h":
		if m.input.Text == "" {
			return true, m.removeLastValue()
		}
		m.input.DeleteRuneBackward()
	case "delete", "ctrl+d":
		m.input.DeleteRuneForward()
	default:
		switch msg.Type {
		case tea.KeyRunes:
			if msg.Alt {
				return false, nil
			}
			m.input.Insert(string(msg.Runes))
		case tea.KeySpace:
			m.input.Insert(" ")
		default:
			return false, nil
		}
	}

	if caret := m.input.CaretPos(); caret != beforeCaret {
		m.cursorDirty = true
		events.Filter.Cursor(m.machine.ID(), caret)
	}
	if m.input.Text == beforeText {
		return true, nil
	}
	m.errMsg = ""
	m.forceClearInfo()
	return true, m.dispatch(event.InputChange, event.Payload{
		Input:  m.input.Text,
		Value:  m.machine.Value(),
		IsOpen: m.machine.IsOpen(),
	}, m.defaultInputChange)
}

// defaultInputChange stores and filters the text, or hands the query to the
// fetch coordinator.
func (m *Model) defaultInputChange(p event.Payload) (event.Payload, tea.Cmd) {
	wasOpen := m.machine.IsOpen()
	cmds := []tea.Cmd{m.machine.InputChanged(p.Input)}
	if m.fetcher != nil {
		cmds = append(cmds, m.fetcher.SetSearchQuery(p.Input))
		if !wasOpen {
			cmds = append(cmds, m.fetcher.Opened())
		}
	}
	m.pendingMatch = true
	p.IsOpen = m.machine.IsOpen()
	p.Value = m.machine.Value()
	return p, batch(cmds...)
}

// removeLastValue handles backspace on an empty input.
func (m *Model) removeLastValue() tea.Cmd {
	value := m.machine.Value()
	if len(value) == 0 {
		return nil
	}
	return m.dispatch(event.ValueClear, event.Payload{
		Option: value[len(value)-1],
		Value:  value,
		IsOpen: m.machine.IsOpen(),
	}, func(p event.Payload) (event.Payload, tea.Cmd) {
		m.machine.RemoveLastValue()
		p.Value = m.machine.Value()
		return p, nil
	})
}

// inputChar is the rune under the caret, or a space at the end.
func (m *Model) inputChar() string {
	runes := []rune(m.input.Text)
	if caret := m.input.CaretPos(); caret < len(runes) {
		return string(runes[caret])
	}
	return " "
}
