package ui

import (
	"strings"
	"time"

	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/ui/render"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// span is a half-open column range on one line.
type span struct {
	start, end int
}

func (s span) contains(x int) bool { return x >= s.start && x < s.end }

// layout records where the last View placed clickable parts.
type layout struct {
	chipsRow   int
	chips      []span
	chipIDs    []string
	controlRow int
	clear      span
	listTop    int
	listRows   int
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]string, 0, 8)
	lay := layout{chipsRow: -1}

	if chips := m.chipsLine(&lay); chips != "" {
		lay.chipsRow = len(lines)
		lines = append(lines, chips)
	}
	lay.controlRow = len(lines)
	lines = append(lines, m.controlLine(&lay))

	if m.machine.IsOpen() {
		rows := m.listRows()
		lay.listTop = len(lines)
		lay.listRows = len(rows)
		list := m.renderers.List.RenderList(render.ListProps{
			Rows:    rows,
			Empty:   m.emptyMessage(),
			Loading: m.loading(),
			Width:   m.width,
			Height:  m.tracker.Visible,
			Offset:  m.tracker.Offset,
			Total:   m.tracker.TotalRows(),
			Inner:   render.InnerProps{Key: m.machine.ID()},
		})
		if list != "" {
			lines = append(lines, list)
		}
	}

	if status := m.statusLine(); status != "" {
		lines = append(lines, status)
	}
	if m.opts.ShowFooter {
		m.help.Width = m.width
		lines = append(lines, m.help.View(m.keys))
	}
	m.layout = lay
	return strings.Join(lines, "\n")
}

// chipsLine renders the selected options of a multi-value widget.
func (m *Model) chipsLine(lay *layout) string {
	if !m.machine.Config().Multi {
		return ""
	}
	value := m.machine.Value()
	if len(value) == 0 {
		return ""
	}
	labelKey := m.machine.Config().LabelKey
	var b strings.Builder
	col := 0
	for i, o := range value {
		if i > 0 {
			b.WriteString(" ")
			col++
		}
		chip := m.renderers.MultiValue.RenderMultiValue(render.MultiValueProps{
			Option: o,
			Label:  o.Label(labelKey),
			Index:  i,
			Inner:  render.InnerProps{Key: o.ID, Ref: i},
		})
		w := ansi.StringWidth(chip)
		lay.chips = append(lay.chips, span{start: col, end: col + w})
		lay.chipIDs = append(lay.chipIDs, o.ID)
		b.WriteString(chip)
		col += w
	}
	return b.String()
}

// controlLine renders the input, or the single value when idle, followed by
// the clear and dropdown indicators.
func (m *Model) controlLine(lay *layout) string {
	open := m.machine.IsOpen()
	clearView := m.renderers.ClearIndicator.RenderClearIndicator(render.ClearIndicatorProps{
		HasValue: len(m.machine.Value()) > 0,
	})
	indicator := m.renderers.DropdownIndicator.RenderDropdownIndicator(render.DropdownIndicatorProps{
		IsOpen:  open,
		Loading: m.loading(),
	})
	right := indicator
	if clearView != "" {
		right = clearView + " " + indicator
	}
	leftWidth := 0
	if m.width > 0 {
		leftWidth = m.width - ansi.StringWidth(right) - 1
		if leftWidth < 1 {
			leftWidth = 1
		}
	}

	text := m.machine.InputValue()
	value := m.machine.Value()
	var left string
	if text == "" && !open && !m.machine.Config().Multi && len(value) > 0 {
		prompt := m.renderers.Input.RenderInput(render.InputProps{Prompt: m.opts.Prompt})
		width := 0
		if leftWidth > 0 {
			width = leftWidth - ansi.StringWidth(prompt)
		}
		left = prompt + m.renderers.SingleValue.RenderSingleValue(render.SingleValueProps{
			Option: value[0],
			Label:  value[0].Label(m.machine.Config().LabelKey),
			Width:  width,
			Inner:  render.InnerProps{Key: value[0].ID},
		})
	} else {
		m.inputCursor.SetChar(m.inputChar())
		left = m.renderers.Input.RenderInput(render.InputProps{
			Text:        text,
			Caret:       m.input.CaretPos(),
			CaretView:   m.inputCursor.View(),
			Placeholder: m.opts.Placeholder,
			Prompt:      m.opts.Prompt,
			Active:      open || text != "",
			Width:       leftWidth,
		})
	}

	start := ansi.StringWidth(left) + 1
	lay.clear = span{}
	if clearView != "" {
		lay.clear = span{start: start, end: start + ansi.StringWidth(clearView)}
	}
	return left + " " + right
}

// listRows renders the rows inside the viewport, category headers included.
func (m *Model) listRows() []string {
	view := m.tracker.View()
	first := m.tracker.Offset
	last := m.tracker.TotalRows()
	if m.tracker.Visible > 0 && first+m.tracker.Visible < last {
		last = first + m.tracker.Visible
	}
	rows := make([]string, 0, last-first)
	row := 0
	add := func(category string, list []option.Option) {
		for _, o := range list {
			if row >= first && row < last {
				rows = append(rows, m.optionRow(o, category, row))
			}
			row++
		}
	}
	if !view.Categorized {
		add("", view.Flat)
		return rows
	}
	if view.Groups == nil {
		return rows
	}
	for _, category := range view.Groups.Categories() {
		list, _ := view.Groups.Get(category)
		if len(list) == 0 {
			continue
		}
		if row >= first && row < last {
			rows = append(rows, m.renderers.CategoryHeader.RenderCategoryHeader(render.CategoryHeaderProps{
				Category: category,
				Count:    len(list),
				Width:    m.width,
				Inner:    render.InnerProps{Key: "category:" + category, Ref: row},
			}))
		}
		row++
		add(category, list)
	}
	return rows
}

func (m *Model) optionRow(o option.Option, category string, row int) string {
	cfg := m.machine.Config()
	return m.renderers.Option.RenderOption(render.OptionProps{
		Option:   o,
		Label:    o.Label(cfg.LabelKey),
		Query:    m.machine.InputValue(),
		Category: category,
		Focused:  o.ID == m.tracker.FocusedID(),
		Selected: m.machine.IsSelected(o.ID),
		Disabled: m.machine.IsDisabled(o),
		Multi:    cfg.Multi,
		Width:    m.width,
		Inner: render.InnerProps{
			Key:  o.ID,
			Ref:  row,
			Data: map[string]string{"category": category},
		},
	})
}

func (m *Model) emptyMessage() string {
	if m.machine.InputValue() != "" {
		return "no matches"
	}
	return "no options"
}

func (m *Model) statusLine() string {
	if m.errMsg != "" {
		return m.styles.Error.Render(m.errMsg)
	}
	if info := m.currentInfo(); info != "" {
		return m.styles.Info.Render(info)
	}
	return ""
}

func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	lay := m.layout
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		if m.tracker.ScrollBy(-1) {
			events.UI.Mouse(m.machine.ID(), "wheel-up", m.tracker.Offset)
		}
		return nil
	case tea.MouseButtonWheelDown:
		if !m.tracker.ScrollBy(1) {
			return nil
		}
		events.UI.Mouse(m.machine.ID(), "wheel-down", m.tracker.Offset)
		return m.checkBottom()
	}

	inList := m.machine.IsOpen() && ev.Y >= lay.listTop && ev.Y < lay.listTop+lay.listRows
	row := ev.Y - lay.listTop + m.tracker.Offset
	if ev.Action == tea.MouseActionMotion {
		if inList {
			if id, ok := m.tracker.OptionAtRow(row); ok {
				m.tracker.Hover(id)
			}
		}
		return nil
	}
	if ev.Action != tea.MouseActionPress || ev.Button != tea.MouseButtonLeft {
		return nil
	}

	switch {
	case inList:
		events.UI.Mouse(m.machine.ID(), "click-option", row)
		id, ok := m.tracker.OptionAtRow(row)
		if !ok {
			return nil
		}
		o, found := m.tracker.View().Find(id)
		if !found {
			return nil
		}
		return m.chooseOption(o)
	case ev.Y == lay.controlRow && lay.clear.contains(ev.X):
		events.UI.Mouse(m.machine.ID(), "click-clear", -1)
		return m.clearValues()
	case ev.Y == lay.controlRow:
		events.UI.Mouse(m.machine.ID(), "click-control", -1)
		return m.toggleDropdown()
	case ev.Y == lay.chipsRow:
		for i, s := range lay.chips {
			if !s.contains(ev.X) {
				continue
			}
			events.UI.Mouse(m.machine.ID(), "click-value", i)
			for _, o := range m.machine.Value() {
				if o.ID == lay.chipIDs[i] {
					return m.clearValue(o)
				}
			}
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	events.UI.Resize(m.machine.ID(), m.width, m.height)
	m.tracker.SetViewport(m.visibleRows())
	return nil
}

// visibleRows is the number of list rows that fit below the control line.
func (m *Model) visibleRows() int {
	if m.height <= 0 {
		return defaultListHeight
	}
	used := 2 // control line + status
	if m.machine.Config().Multi && len(m.machine.Value()) > 0 {
		used++
	}
	if m.opts.ShowFooter {
		used++
	}
	if m.loading() {
		used++
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) clearInfo() {
	if m.infoMsg == "" {
		return
	}
	if !m.infoExpire.IsZero() && time.Now().Before(m.infoExpire) {
		return
	}
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}
