package render

import (
	"fmt"
	"strings"

	"github.com/atomicstack/popup-select/internal/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
)

const (
	optionIndicator = "▌"
	selectedMark    = "✓"
	openIndicator   = "▴"
	closedIndicator = "▾"
	loadingGlyph    = "…"
	clearGlyph      = "✕"
)

// Defaults draws every slot with lipgloss styles.
type Defaults struct {
	Styles *theme.Styles
}

// Default returns a registry with the built-in renderer in every slot.
func Default(styles *theme.Styles) Registry {
	if styles == nil {
		styles = theme.Default()
	}
	d := &Defaults{Styles: styles}
	return Registry{
		Option:            d,
		SingleValue:       d,
		MultiValue:        d,
		Input:             d,
		DropdownIndicator: d,
		ClearIndicator:    d,
		List:              d,
		CategoryHeader:    d,
	}
}

func (d *Defaults) RenderOption(p OptionProps) string {
	st := d.Styles
	lineStyle, indicatorStyle := st.Option, st.OptionIndicator
	if p.Focused {
		lineStyle, indicatorStyle = st.FocusedOption, st.FocusedOptionIndicator
	}
	if p.Disabled {
		lineStyle = st.DisabledOption
	}
	if p.Inner.Style != nil {
		lineStyle = p.Inner.Style
	}

	mark := ""
	if p.Multi {
		mark = "[ ] "
		if p.Selected {
			mark = "[" + styled(st.SelectedMark, selectedMark) + "] "
		}
	} else if p.Selected {
		mark = styled(st.SelectedMark, selectedMark) + " "
	}

	label := highlight(p.Label, p.Query, st.Match, lineStyle)
	text := styled(indicatorStyle, optionIndicator) + styled(lineStyle, " ") + mark + label
	return fit(text, p.Width, lineStyle)
}

func (d *Defaults) RenderSingleValue(p SingleValueProps) string {
	return fit(styled(d.Styles.SingleValue, p.Label), p.Width, nil)
}

func (d *Defaults) RenderMultiValue(p MultiValueProps) string {
	return styled(d.Styles.MultiValue, p.Label+" "+clearGlyph)
}

func (d *Defaults) RenderInput(p InputProps) string {
	st := d.Styles
	prompt := styled(st.InputPrompt, p.Prompt)
	if p.Text == "" && !p.Active {
		return fit(prompt+styled(st.Placeholder, p.Placeholder), p.Width, nil)
	}
	runes := []rune(p.Text)
	caret := p.Caret
	if caret < 0 {
		caret = 0
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	before := styled(st.Input, string(runes[:caret]))
	if !p.Active {
		return fit(prompt+before+styled(st.Input, string(runes[caret:])), p.Width, nil)
	}
	cursorView := p.CaretView
	after := ""
	if caret < len(runes) {
		after = styled(st.Input, string(runes[caret+1:]))
		if cursorView == "" {
			cursorView = styled(st.Cursor, string(runes[caret]))
		}
	} else if cursorView == "" {
		cursorView = styled(st.Cursor, " ")
	}
	return fit(prompt+before+cursorView+after, p.Width, nil)
}

func (d *Defaults) RenderDropdownIndicator(p DropdownIndicatorProps) string {
	glyph := closedIndicator
	switch {
	case p.Loading:
		return styled(d.Styles.Loading, loadingGlyph)
	case p.IsOpen:
		glyph = openIndicator
	}
	return styled(d.Styles.Indicator, glyph)
}

func (d *Defaults) RenderClearIndicator(p ClearIndicatorProps) string {
	if !p.HasValue {
		return ""
	}
	return styled(d.Styles.ClearIndicator, clearGlyph)
}

func (d *Defaults) RenderList(p ListProps) string {
	if len(p.Rows) == 0 {
		msg := p.Empty
		if p.Loading {
			return fit(styled(d.Styles.Loading, "loading…"), p.Width, nil)
		}
		if msg == "" {
			msg = "(no options)"
		}
		return fit(styled(d.Styles.Info, msg), p.Width, nil)
	}
	rows := p.Rows
	if p.Height > 0 && len(rows) > p.Height {
		rows = rows[:p.Height]
	}
	out := strings.Join(rows, "\n")
	if p.Loading {
		out += "\n" + fit(styled(d.Styles.Loading, "loading…"), p.Width, nil)
	}
	return out
}

func (d *Defaults) RenderCategoryHeader(p CategoryHeaderProps) string {
	text := p.Category
	if p.Count > 0 {
		text = fmt.Sprintf("%s (%d)", p.Category, p.Count)
	}
	return fit(styled(d.Styles.CategoryHeader, text), p.Width, nil)
}

func styled(style *lipgloss.Style, text string) string {
	if style == nil || text == "" {
		return text
	}
	return style.Render(text)
}

// highlight styles the runes of label matched by query.
func highlight(label, query string, match, base *lipgloss.Style) string {
	query = strings.TrimSpace(query)
	if query == "" || match == nil {
		return styled(base, label)
	}
	matches := fuzzy.Find(strings.ToLower(query), []string{strings.ToLower(label)})
	if len(matches) == 0 {
		return styled(base, label)
	}
	hit := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, idx := range matches[0].MatchedIndexes {
		hit[idx] = true
	}
	var b strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(styled(base, run.String()))
			run.Reset()
		}
	}
	for i, r := range label {
		if hit[i] {
			flush()
			b.WriteString(styled(match, string(r)))
			continue
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

// fit pads text to width with the pad style and truncates anything wider.
func fit(text string, width int, pad *lipgloss.Style) string {
	if width <= 0 {
		return text
	}
	w := ansi.StringWidth(text)
	if w > width {
		return truncate.StringWithTail(text, uint(width), "…")
	}
	if w < width {
		text += styled(pad, strings.Repeat(" ", width-w))
	}
	return text
}
