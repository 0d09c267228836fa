package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared by the default renderers.
type Styles struct {
	Loading                *lipgloss.Style
	Option                 *lipgloss.Style
	OptionIndicator        *lipgloss.Style
	FocusedOption          *lipgloss.Style
	FocusedOptionIndicator *lipgloss.Style
	SelectedMark           *lipgloss.Style
	DisabledOption         *lipgloss.Style
	Match                  *lipgloss.Style
	SingleValue            *lipgloss.Style
	MultiValue             *lipgloss.Style
	Placeholder            *lipgloss.Style
	Input                  *lipgloss.Style
	InputPrompt            *lipgloss.Style
	Cursor                 *lipgloss.Style
	Indicator              *lipgloss.Style
	ClearIndicator         *lipgloss.Style
	CategoryHeader         *lipgloss.Style
	Info                   *lipgloss.Style
	Error                  *lipgloss.Style
	Footer                 *lipgloss.Style
}

var defaultStyles = Styles{
	Loading: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	Option: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	OptionIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	FocusedOption: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	FocusedOptionIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Background(lipgloss.Color("238")),
	),
	SelectedMark: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	DisabledOption: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
	),
	Match: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Underline(true),
	),
	SingleValue: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	),
	MultiValue: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24")).Padding(0, 1),
	),
	Placeholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Input: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	InputPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")),
	),
	Indicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	ClearIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	),
	CategoryHeader: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

// Plain returns unstyled copies of every style, for tests and dumb
// terminals.
func Plain() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Loading: ptr(plain), Option: ptr(plain), OptionIndicator: ptr(plain),
		FocusedOption: ptr(plain), FocusedOptionIndicator: ptr(plain),
		SelectedMark: ptr(plain), DisabledOption: ptr(plain), Match: ptr(plain),
		SingleValue: ptr(plain), MultiValue: ptr(plain), Placeholder: ptr(plain),
		Input: ptr(plain), InputPrompt: ptr(plain), Cursor: ptr(plain),
		Indicator: ptr(plain), ClearIndicator: ptr(plain),
		CategoryHeader: ptr(plain), Info: ptr(plain), Error: ptr(plain),
		Footer: ptr(plain),
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
