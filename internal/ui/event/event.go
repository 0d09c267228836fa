// Package event resolves each widget interaction to either the built-in
// behaviour, optionally followed by a host hook, or a host override alone.
package event

import (
	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
	tea "github.com/charmbracelet/bubbletea"
)

// Interaction names a user interaction the widget reacts to.
type Interaction int

const (
	InputChange Interaction = iota
	OptionClick
	DropdownToggle
	ClearIndicatorClick
	ValueClear
	ScrollToBottom
)

var interactionNames = [...]string{
	InputChange:         "input-change",
	OptionClick:         "option-click",
	DropdownToggle:      "dropdown-toggle",
	ClearIndicatorClick: "clear-indicator-click",
	ValueClear:          "value-clear",
	ScrollToBottom:      "scroll-to-bottom",
}

func (i Interaction) String() string {
	if i < 0 || int(i) >= len(interactionNames) {
		return "unknown"
	}
	return interactionNames[i]
}

// Gated reports whether the interaction is ignored while loading.
func (i Interaction) Gated() bool {
	switch i {
	case DropdownToggle, OptionClick, ClearIndicatorClick:
		return true
	}
	return false
}

// Mode records which path Dispatch took.
type Mode int

const (
	ModeDefault Mode = iota
	ModeOverride
	ModeGated
)

func (m Mode) String() string {
	switch m {
	case ModeOverride:
		return "override"
	case ModeGated:
		return "gated"
	default:
		return "default"
	}
}

// Payload is the data of one interaction. Fields not relevant to the
// interaction are left zero.
type Payload struct {
	Input  string
	Option option.Option
	Value  []option.Option
	IsOpen bool
	// Selected is set for option clicks that selected rather than
	// deselected.
	Selected bool
}

// Handler is a host override or followup.
type Handler func(Payload) tea.Cmd

// Default performs the built-in mutation and returns the payload handed to
// the followup.
type Default func(Payload) (Payload, tea.Cmd)

// Resolver holds the host overrides and followups of one widget.
type Resolver struct {
	Overrides map[Interaction]Handler
	Followups map[Interaction]Handler
	// Gate reports a loading state during which gated interactions are
	// no-ops.
	Gate func() bool
}

// NewResolver returns a resolver with no host handlers.
func NewResolver() *Resolver {
	return &Resolver{
		Overrides: make(map[Interaction]Handler),
		Followups: make(map[Interaction]Handler),
	}
}

// Override replaces the built-in behaviour of kind with h.
func (r *Resolver) Override(kind Interaction, h Handler) *Resolver {
	if r.Overrides == nil {
		r.Overrides = make(map[Interaction]Handler)
	}
	r.Overrides[kind] = h
	return r
}

// Followup runs h after the built-in behaviour of kind.
func (r *Resolver) Followup(kind Interaction, h Handler) *Resolver {
	if r.Followups == nil {
		r.Followups = make(map[Interaction]Handler)
	}
	r.Followups[kind] = h
	return r
}

// Dispatch runs either the override for kind, or def followed by the
// followup. The two paths never both run.
func (r *Resolver) Dispatch(kind Interaction, p Payload, def Default) (Mode, tea.Cmd) {
	if kind.Gated() && r.Gate != nil && r.Gate() {
		events.Handler.Dispatch(kind.String(), ModeGated.String())
		return ModeGated, nil
	}
	if h, ok := r.Overrides[kind]; ok && h != nil {
		events.Handler.Dispatch(kind.String(), ModeOverride.String())
		return ModeOverride, h(p)
	}
	events.Handler.Dispatch(kind.String(), ModeDefault.String())
	var cmd tea.Cmd
	if def != nil {
		p, cmd = def(p)
	}
	h, ok := r.Followups[kind]
	if !ok || h == nil {
		return ModeDefault, cmd
	}
	followup := h(p)
	switch {
	case cmd == nil:
		return ModeDefault, followup
	case followup == nil:
		return ModeDefault, cmd
	}
	return ModeDefault, tea.Batch(cmd, followup)
}
