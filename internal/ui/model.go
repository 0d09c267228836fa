package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/fetch"
	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/theme"
	"github.com/atomicstack/popup-select/internal/timer"
	"github.com/atomicstack/popup-select/internal/ui/command"
	"github.com/atomicstack/popup-select/internal/ui/event"
	"github.com/atomicstack/popup-select/internal/ui/render"
	"github.com/atomicstack/popup-select/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultListHeight caps the dropdown when the terminal height is unknown.
const defaultListHeight = 10

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	// Select is the selection policy. Value may be left unbound, in which
	// case the Model keeps the selection itself.
	Select state.Config
	// Fetch enables server-side options. Fetch.Fetch must be set.
	Fetch *fetch.Config
	// Sort is the initial sort handed to the fetch function.
	Sort string

	Fallback    focus.Fallback
	Prompt      string
	Placeholder string
	Width       int
	Height      int
	ShowFooter  bool
	// BestMatch moves focus to the closest label match once a query has
	// been applied.
	BestMatch bool
	// SubmitOnSelect finishes a single-value widget as soon as an option is
	// chosen.
	SubmitOnSelect bool
	BlinkCursor    bool
	// StartOpen shows the dropdown as soon as the widget starts.
	StartOpen bool

	Styles    *theme.Styles
	Renderers *render.Registry
	Resolver  *event.Resolver
	Keys      *KeyMap
	Watcher   *backend.Watcher
	Bus       *command.Bus
}

// Model implements the Bubble Tea model for one select widget.
type Model struct {
	opts Options

	machine   *state.Machine
	tracker   *state.FocusTracker
	fetcher   *fetch.Coordinator
	resolver  *event.Resolver
	renderers render.Registry
	styles    *theme.Styles
	keys      KeyMap
	help      help.Model

	value []option.Option

	input       state.Input
	inputCursor cursor.Model
	cursorDirty bool

	watcher *backend.Watcher

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	errMsg      string
	infoMsg     string
	infoExpire  time.Time
	layout      layout

	keep         string
	keepSet      bool
	pendingMatch bool
	submitted    bool
	cancelled    bool
	handlers     map[reflect.Type]msgHandler
}

// NewModel wires the selection machine, focus tracker, optional fetch
// coordinator and renderers into a Model.
func NewModel(opts Options) (*Model, error) {
	m := &Model{
		opts:    opts,
		tracker: state.NewFocusTracker(opts.Fallback),
		watcher: opts.Watcher,
		layout:  layout{chipsRow: -1},
	}
	cfg := opts.Select
	if cfg.LabelKey == "" {
		cfg.LabelKey = "label"
	}
	if cfg.Value.Value == nil && cfg.Value.Set == nil {
		cfg.Value = state.Controlled[[]option.Option]{
			Value: &m.value,
			Set:   func(next []option.Option) { m.value = next },
		}
	}
	hasFetcher := opts.Fetch != nil && opts.Fetch.Fetch != nil
	cfg.HasFetcher = cfg.HasFetcher || hasFetcher
	machine, err := state.NewMachine(cfg)
	if err != nil {
		return nil, err
	}
	m.machine = machine
	if opts.StartOpen {
		machine.OpenDropdown()
	}

	m.resolver = opts.Resolver
	if m.resolver == nil {
		m.resolver = event.NewResolver()
	}
	if hasFetcher {
		m.fetcher = fetch.New(machine.ID()+":fetch", *opts.Fetch, machine, opts.Bus)
		if opts.Sort != "" {
			m.fetcher.SetSort(opts.Sort)
		}
		if m.resolver.Gate == nil {
			m.resolver.Gate = m.fetcher.Loading
		}
	}

	m.styles = opts.Styles
	if m.styles == nil {
		m.styles = theme.Default()
	}
	m.renderers = render.Resolve(render.Default(m.styles), opts.Renderers)
	m.keys = DefaultKeyMap()
	if opts.Keys != nil {
		m.keys = *opts.Keys
	}
	m.help = help.New()

	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}

	c := cursor.New()
	if m.styles.Cursor != nil {
		c.Style = m.styles.Cursor.Copy()
	}
	if m.styles.Input != nil {
		c.TextStyle = m.styles.Input.Copy()
	}
	c.SetChar(" ")
	if !opts.BlinkCursor {
		c.SetMode(cursor.CursorStatic)
	}
	m.inputCursor = c
	m.input = state.NewInput(machine.InputValue())

	m.sync("")
	m.registerHandlers()
	return m, nil
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.fetcher != nil {
		if cmd := m.fetcher.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.machine.IsOpen() {
			if cmd := m.fetcher.Opened(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForBackendEvent(m.watcher))
	}
	if cmd := m.inputCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(timer.FiredMsg{}):    m.handleTimerMsg,
		reflect.TypeOf(fetch.ResultMsg{}):   m.handleFetchResultMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.cursorDirty {
		m.cursorDirty = false
		m.inputCursor.Blink = false
		if cmd := m.inputCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return batch(cmds...)
}

// dispatch routes an interaction through the resolver and reconciles focus
// with whatever the chosen path changed.
func (m *Model) dispatch(kind event.Interaction, p event.Payload, def event.Default) tea.Cmd {
	keep := m.tracker.FocusedID()
	m.keep, m.keepSet = "", false
	_, cmd := m.resolver.Dispatch(kind, p, def)
	if m.keepSet {
		keep = m.keep
	}
	m.sync(keep)
	return cmd
}

// retarget tells dispatch where focus belongs once the interaction is done.
// An empty id focuses the first option.
func (m *Model) retarget(id string) {
	m.keep, m.keepSet = id, true
}

// sync derives the displayed options again and reconciles focus onto keep.
func (m *Model) sync(keep string) {
	view, err := m.machine.Displayed()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.tracker.Reconcile(view, keep)
	m.tracker.SetViewport(m.visibleRows())
	m.input.Sync(m.machine.InputValue())
	if m.pendingMatch && m.settled() {
		m.pendingMatch = false
		m.focusBestMatch(view)
	}
}

// settled reports whether the current query has been applied to the list.
func (m *Model) settled() bool {
	if m.machine.FilterPending() {
		return false
	}
	if m.fetcher != nil && (m.fetcher.SearchPending() || m.fetcher.Loading()) {
		return false
	}
	return true
}

func (m *Model) focusBestMatch(view state.Displayed) {
	if !m.opts.BestMatch {
		return
	}
	query := m.machine.InputValue()
	if query == "" {
		return
	}
	options := view.Options()
	if idx := option.BestMatchIndex(options, m.machine.Config().LabelKey, query); idx >= 0 {
		m.tracker.FocusID(options[idx].ID)
	}
}

func (m *Model) loading() bool {
	return m.fetcher != nil && m.fetcher.Loading()
}

func (m *Model) submit() tea.Cmd {
	m.submitted = true
	m.shutdown()
	return tea.Quit
}

func (m *Model) cancel() tea.Cmd {
	m.cancelled = true
	m.shutdown()
	return tea.Quit
}

func (m *Model) shutdown() {
	m.machine.Close()
	if m.fetcher != nil {
		m.fetcher.Close()
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// Machine exposes the selection state, for hosts that override handlers.
func (m *Model) Machine() *state.Machine { return m.machine }

// Tracker exposes focus and viewport.
func (m *Model) Tracker() *state.FocusTracker { return m.tracker }

// Fetcher returns the fetch coordinator, or nil without a fetch function.
func (m *Model) Fetcher() *fetch.Coordinator { return m.fetcher }

// Selected returns the selected options.
func (m *Model) Selected() []option.Option { return m.machine.Value() }

// Submitted reports whether the user confirmed the selection.
func (m *Model) Submitted() bool { return m.submitted }

// Cancelled reports whether the user quit without confirming.
func (m *Model) Cancelled() bool { return m.cancelled }

// Err returns the message of the last error shown to the user.
func (m *Model) Err() string { return m.errMsg }

// SetSort changes the server-side sort and refetches.
func (m *Model) SetSort(sort string) tea.Cmd {
	if m.fetcher == nil {
		return nil
	}
	return m.fetcher.SetSort(sort)
}

// batch drops nil commands and avoids wrapping a single command.
func batch(cmds ...tea.Cmd) tea.Cmd {
	live := make([]tea.Cmd, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd != nil {
			live = append(live, cmd)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return tea.Batch(live...)
}
