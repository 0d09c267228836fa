package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// ErrValueBindingRequired is returned when the selection value is not bound
// to a host value and setter. The selection always lives with the host.
var ErrValueBindingRequired = errors.New("state: value binding requires a value and a setter")

// DefaultDebounce delays client-side filtering after typing.
const DefaultDebounce = 700 * time.Millisecond

const filterTimerKey = "filter"

// Config is the host configuration surface of a Machine.
type Config struct {
	LabelKey    string
	CategoryKey string
	Categorize  option.CategorizeFunc

	Multi       bool
	Categorized bool

	RemoveSelected          bool
	RecordsPerPage          int
	HasFetcher              bool
	CloseOnSelect           bool
	ClearInputOnSelect      bool
	ClearValueOnInputChange bool
	DebounceInput           bool
	DebounceDelay           time.Duration

	Sort             option.SortFunc
	InputFilter      option.FilterFunc
	IsOptionDisabled func(option.Option) bool

	DefaultOptions []option.Option

	Value         Controlled[[]option.Option]
	IsOpen        Controlled[bool]
	InputValue    Controlled[string]
	SelectOptions Controlled[[]option.Option]
	Page          Controlled[int]
}

// DefaultConfig returns the default policy for single or multi-value mode.
func DefaultConfig(multi bool) Config {
	return Config{
		LabelKey:           "label",
		Multi:              multi,
		RemoveSelected:     true,
		CloseOnSelect:      !multi,
		ClearInputOnSelect: true,
		DebounceInput:      true,
		DebounceDelay:      DefaultDebounce,
	}
}

// Validate reports configuration mistakes that cannot be recovered from.
func (c Config) Validate() error {
	if c.Value.Value == nil || c.Value.Set == nil {
		return ErrValueBindingRequired
	}
	if c.Categorized {
		if _, err := option.Categorize(nil, c.CategoryKey, c.Categorize); err != nil {
			return err
		}
	}
	if c.RecordsPerPage < 0 {
		return fmt.Errorf("state: records per page must not be negative: %d", c.RecordsPerPage)
	}
	return nil
}

// Machine owns the selection state of one widget. Every slice resolves to
// either the host binding or the internal reducer; the selection value is
// always host owned.
type Machine struct {
	id       string
	cfg      Config
	state    *State
	original []option.Option
	timers   *timer.Scheduler
	closed   bool

	isOpen  Field[bool]
	input   Field[string]
	options Field[[]option.Option]
	page    Field[int]
	value   Field[[]option.Option]
}

// NewMachine validates cfg and seeds the state with its default options.
func NewMachine(cfg Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounce
	}
	m := &Machine{
		id:    uuid.NewString(),
		cfg:   cfg,
		state: NewState(cfg.DefaultOptions),
	}
	m.timers = timer.NewScheduler(m.id)
	m.isOpen = newField("isOpen", cfg.IsOpen,
		func() bool { return m.state.IsOpen },
		func(v bool) {
			if v {
				m.dispatch(Open())
			} else {
				m.dispatch(Close())
			}
		})
	m.input = newField("inputValue", cfg.InputValue,
		func() string { return m.state.InputValue },
		func(v string) { m.dispatch(SetInput(v)) })
	m.options = newField("selectOptions", cfg.SelectOptions,
		func() []option.Option { return m.state.SelectOptions },
		func(v []option.Option) { m.dispatch(SetOptions(v)) })
	m.page = newField("page", cfg.Page,
		func() int { return m.state.Page },
		func(v int) { m.dispatch(SetPage(v)) })
	m.value = newField("value", cfg.Value, nil, nil)
	m.CaptureOriginal(m.SelectOptions())
	return m, nil
}

// ID identifies the machine in traces and timer messages.
func (m *Machine) ID() string { return m.id }

// Config returns the configuration the machine was built with.
func (m *Machine) Config() Config { return m.cfg }

// State returns the internal reducer state. The pointer changes on every
// transition and stays the same otherwise.
func (m *Machine) State() *State { return m.state }

// Snapshot returns every slice resolved against the host bindings.
func (m *Machine) Snapshot() State {
	return State{
		Value:         m.Value(),
		SelectOptions: m.SelectOptions(),
		IsOpen:        m.IsOpen(),
		InputValue:    m.InputValue(),
		Page:          m.Page(),
	}
}

func (m *Machine) IsOpen() bool                     { return m.isOpen.Get() }
func (m *Machine) InputValue() string               { return m.input.Get() }
func (m *Machine) SelectOptions() []option.Option   { return m.options.Get() }
func (m *Machine) Value() []option.Option           { return m.value.Get() }
func (m *Machine) OriginalOptions() []option.Option { return m.original }

// Page returns the current client-side page, never below 1.
func (m *Machine) Page() int { return currentPage(m.page.Get()) }

// IsSelected reports whether id is part of the value.
func (m *Machine) IsSelected(id string) bool {
	return option.Contains(m.Value(), id)
}

// IsDisabled reports whether o is rendered but not selectable.
func (m *Machine) IsDisabled(o option.Option) bool {
	return m.cfg.IsOptionDisabled != nil && m.cfg.IsOptionDisabled(o)
}

func (m *Machine) dispatch(a Action) {
	next := Reduce(m.state, a)
	if next == m.state {
		return
	}
	m.state = next
	events.Select.Action(m.id, a.Kind.String(), false)
}

func (m *Machine) setValue(next []option.Option) {
	m.value.Set(next)
	events.Select.Value(m.id, option.IDs(next))
}

// SelectValue adds o to the value, replacing it in single-value mode.
// Disabled options and ids already selected in multi-value mode are ignored.
func (m *Machine) SelectValue(o option.Option) bool {
	if m.IsDisabled(o) {
		events.Select.Disabled(m.id, o.ID)
		return false
	}
	current := &State{Value: m.Value()}
	next := Reduce(current, SelectValue(o, m.cfg.Multi))
	if next == current {
		return false
	}
	m.setValue(next.Value)
	return true
}

// ClearValue removes the option with id from the value.
func (m *Machine) ClearValue(id string) bool {
	current := &State{Value: m.Value()}
	next := Reduce(current, ClearValue(id))
	if next == current {
		return false
	}
	m.setValue(next.Value)
	return true
}

// ClearAllValues empties the value.
func (m *Machine) ClearAllValues() bool {
	if len(m.Value()) == 0 {
		return false
	}
	m.setValue(nil)
	return true
}

// RemoveLastValue drops the most recently selected option.
func (m *Machine) RemoveLastValue() (option.Option, bool) {
	value := m.Value()
	if len(value) == 0 {
		return option.Option{}, false
	}
	last := value[len(value)-1]
	m.ClearValue(last.ID)
	return last, true
}

// ChooseOption is the default option activation: a visible selected option is
// deselected in multi-value mode, anything else is selected and the close and
// clear-input policies are applied. becameSelected reports the direction of
// the toggle.
func (m *Machine) ChooseOption(o option.Option) (becameSelected, changed bool) {
	if m.IsDisabled(o) {
		events.Select.Disabled(m.id, o.ID)
		return false, false
	}
	if m.cfg.Multi && m.IsSelected(o.ID) {
		return false, m.ClearValue(o.ID)
	}
	changed = m.SelectValue(o)
	if m.cfg.ClearInputOnSelect {
		m.ClearInput()
	}
	if m.cfg.CloseOnSelect {
		m.CloseDropdown()
	}
	return true, changed
}

func (m *Machine) ToggleDropdownVisibility() {
	if !m.isOpen.Controlled() {
		m.dispatch(ToggleVisibility())
		return
	}
	m.isOpen.Set(!m.IsOpen())
}

func (m *Machine) OpenDropdown() {
	if m.IsOpen() {
		return
	}
	m.isOpen.Set(true)
}

func (m *Machine) CloseDropdown() {
	if !m.IsOpen() {
		return
	}
	m.isOpen.Set(false)
}

// SetInputValue stores text without filtering.
func (m *Machine) SetInputValue(text string) {
	if m.InputValue() == text {
		return
	}
	m.input.Set(text)
}

// ClearInput empties the input. Client-side filtering is undone at once and
// any pending debounced filter is dropped.
func (m *Machine) ClearInput() {
	m.timers.Cancel(filterTimerKey)
	if m.InputValue() == "" {
		return
	}
	m.input.Set("")
	events.Filter.Cleared(m.id)
	if !m.cfg.HasFetcher {
		m.applyFilter("")
	}
}

// SetSelectOptions replaces the candidate list. The first non-empty list
// becomes the original snapshot.
func (m *Machine) SetSelectOptions(list []option.Option) {
	m.options.Set(option.Clone(list))
	m.CaptureOriginal(list)
}

// AddOptions appends list to the candidate list.
func (m *Machine) AddOptions(list []option.Option) {
	if len(list) == 0 {
		return
	}
	if m.options.Controlled() {
		merged := append(option.Clone(m.SelectOptions()), list...)
		m.options.Set(merged)
		return
	}
	m.dispatch(AddOptions(list))
}

// HasMoreData reports whether client-side partitioning hides options.
func (m *Machine) HasMoreData() bool {
	if m.cfg.RecordsPerPage <= 0 {
		return false
	}
	total := len(m.original)
	if total == 0 {
		total = len(m.SelectOptions())
	}
	return m.Page()*m.cfg.RecordsPerPage < total
}

// LoadNextPage reveals the next client-side page. With a fetcher paging is
// owned by the fetch coordinator and this is a no-op.
func (m *Machine) LoadNextPage() bool {
	if m.cfg.HasFetcher || !m.HasMoreData() {
		return false
	}
	if m.page.Controlled() {
		m.page.Set(m.Page() + 1)
		return true
	}
	m.dispatch(GoToNextPage())
	return true
}

func (m *Machine) ResetPage() {
	if m.Page() == 1 {
		return
	}
	if m.page.Controlled() {
		m.page.Set(1)
		return
	}
	m.dispatch(ResetPage())
}

func (m *Machine) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if m.Page() == n {
		return
	}
	m.page.Set(n)
}

// CaptureOriginal stores list as the unfiltered snapshot unless one is
// already held.
func (m *Machine) CaptureOriginal(list []option.Option) bool {
	if len(m.original) > 0 || len(list) == 0 {
		return false
	}
	m.original = option.Clone(list)
	events.Select.Snapshot(m.id, len(m.original))
	return true
}

// ClearOriginal drops the snapshot so the next non-empty list is captured.
func (m *Machine) ClearOriginal() {
	m.original = nil
}

// ResetOriginal restores the candidate list from the snapshot.
func (m *Machine) ResetOriginal() {
	if len(m.original) == 0 {
		return
	}
	m.options.Set(option.Clone(m.original))
}

// ReplaceOptions swaps in a reloaded list: the snapshot is retaken and the
// current query reapplied without opening the dropdown.
func (m *Machine) ReplaceOptions(list []option.Option) {
	m.ClearOriginal()
	m.SetSelectOptions(list)
	if m.cfg.HasFetcher {
		return
	}
	if m.timers.Cancel(filterTimerKey) || m.InputValue() != "" {
		m.applyFilter(m.InputValue())
	}
}

// InputChanged is the default input-change behaviour. It stores text, opens
// the dropdown and filters the original options, debounced unless disabled.
// Search with a fetcher is left to the fetch coordinator.
func (m *Machine) InputChanged(text string) tea.Cmd {
	if m.closed {
		return nil
	}
	prev := m.InputValue()
	m.SetInputValue(text)
	if m.cfg.ClearValueOnInputChange && prev != text {
		m.ClearAllValues()
	}
	m.OpenDropdown()
	if m.cfg.HasFetcher {
		return nil
	}
	if !m.cfg.DebounceInput {
		m.applyFilter(text)
		return nil
	}
	events.Filter.Debounced(m.id, text)
	_, cmd := m.timers.Schedule(filterTimerKey, m.cfg.DebounceDelay, func() tea.Cmd {
		m.applyFilter(m.InputValue())
		return nil
	})
	return cmd
}

// FilterPending reports whether a debounced filter has yet to run.
func (m *Machine) FilterPending() bool {
	return m.timers.Pending(filterTimerKey)
}

// HandleTimer runs the callback behind a debounce timer owned by this machine.
func (m *Machine) HandleTimer(msg timer.FiredMsg) (tea.Cmd, bool) {
	if m.closed {
		return nil, false
	}
	return m.timers.Fire(msg)
}

func (m *Machine) applyFilter(query string) {
	if len(m.original) == 0 {
		return
	}
	var filtered []option.Option
	if m.cfg.InputFilter != nil {
		filtered = m.cfg.InputFilter(option.Clone(m.original), query)
	} else {
		filtered = option.FilterByLabel(m.original, m.cfg.LabelKey, query)
	}
	m.ResetPage()
	m.options.Set(filtered)
	events.Filter.Applied(m.id, query, len(m.original), len(filtered))
}

// Displayed derives the options to show from the resolved state.
func (m *Machine) Displayed() (Displayed, error) {
	return Derive(DeriveInput{
		Options:        m.SelectOptions(),
		Value:          m.Value(),
		Page:           m.Page(),
		RecordsPerPage: m.cfg.RecordsPerPage,
		HasFetcher:     m.cfg.HasFetcher,
		Categorized:    m.cfg.Categorized,
		CategoryKey:    m.cfg.CategoryKey,
		Categorize:     m.cfg.Categorize,
		RemoveSelected: m.cfg.RemoveSelected,
		Sort:           m.cfg.Sort,
	})
}

// Close stops pending timers. Timer messages arriving afterwards are ignored.
func (m *Machine) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.timers.CancelAll()
}

// Closed reports whether Close was called.
func (m *Machine) Closed() bool { return m.closed }
