package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/fetch"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/theme"
	"github.com/atomicstack/popup-select/internal/ui/event"
	"github.com/atomicstack/popup-select/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func labelled(labels ...string) []option.Option {
	out := make([]option.Option, len(labels))
	for i, label := range labels {
		out[i] = option.New(strings.ToLower(label), map[string]any{"label": label})
	}
	return out
}

func numbered(n int) []option.Option {
	out := make([]option.Option, n)
	for i := range out {
		out[i] = option.New(fmt.Sprintf("option%d", i), map[string]any{"label": fmt.Sprintf("Option %d", i)})
	}
	return out
}

func newHarness(t *testing.T, opts Options) *Harness {
	t.Helper()
	if opts.Styles == nil {
		opts.Styles = theme.Plain()
	}
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(m.shutdown)
	return NewHarness(m)
}

func selectConfig(multi bool, options []option.Option) state.Config {
	cfg := state.DefaultConfig(multi)
	cfg.DebounceInput = false
	cfg.DefaultOptions = options
	return cfg
}

func valueIDs(m *Model) []string {
	return option.IDs(m.Selected())
}

func TestSelectScenario(t *testing.T) {
	cfg := state.DefaultConfig(false)
	cfg.RecordsPerPage = 20
	cfg.DefaultOptions = numbered(100)
	h := newHarness(t, Options{Select: cfg})
	m := h.Model()

	h.Key(tea.KeyDown)
	if !m.Machine().IsOpen() {
		t.Fatal("expected down to open the dropdown")
	}
	if got := m.Tracker().View().Len(); got != 20 {
		t.Fatalf("expected first page of 20 options, got %d", got)
	}
	if got := m.Tracker().FocusedID(); got != "option0" {
		t.Fatalf("expected option0 focused, got %q", got)
	}

	h.Key(tea.KeyEnter)
	if got := valueIDs(m); len(got) != 1 || got[0] != "option0" {
		t.Fatalf("expected option0 selected, got %v", got)
	}
	if m.Machine().IsOpen() {
		t.Fatal("expected single select to close the dropdown")
	}
	if m.Machine().InputValue() != "" {
		t.Fatalf("expected input cleared, got %q", m.Machine().InputValue())
	}

	h.Key(tea.KeyDown)
	if got := m.Tracker().FocusedID(); got != "option1" {
		t.Fatalf("expected reopen to focus option1, got %q", got)
	}
	if _, shown := m.Tracker().View().Find("option0"); shown {
		t.Fatal("expected the selected option to be hidden")
	}
}

func TestEnterOnClosedDropdownSubmits(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(false, labelled("Alpha", "Beta"))})
	h.Key(tea.KeyEnter)
	if !h.Quit() || !h.Model().Submitted() {
		t.Fatal("expected enter on a closed dropdown to submit")
	}
}

func TestSubmitOnSelect(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(false, labelled("Alpha", "Beta")), SubmitOnSelect: true})
	h.Key(tea.KeyDown)
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)
	if !h.Quit() || !h.Model().Submitted() {
		t.Fatal("expected choosing an option to submit")
	}
	if got := valueIDs(h.Model()); len(got) != 1 || got[0] != "beta" {
		t.Fatalf("expected beta selected, got %v", got)
	}
}

func TestTypingFiltersAndFocusesBestMatch(t *testing.T) {
	h := newHarness(t, Options{
		Select:    selectConfig(false, labelled("Pineapple", "Apple", "Grape")),
		BestMatch: true,
	})
	m := h.Model()

	h.Type("apple")
	if !m.Machine().IsOpen() {
		t.Fatal("expected typing to open the dropdown")
	}
	if got := option.IDs(m.Tracker().View().Options()); len(got) != 2 {
		t.Fatalf("expected two matches, got %v", got)
	}
	if got := m.Tracker().FocusedID(); got != "apple" {
		t.Fatalf("expected exact match focused, got %q", got)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.Machine().InputValue() != "" {
		t.Fatalf("expected ctrl+u to clear the input, got %q", m.Machine().InputValue())
	}
	if got := m.Tracker().View().Len(); got != 3 {
		t.Fatalf("expected all options after clearing, got %d", got)
	}
}

func TestDebouncedFilterAppliesAfterTimer(t *testing.T) {
	cfg := selectConfig(false, labelled("Alpha", "Beta", "Gamma"))
	cfg.DebounceInput = true
	cfg.DebounceDelay = time.Millisecond
	h := newHarness(t, Options{Select: cfg})

	h.Type("gam")
	if got := option.IDs(h.Model().Tracker().View().Options()); len(got) != 1 || got[0] != "gamma" {
		t.Fatalf("expected gamma after debounce, got %v", got)
	}
}

func TestTextEditingMovesCaret(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(false, labelled("Alpha"))})
	m := h.Model()
	h.Type("alpha beta")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlW})
	if got := m.Machine().InputValue(); got != "alpha " {
		t.Fatalf("expected word deleted, got %q", got)
	}
	h.Key(tea.KeyCtrlA)
	h.Type("x")
	if got := m.Machine().InputValue(); got != "xalpha " {
		t.Fatalf("expected insert at start, got %q", got)
	}
	if got := m.input.CaretPos(); got != 1 {
		t.Fatalf("expected caret after inserted rune, got %d", got)
	}
}

func TestMultiSelectChipsAndClearing(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(true, labelled("Alpha", "Beta", "Gamma"))})
	m := h.Model()

	h.Key(tea.KeyDown)
	h.Key(tea.KeyTab)
	if got := m.Tracker().FocusedID(); got != "beta" {
		t.Fatalf("expected focus to advance to beta, got %q", got)
	}
	h.Key(tea.KeyTab)
	if got := valueIDs(m); len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("expected alpha and beta selected, got %v", got)
	}
	if !m.Machine().IsOpen() {
		t.Fatal("expected multi select to keep the dropdown open")
	}
	view := h.View()
	if !strings.Contains(view, "Alpha ✕") || !strings.Contains(view, "Beta ✕") {
		t.Fatalf("expected value chips in view, got %q", view)
	}

	h.Key(tea.KeyBackspace)
	if got := valueIDs(m); len(got) != 1 || got[0] != "alpha" {
		t.Fatalf("expected backspace to remove the last value, got %v", got)
	}
	h.Key(tea.KeyCtrlX)
	if got := valueIDs(m); len(got) != 0 {
		t.Fatalf("expected all values cleared, got %v", got)
	}
}

func TestEscapeClosesThenCancels(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(false, labelled("Alpha"))})
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEsc)
	if h.Model().Machine().IsOpen() || h.Quit() {
		t.Fatal("expected first escape to close the dropdown only")
	}
	h.Key(tea.KeyEsc)
	if !h.Quit() || !h.Model().Cancelled() {
		t.Fatal("expected second escape to cancel")
	}
}

func TestOverrideReplacesOptionClick(t *testing.T) {
	var clicked []string
	resolver := event.NewResolver().Override(event.OptionClick, func(p event.Payload) tea.Cmd {
		clicked = append(clicked, p.Option.ID)
		return nil
	})
	h := newHarness(t, Options{Select: selectConfig(false, labelled("Alpha", "Beta")), Resolver: resolver})
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)

	if len(clicked) != 1 || clicked[0] != "alpha" {
		t.Fatalf("expected override to see alpha, got %v", clicked)
	}
	if got := valueIDs(h.Model()); len(got) != 0 {
		t.Fatalf("expected override to skip the default, got %v", got)
	}
	if !h.Model().Machine().IsOpen() {
		t.Fatal("expected dropdown left open by the override")
	}
}

func TestFollowupSeesUpdatedPayload(t *testing.T) {
	var got event.Payload
	resolver := event.NewResolver().Followup(event.OptionClick, func(p event.Payload) tea.Cmd {
		got = p
		return nil
	})
	h := newHarness(t, Options{Select: selectConfig(true, labelled("Alpha", "Beta")), Resolver: resolver})
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)
	if !got.Selected || len(got.Value) != 1 || got.Value[0].ID != "alpha" {
		t.Fatalf("expected followup with the new value, got %#v", got)
	}
}

func TestClearIndicatorReachesHostWithEmptyValue(t *testing.T) {
	var calls []event.Payload
	resolver := event.NewResolver().Followup(event.ClearIndicatorClick, func(p event.Payload) tea.Cmd {
		calls = append(calls, p)
		return nil
	})
	h := newHarness(t, Options{Select: selectConfig(true, labelled("Alpha", "Beta")), Resolver: resolver})

	h.Key(tea.KeyCtrlX)
	if len(calls) != 1 || len(calls[0].Value) != 0 {
		t.Fatalf("expected one followup with an empty value, got %#v", calls)
	}
	if got := valueIDs(h.Model()); len(got) != 0 {
		t.Fatalf("expected value to stay empty, got %v", got)
	}

	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)
	h.Key(tea.KeyCtrlX)
	if len(calls) != 2 || len(calls[1].Value) != 0 {
		t.Fatalf("expected second followup after clearing, got %#v", calls)
	}
}

// itemPager serves 12 records labelled "Item NN" in pages of perPage.
type itemPager struct {
	perPage int
	calls   []fetch.Params
}

func (p *itemPager) fetch(ctx context.Context, params fetch.Params) (*fetch.Response, error) {
	p.calls = append(p.calls, params)
	var matched []option.Option
	for i := 1; i <= 12; i++ {
		label := fmt.Sprintf("Item %02d", i)
		if strings.Contains(strings.ToLower(label), strings.ToLower(params.SearchQuery)) {
			matched = append(matched, option.New(fmt.Sprintf("item%02d", i), map[string]any{"label": label}))
		}
	}
	start := (params.Page - 1) * p.perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + p.perPage
	if end > len(matched) {
		end = len(matched)
	}
	return &fetch.Response{Data: matched[start:end], TotalRecords: len(matched)}, nil
}

func TestFetchPagesOnScrollAndSearches(t *testing.T) {
	p := &itemPager{perPage: 5}
	fcfg := fetch.DefaultConfig(p.fetch)
	fcfg.RecordsPerPage = 5
	fcfg.Debounce = time.Millisecond
	h := newHarness(t, Options{Select: selectConfig(false, nil), Fetch: &fcfg})
	m := h.Model()

	h.Init()
	if got := len(m.Machine().SelectOptions()); got != 5 {
		t.Fatalf("expected first page, got %d", got)
	}
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnd)
	if got := len(m.Machine().SelectOptions()); got != 10 {
		t.Fatalf("expected second page after reaching the bottom, got %d", got)
	}
	h.Key(tea.KeyEnd)
	if got := len(m.Machine().SelectOptions()); got != 12 {
		t.Fatalf("expected last page, got %d", got)
	}
	if !m.Fetcher().IsLastPage() {
		t.Fatal("expected the coordinator to know it reached the last page")
	}

	h.Type("item 1")
	last := p.calls[len(p.calls)-1]
	if last != (fetch.Params{Page: 1, SearchQuery: "item 1"}) {
		t.Fatalf("unexpected last fetch %#v", last)
	}
	if got := option.IDs(m.Tracker().View().Options()); len(got) != 3 || got[0] != "item10" {
		t.Fatalf("expected searched page, got %v", got)
	}
	if got := m.Tracker().FocusedID(); got != "item10" {
		t.Fatalf("expected focus reset to the first result, got %q", got)
	}
}

func TestFetchErrorIsShown(t *testing.T) {
	fcfg := fetch.DefaultConfig(func(context.Context, fetch.Params) (*fetch.Response, error) {
		return nil, errors.New("backend down")
	})
	h := newHarness(t, Options{Select: selectConfig(false, nil), Fetch: &fcfg})
	h.Init()
	if !strings.Contains(h.View(), "backend down") {
		t.Fatalf("expected fetch error in view, got %q", h.View())
	}
}

func TestMouseClickChoosesRow(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(false, labelled("Alpha", "Beta", "Gamma"))})
	h.Send(tea.MouseMsg{X: 1, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !h.Model().Machine().IsOpen() {
		t.Fatal("expected a click on the control to open the dropdown")
	}
	h.View()
	h.Send(tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionMotion})
	if got := h.Model().Tracker().FocusedID(); got != "beta" {
		t.Fatalf("expected hover to focus beta, got %q", got)
	}
	h.Send(tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := valueIDs(h.Model()); len(got) != 1 || got[0] != "beta" {
		t.Fatalf("expected beta chosen by click, got %v", got)
	}
}

func TestWindowSizeSetsViewport(t *testing.T) {
	h := newHarness(t, Options{Select: selectConfig(false, numbered(30)), ShowFooter: true})
	h.Send(tea.WindowSizeMsg{Width: 40, Height: 8})
	if got := h.Model().Tracker().Visible; got != 5 {
		t.Fatalf("expected 5 visible rows, got %d", got)
	}
	h.Key(tea.KeyDown)
	for i := 0; i < 7; i++ {
		h.Key(tea.KeyDown)
	}
	if got := h.Model().Tracker().Offset; got != 3 {
		t.Fatalf("expected viewport to follow focus, got offset %d", got)
	}
	if view := h.View(); !strings.Contains(view, "Option 7") || strings.Contains(view, "Option 2 ") {
		t.Fatalf("unexpected view window:\n%s", view)
	}
}

func TestWatcherReloadsOptions(t *testing.T) {
	cfg := selectConfig(false, nil)
	w := backend.NewWatcher(backend.NewStatic(labelled("Alpha", "Beta")), 0)
	h := newHarness(t, Options{Select: cfg, Watcher: w})
	h.Init()
	if got := len(h.Model().Machine().SelectOptions()); got != 2 {
		t.Fatalf("expected watcher options loaded, got %d", got)
	}
	if h.Model().watcher != nil {
		t.Fatal("expected the closed watcher to be dropped")
	}

	h.Send(backendEventMsg{event: backend.Event{Err: errors.New("reload failed")}})
	if !strings.Contains(h.View(), "reload failed") {
		t.Fatalf("expected reload error in view, got %q", h.View())
	}
}

func TestViewShowsPlaceholderThenValue(t *testing.T) {
	h := newHarness(t, Options{
		Select:      selectConfig(false, labelled("Alpha", "Beta")),
		Prompt:      "> ",
		Placeholder: "pick one",
	})
	if view := h.View(); !strings.Contains(view, "> pick one") {
		t.Fatalf("expected placeholder, got %q", view)
	}
	h.Key(tea.KeyDown)
	h.Key(tea.KeyEnter)
	view := h.View()
	if !strings.Contains(view, "> Alpha") {
		t.Fatalf("expected selected value in control line, got %q", view)
	}
	if !strings.Contains(view, "✕") {
		t.Fatalf("expected clear indicator, got %q", view)
	}
}
