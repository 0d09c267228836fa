// Package fetch coordinates server-backed option lists: paging, debounced
// search, sort, cancellation of superseded requests and merging of results
// into the selection state.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/timer"
	"github.com/atomicstack/popup-select/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce delays search-driven fetches after typing.
const DefaultDebounce = 700 * time.Millisecond

const searchTimerKey = "search"

// Params is what a fetch is asked for. Page is 1-based.
type Params struct {
	Page        int
	SearchQuery string
	Sort        string
}

// Response is one page of results. TotalRecords counts every record that
// matches, not just this page.
type Response struct {
	Data         []option.Option
	TotalRecords int
}

// Func loads a page of options. It must honour ctx. A nil response with a
// nil error means there is nothing to apply.
type Func func(ctx context.Context, p Params) (*Response, error)

// Target receives fetched options. *state.Machine satisfies it.
type Target interface {
	SelectOptions() []option.Option
	SetSelectOptions(list []option.Option)
	AddOptions(list []option.Option)
	CaptureOriginal(list []option.Option) bool
}

// Config controls when fetches are triggered.
type Config struct {
	Fetch              Func
	RecordsPerPage     int
	FetchOnInit        bool
	LazyInit           bool
	FetchOnInputChange bool
	FetchOnScroll      bool
	Disabled           bool
	Debounce           time.Duration
	// Loading reports a host-asserted loading state. Page changes do not
	// fetch while it is set.
	Loading func() bool
}

// DefaultConfig fetches on init, on input change and on scroll.
func DefaultConfig(fn Func) Config {
	return Config{
		Fetch:              fn,
		FetchOnInit:        true,
		FetchOnInputChange: true,
		FetchOnScroll:      true,
		Debounce:           DefaultDebounce,
	}
}

// ResultMsg carries a finished fetch back to the event loop.
type ResultMsg struct {
	Owner    string
	Token    uint64
	Params   Params
	Response *Response
	Err      error
}

// Outcome describes what HandleResult did with a result.
type Outcome struct {
	Applied     bool
	Discarded   bool
	ResetScroll bool
	Received    int
	Err         error
}

// Coordinator owns the fetch state of one widget. All methods run on the
// event loop; only the fetch function itself runs elsewhere.
type Coordinator struct {
	id     string
	cfg    Config
	bus    *command.Bus
	timers *timer.Scheduler
	target Target

	params      Params
	token       uint64
	cancel      context.CancelFunc
	inflight    bool
	initialized bool
	total       int
	totalKnown  bool
	closed      bool
}

// New builds a coordinator that writes results into target.
func New(id string, cfg Config, target Target, bus *command.Bus) *Coordinator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if bus == nil {
		bus = command.New()
	}
	return &Coordinator{
		id:     id,
		cfg:    cfg,
		bus:    bus,
		timers: timer.NewScheduler(id),
		target: target,
		params: Params{Page: 1},
	}
}

func (c *Coordinator) ID() string        { return c.id }
func (c *Coordinator) Params() Params    { return c.params }
func (c *Coordinator) Initialized() bool { return c.initialized }

// Total returns the record count from the latest response.
func (c *Coordinator) Total() (int, bool) { return c.total, c.totalKnown }

// Loading reports an in-flight fetch or a host-asserted loading state.
func (c *Coordinator) Loading() bool {
	return c.inflight || c.hostLoading()
}

func (c *Coordinator) hostLoading() bool {
	return c.cfg.Loading != nil && c.cfg.Loading()
}

// SearchPending reports whether a debounced search has yet to start.
func (c *Coordinator) SearchPending() bool {
	return c.timers.Pending(searchTimerKey)
}

// IsLastPage reports whether the current page reaches the known total.
// Without a page size or a known total more data is assumed.
func (c *Coordinator) IsLastPage() bool {
	if c.cfg.RecordsPerPage <= 0 || !c.totalKnown {
		return false
	}
	return c.params.Page*c.cfg.RecordsPerPage >= c.total
}

// Init issues the mount-time fetch unless fetching on init is off or
// deferred until the dropdown opens.
func (c *Coordinator) Init() tea.Cmd {
	if !c.cfg.FetchOnInit || c.cfg.LazyInit {
		return nil
	}
	return c.start()
}

// Opened issues the deferred first fetch the first time the dropdown opens.
func (c *Coordinator) Opened() tea.Cmd {
	if c.initialized || !c.cfg.LazyInit {
		return nil
	}
	return c.start()
}

// SetPage moves to page n and fetches it. It is ignored while a search is
// debouncing.
func (c *Coordinator) SetPage(n int) tea.Cmd {
	if n < 1 {
		n = 1
	}
	if n == c.params.Page || c.SearchPending() {
		return nil
	}
	c.params.Page = n
	if !c.initialized && !c.cfg.FetchOnInit {
		return nil
	}
	if c.hostLoading() {
		return nil
	}
	return c.start()
}

// NextPage fetches the following page when one exists and nothing is
// loading. While a search is debouncing the list still holds the previous
// query's results, so paging waits for the search's own page-1 fetch.
func (c *Coordinator) NextPage() tea.Cmd {
	if c.closed || c.Loading() || c.IsLastPage() {
		return nil
	}
	return c.SetPage(c.params.Page + 1)
}

// ScrolledToBottom is the scroll-to-bottom default: the next page when
// fetching on scroll is enabled.
func (c *Coordinator) ScrolledToBottom() tea.Cmd {
	if !c.cfg.FetchOnScroll {
		return nil
	}
	return c.NextPage()
}

// SetSearchQuery records q and schedules a page-1 fetch. Clearing a query
// fetches at once; anything else is debounced.
func (c *Coordinator) SetSearchQuery(q string) tea.Cmd {
	if q == c.params.SearchQuery {
		return nil
	}
	prev := c.params.SearchQuery
	c.params.SearchQuery = q
	if !c.cfg.FetchOnInputChange || !c.initialized || c.closed {
		return nil
	}
	if prev != "" && q == "" {
		c.timers.Cancel(searchTimerKey)
		c.params.Page = 1
		return c.start()
	}
	_, cmd := c.timers.Schedule(searchTimerKey, c.cfg.Debounce, func() tea.Cmd {
		c.params.Page = 1
		return c.start()
	})
	return cmd
}

// SetSort changes the sort and fetches immediately.
func (c *Coordinator) SetSort(sort string) tea.Cmd {
	if sort == c.params.Sort {
		return nil
	}
	c.params.Sort = sort
	if !c.initialized {
		return nil
	}
	return c.start()
}

// Refresh refetches the current page.
func (c *Coordinator) Refresh() tea.Cmd {
	return c.start()
}

// HandleTimer runs a debounced search owned by this coordinator.
func (c *Coordinator) HandleTimer(msg timer.FiredMsg) (tea.Cmd, bool) {
	if c.closed {
		return nil, false
	}
	return c.timers.Fire(msg)
}

func (c *Coordinator) start() tea.Cmd {
	if c.closed || c.cfg.Disabled || c.cfg.Fetch == nil {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.token++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.inflight = true
	c.initialized = true

	owner, token, params, fn := c.id, c.token, c.params, c.cfg.Fetch
	events.Fetch.Start(owner, token, params.Page, params.SearchQuery, params.Sort)
	return c.bus.Execute(ctx, command.Request{
		ID:    fmt.Sprintf("%s#%d", owner, token),
		Label: "fetch",
		Handler: func(ctx context.Context) tea.Msg {
			resp, err := fn(ctx, params)
			return ResultMsg{Owner: owner, Token: token, Params: params, Response: resp, Err: err}
		},
	})
}

// HandleResult applies msg when it belongs to the latest request. Results
// from superseded requests, or arriving after Close, are discarded. The
// second return value is false for messages of another coordinator.
func (c *Coordinator) HandleResult(msg ResultMsg) (Outcome, bool) {
	if msg.Owner != c.id {
		return Outcome{}, false
	}
	if c.closed {
		events.Fetch.Discard(c.id, msg.Token, "closed")
		return Outcome{Discarded: true}, true
	}
	if msg.Token != c.token {
		events.Fetch.Discard(c.id, msg.Token, "stale")
		return Outcome{Discarded: true}, true
	}
	c.inflight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			events.Fetch.Discard(c.id, msg.Token, "cancelled")
			return Outcome{Discarded: true}, true
		}
		events.Fetch.Error(c.id, msg.Token, msg.Err)
		return Outcome{Err: fmt.Errorf("fetch page %d: %w", msg.Params.Page, msg.Err)}, true
	}
	if msg.Response == nil {
		events.Fetch.Discard(c.id, msg.Token, "empty")
		return Outcome{}, true
	}

	data := msg.Response.Data
	c.total = msg.Response.TotalRecords
	c.totalKnown = true
	out := Outcome{Applied: true}
	if msg.Params.Page <= 1 {
		c.target.SetSelectOptions(data)
		c.target.CaptureOriginal(data)
		out.ResetScroll = true
		out.Received = len(data)
	} else {
		existing := c.target.SelectOptions()
		merged := option.AppendUnique(existing, data)
		fresh := merged[len(existing):]
		c.target.AddOptions(fresh)
		out.Received = len(fresh)
	}
	events.Fetch.Apply(c.id, msg.Token, msg.Params.Page, out.Received, c.total)
	return out, true
}

// Close cancels the in-flight request and pending debounce. Later results
// and timers are ignored.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.timers.CancelAll()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.inflight = false
}
