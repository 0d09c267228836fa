package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/fetch"
	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/format/table"
	"github.com/atomicstack/popup-select/internal/logging/events"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/theme"
	"github.com/atomicstack/popup-select/internal/tmux"
	"github.com/atomicstack/popup-select/internal/ui"
	"github.com/atomicstack/popup-select/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrCancelled is returned by Run when the user quits without confirming.
var ErrCancelled = errors.New("selection cancelled")

// Output names how the selection is printed.
type Output string

const (
	OutputIDs       Output = "ids"
	OutputJSONLines Output = "jsonl"
)

// ParseOutput maps a configuration value to an Output.
func ParseOutput(value string) (Output, error) {
	switch Output(strings.ToLower(strings.TrimSpace(value))) {
	case "", OutputIDs:
		return OutputIDs, nil
	case OutputJSONLines, "json":
		return OutputJSONLines, nil
	}
	return "", fmt.Errorf("unknown output format %q", value)
}

// Config describes user-provided application options.
type Config struct {
	Source      backend.Kind
	Input       string
	IDKey       string
	LabelKey    string
	CategoryKey string

	SQLite backend.SQLiteConfig

	TmuxSocket  string
	TmuxListing tmux.Kind
	TmuxFormats tmux.Formats

	Multi          bool
	Categorized    bool
	RecordsPerPage int
	Debounce       time.Duration
	Fallback       focus.Fallback
	Sort           string
	Output         Output

	Width          int
	Height         int
	ShowFooter     bool
	Prompt         string
	Placeholder    string
	BestMatch      bool
	SubmitOnSelect bool
	Plain          bool

	WatchInterval time.Duration
	Columns       []string
	Alignments    []table.Alignment
}

// tableLabelKey holds the aligned column label built from Config.Columns.
const tableLabelKey = "_row"

// Session is an opened source together with the widget options built for it.
type Session struct {
	Source  backend.Source
	Options ui.Options
	watcher *backend.Watcher
}

// Open opens the configured source and prepares the widget options. stdin
// feeds a JSON lines source when no input file is given.
func Open(ctx context.Context, cfg Config, stdin io.Reader) (*Session, error) {
	spec := backend.Spec{
		Kind:        cfg.Source,
		IDKey:       cfg.IDKey,
		LabelKey:    cfg.LabelKey,
		SQLite:      cfg.SQLite,
		TmuxSocket:  cfg.TmuxSocket,
		TmuxListing: cfg.TmuxListing,
		TmuxFormats: cfg.TmuxFormats,
	}
	if cfg.Source == backend.KindJSONLines {
		input, closeInput, err := openInput(cfg.Input, stdin)
		if err != nil {
			return nil, err
		}
		defer closeInput()
		spec.Input = input
	}
	src, err := backend.Open(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", cfg.Source, err)
	}
	return newSession(cfg, src), nil
}

func newSession(cfg Config, src backend.Source) *Session {
	sel := state.DefaultConfig(cfg.Multi)
	sel.LabelKey = cfg.LabelKey
	sel.CategoryKey = cfg.CategoryKey
	if sel.CategoryKey == "" && cfg.Source == backend.KindTmux {
		sel.CategoryKey = tmux.FieldSession
	}
	sel.Categorized = cfg.Categorized
	sel.RecordsPerPage = cfg.RecordsPerPage
	sel.DebounceInput = cfg.Debounce > 0
	if cfg.Debounce > 0 {
		sel.DebounceDelay = cfg.Debounce
	}

	opts := ui.Options{
		Select:         sel,
		Sort:           cfg.Sort,
		Fallback:       cfg.Fallback,
		Prompt:         cfg.Prompt,
		Placeholder:    cfg.Placeholder,
		Width:          cfg.Width,
		Height:         cfg.Height,
		ShowFooter:     cfg.ShowFooter,
		BestMatch:      cfg.BestMatch,
		SubmitOnSelect: cfg.SubmitOnSelect,
		StartOpen:      true,
		Styles:         theme.Default(),
	}
	if cfg.Plain {
		opts.Styles = theme.Plain()
	}

	s := &Session{Source: src}
	if fn := backend.FetchFunc(src); fn != nil {
		fc := fetch.DefaultConfig(fn)
		if pager, ok := src.(interface{ PageSize() int }); ok {
			fc.RecordsPerPage = pager.PageSize()
		}
		if cfg.Debounce > 0 {
			fc.Debounce = cfg.Debounce
		}
		opts.Fetch = &fc
		if cfg.WatchInterval > 0 {
			s.watcher = backend.NewWatcher(src, cfg.WatchInterval)
		}
	} else {
		loaded := &labelled{Source: src, columns: cfg.Columns, alignments: cfg.Alignments}
		if len(cfg.Columns) > 0 {
			opts.Select.LabelKey = tableLabelKey
		}
		s.watcher = backend.NewWatcher(loaded, cfg.WatchInterval)
	}
	opts.Watcher = s.watcher
	s.Options = opts
	return s
}

// Close stops polling and releases the source.
func (s *Session) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	return s.Source.Close()
}

// Run bootstraps and executes the Bubble Tea program, then prints the
// selection to stdout.
func Run(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := Open(ctx, cfg, os.Stdin)
	if err != nil {
		return err
	}
	defer session.Close()

	model, err := ui.NewModel(session.Options)
	if err != nil {
		return err
	}

	tty, err := openTTY()
	if err != nil {
		return err
	}
	if tty != nil {
		defer tty.Close()
	}
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithOutput(os.Stderr)}
	if tty != nil {
		programOpts = append(programOpts, tea.WithInput(tty), tea.WithOutput(tty))
	}
	program := tea.NewProgram(model, programOpts...)
	_, err = program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	selected := model.Selected()
	events.App.Exit(option.IDs(selected), !model.Submitted())
	if !model.Submitted() {
		return ErrCancelled
	}
	return WriteSelection(os.Stdout, cfg, selected)
}

// openTTY returns the controlling terminal when stdin is not one, so that
// options can be piped in while keys are still read.
func openTTY() (*os.File, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return tty, nil
}

// WriteSelection prints the chosen options in the configured format.
func WriteSelection(w io.Writer, cfg Config, selected []option.Option) error {
	switch cfg.Output {
	case OutputJSONLines:
		clean := make([]option.Option, len(selected))
		for i, o := range selected {
			clean[i] = withoutField(o, tableLabelKey)
		}
		return backend.WriteJSONLines(w, clean, cfg.IDKey)
	default:
		for _, o := range selected {
			if _, err := fmt.Fprintln(w, o.ID); err != nil {
				return err
			}
		}
		return nil
	}
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, nil, errors.New("no input: pass --input or pipe JSON lines on stdin")
		}
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// labelled applies aligned column labels to each load and traces the
// number of options received.
type labelled struct {
	backend.Source
	columns    []string
	alignments []table.Alignment
}

func (l *labelled) Load(ctx context.Context) ([]option.Option, error) {
	options, err := l.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	events.App.Source(string(l.Kind()), len(options))
	if len(l.columns) == 0 {
		return options, nil
	}
	labels := table.Labels(options, l.columns, l.alignments)
	out := make([]option.Option, len(options))
	for i, o := range options {
		fields := make(map[string]any, len(o.Fields)+1)
		for k, v := range o.Fields {
			fields[k] = v
		}
		fields[tableLabelKey] = labels[o.ID]
		out[i] = option.New(o.ID, fields)
	}
	return out, nil
}

func withoutField(o option.Option, key string) option.Option {
	if _, ok := o.Fields[key]; !ok {
		return o
	}
	fields := make(map[string]any, len(o.Fields))
	for k, v := range o.Fields {
		if k != key {
			fields[k] = v
		}
	}
	return option.New(o.ID, fields)
}
