// Package backend provides the option sources the CLI can feed into the
// select widget: static lists read from JSON lines, paged SQLite tables and
// live tmux listings.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atomicstack/popup-select/internal/fetch"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/tmux"
)

// ErrUnknownSource is returned for an unrecognised source kind.
var ErrUnknownSource = errors.New("unknown option source")

// Kind names a source implementation.
type Kind string

const (
	KindJSONLines Kind = "jsonl"
	KindSQLite    Kind = "sqlite"
	KindTmux      Kind = "tmux"
)

// ParseKind maps a configuration value to a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case "", KindJSONLines, "json":
		return KindJSONLines, nil
	case KindSQLite, "sql":
		return KindSQLite, nil
	case KindTmux:
		return KindTmux, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, value)
}

// Source produces the options shown by the widget. Sources that page on the
// server side also implement Pager; the widget then hands them to the fetch
// coordinator instead of calling Load.
type Source interface {
	Kind() Kind
	Load(ctx context.Context) ([]option.Option, error)
	Close() error
}

// Pager serves one page of options at a time.
type Pager interface {
	Fetch(ctx context.Context, p fetch.Params) (*fetch.Response, error)
}

// FetchFunc returns the paging function of src, or nil when src loads its
// options in one go.
func FetchFunc(src Source) fetch.Func {
	pager, ok := src.(Pager)
	if !ok {
		return nil
	}
	return pager.Fetch
}

// Static serves a fixed list.
type Static struct {
	options []option.Option
}

func NewStatic(options []option.Option) *Static {
	return &Static{options: option.Dedupe(options)}
}

func (s *Static) Kind() Kind   { return KindJSONLines }
func (s *Static) Close() error { return nil }

func (s *Static) Load(ctx context.Context) ([]option.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return option.Clone(s.options), nil
}

// Spec selects and configures a source.
type Spec struct {
	Kind     Kind
	IDKey    string
	LabelKey string
	// Input feeds a JSON lines source.
	Input io.Reader

	SQLite SQLiteConfig

	TmuxSocket  string
	TmuxListing tmux.Kind
	TmuxFormats tmux.Formats
}

// Open builds the source described by spec.
func Open(ctx context.Context, spec Spec) (Source, error) {
	switch spec.Kind {
	case KindJSONLines:
		if spec.Input == nil {
			return nil, errors.New("jsonl source requires an input")
		}
		options, err := ReadJSONLines(spec.Input, spec.IDKey, spec.LabelKey)
		if err != nil {
			return nil, err
		}
		return NewStatic(options), nil
	case KindSQLite:
		return OpenSQLite(ctx, spec.SQLite)
	case KindTmux:
		socket, err := tmux.ResolveSocketPath(spec.TmuxSocket)
		if err != nil {
			return nil, fmt.Errorf("resolve tmux socket: %w", err)
		}
		return NewTmux(socket, spec.TmuxListing, spec.TmuxFormats), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, spec.Kind)
}
