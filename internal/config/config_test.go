package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/popup-select/internal/app"
	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/format/table"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/tmux"
	"github.com/atomicstack/popup-select/internal/ui/state"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs returned error: %v", err)
	}
	a := cfg.App
	if a.Source != backend.KindJSONLines {
		t.Fatalf("expected jsonl source, got %q", a.Source)
	}
	if a.IDKey != "id" || a.LabelKey != "label" {
		t.Fatalf("unexpected keys id=%q label=%q", a.IDKey, a.LabelKey)
	}
	if a.Debounce != state.DefaultDebounce {
		t.Fatalf("expected default debounce, got %s", a.Debounce)
	}
	if a.Output != app.OutputIDs {
		t.Fatalf("expected ids output, got %q", a.Output)
	}
	if !a.BestMatch {
		t.Fatalf("expected best-match enabled by default")
	}
	if a.SQLite.PageSize != backend.DefaultPageSize {
		t.Fatalf("expected page size %d, got %d", backend.DefaultPageSize, a.SQLite.PageSize)
	}
	if a.TmuxListing != tmux.KindWindows {
		t.Fatalf("expected windows listing, got %q", a.TmuxListing)
	}
}

func TestLoadArgsFlagsOverrideEnvironment(t *testing.T) {
	env := []string{
		"POPUP_SELECT_MULTI=false",
		"POPUP_SELECT_WIDTH=40",
		"POPUP_SELECT_DEBOUNCE=250",
		"POPUP_SELECT_FALLBACK=next",
	}
	cfg, err := LoadArgs([]string{"--multi", "--width", "90", "--columns", "name, size", "--align", "left,right"}, env)
	if err != nil {
		t.Fatalf("LoadArgs returned error: %v", err)
	}
	a := cfg.App
	if !a.Multi {
		t.Fatalf("expected --multi to win over the environment")
	}
	if a.Width != 90 {
		t.Fatalf("expected width 90, got %d", a.Width)
	}
	if a.Debounce != 250*time.Millisecond {
		t.Fatalf("expected bare env integer read as milliseconds, got %s", a.Debounce)
	}
	if a.Fallback != focus.FallbackNext {
		t.Fatalf("expected next fallback, got %s", a.Fallback)
	}
	if len(a.Columns) != 2 || a.Columns[0] != "name" || a.Columns[1] != "size" {
		t.Fatalf("unexpected columns %v", a.Columns)
	}
	if len(a.Alignments) != 2 || a.Alignments[1] != table.AlignRight {
		t.Fatalf("unexpected alignments %v", a.Alignments)
	}
	if cfg.Flags["width"] != "90" || cfg.Flags["multi"] != "true" {
		t.Fatalf("unexpected flags %v", cfg.Flags)
	}
}

func TestLoadArgsRejectsBadValues(t *testing.T) {
	cases := [][]string{
		{"--width", "-1"},
		{"--height", "-2"},
		{"--records-per-page", "-5"},
		{"--source", "redis"},
		{"--tmux-listing", "clients"},
		{"--fallback", "sideways"},
		{"--output", "xml"},
		{"--no-such-flag"},
	}
	for _, args := range cases {
		if _, err := LoadArgs(args, nil); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
	if _, err := LoadArgs([]string{"--source", "redis"}, nil); !errors.Is(err, backend.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestLoadArgsTmuxFormatsFollowListing(t *testing.T) {
	cfg, err := LoadArgs([]string{"--source", "tmux", "--tmux-listing", "panes", "--tmux-format", "#{pane_id}", "--tmux-filter", "#{pane_active}"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs returned error: %v", err)
	}
	f := cfg.App.TmuxFormats
	if f.Pane != "#{pane_id}" || f.PaneFilter != "#{pane_active}" {
		t.Fatalf("unexpected pane formats %+v", f)
	}
	if f.Window != "" || f.Session != "" {
		t.Fatalf("expected other formats left empty, got %+v", f)
	}
}

func TestLoadArgsReadsConfigFileBeneathFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "popup-select.toml")
	data := `
source = "sqlite"
multi = true
debounce = "300ms"
prompt = ""
columns = ["name", "kind"]

[sqlite]
db = "items.db"
table = "items"
columns = ["kind"]
page_size = 25

[log]
trace = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadArgs([]string{"--config", path, "--page-size", "10"}, []string{"POPUP_SELECT_MULTI=false"})
	if err != nil {
		t.Fatalf("LoadArgs returned error: %v", err)
	}
	a := cfg.App
	if a.Source != backend.KindSQLite {
		t.Fatalf("expected sqlite source from file, got %q", a.Source)
	}
	if a.Multi {
		t.Fatalf("expected environment to override the file")
	}
	if a.Debounce != 300*time.Millisecond {
		t.Fatalf("expected debounce from file, got %s", a.Debounce)
	}
	if a.Prompt != "" {
		t.Fatalf("expected empty prompt from file, got %q", a.Prompt)
	}
	if a.SQLite.Path != "items.db" || a.SQLite.Table != "items" {
		t.Fatalf("unexpected sqlite config %+v", a.SQLite)
	}
	if a.SQLite.PageSize != 10 {
		t.Fatalf("expected flag page size 10, got %d", a.SQLite.PageSize)
	}
	if len(a.SQLite.Columns) != 1 || a.SQLite.Columns[0] != "kind" {
		t.Fatalf("unexpected sqlite columns %v", a.SQLite.Columns)
	}
	if !cfg.Logging.Trace {
		t.Fatalf("expected trace enabled from file")
	}
	if cfg.Flags["config"] != path {
		t.Fatalf("expected config path recorded, got %q", cfg.Flags["config"])
	}
}

func TestLoadArgsConfigFileErrors(t *testing.T) {
	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, nil); err == nil {
		t.Fatalf("expected error for a missing config file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("colour = \"red\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadArgs(nil, []string{"POPUP_SELECT_CONFIG=" + path}); err == nil {
		t.Fatalf("expected error for an unknown key")
	}

	if err := os.WriteFile(path, []byte("watch = \"soon\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadArgs([]string{"-config=" + path}, nil); err == nil {
		t.Fatalf("expected error for a bad duration")
	}
}

func TestFindConfigPath(t *testing.T) {
	env := map[string]string{envConfigFile: "env.toml"}
	if got := findConfigPath(nil, env); got != "env.toml" {
		t.Fatalf("expected env path, got %q", got)
	}
	if got := findConfigPath([]string{"--multi", "--config", "a.toml"}, env); got != "a.toml" {
		t.Fatalf("expected flag path, got %q", got)
	}
	if got := findConfigPath([]string{"--config=b.toml"}, nil); got != "b.toml" {
		t.Fatalf("expected inline flag path, got %q", got)
	}
	if got := findConfigPath([]string{"--", "--config", "c.toml"}, nil); got != "" {
		t.Fatalf("expected arguments after -- ignored, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{App: app.Config{Source: backend.KindJSONLines}}
	if err := Validate(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	sqlite := Config{App: app.Config{Source: backend.KindSQLite, Columns: []string{"name"}}}
	if err := Validate(sqlite); err == nil {
		t.Fatalf("expected sqlite without db and table to fail")
	}

	categorized := Config{App: app.Config{Source: backend.KindJSONLines, Categorized: true}}
	if err := Validate(categorized); !errors.Is(err, option.ErrCategoryKeyMissing) {
		t.Fatalf("expected ErrCategoryKeyMissing, got %v", err)
	}

	tmuxCategorized := Config{App: app.Config{Source: backend.KindTmux, Categorized: true}}
	if err := Validate(tmuxCategorized); err != nil {
		t.Fatalf("expected tmux to categorize by session without a key, got %v", err)
	}

	watched := Config{App: app.Config{Source: backend.KindJSONLines, WatchInterval: time.Second}}
	if err := Validate(watched); err == nil {
		t.Fatalf("expected --watch on jsonl to fail")
	}

	aligned := Config{App: app.Config{
		Source:     backend.KindJSONLines,
		Columns:    []string{"a"},
		Alignments: []table.Alignment{table.AlignLeft, table.AlignRight},
	}}
	if err := Validate(aligned); err == nil {
		t.Fatalf("expected more alignments than columns to fail")
	}
}

func TestLoadArgsHelpCarriesUsage(t *testing.T) {
	_, err := LoadArgs([]string{"-h"}, nil)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	var usage *UsageError
	if !errors.As(err, &usage) || !strings.Contains(usage.Usage, "-tmux-listing") {
		t.Fatalf("expected usage text listing the flags, got %v", err)
	}
}
