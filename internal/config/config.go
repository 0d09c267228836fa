package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/popup-select/internal/app"
	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/focus"
	"github.com/atomicstack/popup-select/internal/format/table"
	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/tmux"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfigFile     = "POPUP_SELECT_CONFIG"
	envSource         = "POPUP_SELECT_SOURCE"
	envInput          = "POPUP_SELECT_INPUT"
	envIDKey          = "POPUP_SELECT_ID_KEY"
	envLabelKey       = "POPUP_SELECT_LABEL_KEY"
	envCategoryKey    = "POPUP_SELECT_CATEGORY_KEY"
	envSQLiteDB       = "POPUP_SELECT_SQLITE_DB"
	envSQLiteTable    = "POPUP_SELECT_SQLITE_TABLE"
	envSQLiteIDCol    = "POPUP_SELECT_SQLITE_ID_COLUMN"
	envSQLiteLabelCol = "POPUP_SELECT_SQLITE_LABEL_COLUMN"
	envSQLiteColumns  = "POPUP_SELECT_SQLITE_COLUMNS"
	envPageSize       = "POPUP_SELECT_PAGE_SIZE"
	envSocketPath     = "POPUP_SELECT_SOCKET"
	envTmuxListing    = "POPUP_SELECT_TMUX_LISTING"
	envTmuxFormat     = "POPUP_SELECT_TMUX_FORMAT"
	envTmuxFilter     = "POPUP_SELECT_TMUX_FILTER"
	envMulti          = "POPUP_SELECT_MULTI"
	envCategorized    = "POPUP_SELECT_CATEGORIZED"
	envRecordsPerPage = "POPUP_SELECT_RECORDS_PER_PAGE"
	envDebounce       = "POPUP_SELECT_DEBOUNCE"
	envFallback       = "POPUP_SELECT_FALLBACK"
	envSort           = "POPUP_SELECT_SORT"
	envOutput         = "POPUP_SELECT_OUTPUT"
	envWidth          = "POPUP_SELECT_WIDTH"
	envHeight         = "POPUP_SELECT_HEIGHT"
	envShowFooter     = "POPUP_SELECT_FOOTER"
	envPrompt         = "POPUP_SELECT_PROMPT"
	envPlaceholder    = "POPUP_SELECT_PLACEHOLDER"
	envBestMatch      = "POPUP_SELECT_BEST_MATCH"
	envSubmitOnSelect = "POPUP_SELECT_SUBMIT_ON_SELECT"
	envPlain          = "POPUP_SELECT_PLAIN"
	envWatch          = "POPUP_SELECT_WATCH"
	envColumns        = "POPUP_SELECT_COLUMNS"
	envAlign          = "POPUP_SELECT_ALIGN"
	envTrace          = "POPUP_SELECT_TRACE"
	envLogFile        = "POPUP_SELECT_LOG_FILE"
)

// UsageError is returned for unparseable arguments, including -h. Usage
// holds the flag defaults.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// LoadArgs parses configuration from CLI arguments and environment
// variables. Values resolve in order flag, environment, config file,
// built-in default.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	configPath := findConfigPath(args, env)
	file, err := loadFile(configPath)
	if err != nil {
		return Config{}, err
	}
	defaults, err := file.apply(builtinDefaults())
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("popup-select", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("config", configPath, "path to a TOML configuration file")
	source := fs.String("source", envOrDefault(env, envSource, defaults.source), "option source: jsonl, sqlite or tmux")
	input := fs.String("input", envOrDefault(env, envInput, defaults.input), "JSON lines file to read (defaults to stdin)")
	idKey := fs.String("id-key", envOrDefault(env, envIDKey, defaults.idKey), "field holding the option id")
	labelKey := fs.String("label-key", envOrDefault(env, envLabelKey, defaults.labelKey), "field holding the option label")
	categoryKey := fs.String("category-key", envOrDefault(env, envCategoryKey, defaults.categoryKey), "field grouping options into categories")
	sqliteDB := fs.String("sqlite-db", envOrDefault(env, envSQLiteDB, defaults.sqliteDB), "SQLite database path")
	sqliteTable := fs.String("sqlite-table", envOrDefault(env, envSQLiteTable, defaults.sqliteTable), "SQLite table to page through")
	sqliteIDCol := fs.String("sqlite-id-column", envOrDefault(env, envSQLiteIDCol, defaults.sqliteIDCol), "SQLite id column")
	sqliteLabelCol := fs.String("sqlite-label-column", envOrDefault(env, envSQLiteLabelCol, defaults.sqliteLabelCol), "SQLite label column")
	sqliteColumns := fs.String("sqlite-columns", envOrDefault(env, envSQLiteColumns, defaults.sqliteColumns), "comma separated extra SQLite columns")
	pageSize := fs.Int("page-size", envOrInt(env, envPageSize, defaults.pageSize), "rows per SQLite page")
	socket := fs.String("socket", envOrDefault(env, envSocketPath, defaults.socket), "path to the tmux socket (overrides environment detection)")
	tmuxListing := fs.String("tmux-listing", envOrDefault(env, envTmuxListing, defaults.tmuxListing), "tmux listing: sessions, windows or panes")
	tmuxFormat := fs.String("tmux-format", envOrDefault(env, envTmuxFormat, defaults.tmuxFormat), "tmux format for option labels")
	tmuxFilter := fs.String("tmux-filter", envOrDefault(env, envTmuxFilter, defaults.tmuxFilter), "tmux filter for window and pane listings")
	multi := fs.Bool("multi", envOrBool(env, envMulti, defaults.multi), "allow selecting several options")
	categorized := fs.Bool("categorized", envOrBool(env, envCategorized, defaults.categorized), "group options by the category key")
	recordsPerPage := fs.Int("records-per-page", envOrInt(env, envRecordsPerPage, defaults.recordsPerPage), "options revealed per page (0 shows all)")
	debounce := fs.Duration("debounce", envOrDuration(env, envDebounce, defaults.debounce), "delay before a typed query is applied (0 applies immediately)")
	fallback := fs.String("fallback", envOrDefault(env, envFallback, defaults.fallback), "focus movement past either end: opposite, next or previous")
	sortBy := fs.String("sort", envOrDefault(env, envSort, defaults.sort), "sort handed to paged sources, e.g. label or -label")
	output := fs.String("output", envOrDefault(env, envOutput, defaults.output), "selection output: ids or jsonl")
	width := fs.Int("width", envOrInt(env, envWidth, defaults.width), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, defaults.height), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, defaults.footer), "enable footer hint row (disabled by default)")
	prompt := fs.String("prompt", envOrDefault(env, envPrompt, defaults.prompt), "text shown before the input")
	placeholder := fs.String("placeholder", envOrDefault(env, envPlaceholder, defaults.placeholder), "text shown while the input is empty")
	bestMatch := fs.Bool("best-match", envOrBool(env, envBestMatch, defaults.bestMatch), "focus the closest match after a search")
	submitOnSelect := fs.Bool("submit-on-select", envOrBool(env, envSubmitOnSelect, defaults.submitOnSelect), "exit as soon as a single option is chosen")
	plain := fs.Bool("plain", envOrBool(env, envPlain, defaults.plain), "render without colours")
	watch := fs.Duration("watch", envOrDuration(env, envWatch, defaults.watch), "reload interval for tmux and SQLite sources (0 disables)")
	columns := fs.String("columns", envOrDefault(env, envColumns, defaults.columns), "comma separated fields rendered as aligned label columns")
	align := fs.String("align", envOrDefault(env, envAlign, defaults.align), "comma separated column alignments: left or right")
	trace := fs.Bool("trace", envOrBool(env, envTrace, defaults.trace), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, defaults.logFile), "path to the log file")

	if err := fs.Parse(args); err != nil {
		usage := new(strings.Builder)
		fs.SetOutput(usage)
		fs.PrintDefaults()
		return Config{}, &UsageError{Err: err, Usage: usage.String()}
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *recordsPerPage < 0 {
		return Config{}, fmt.Errorf("records-per-page must be >= 0 (got %d)", *recordsPerPage)
	}
	if *pageSize < 0 {
		return Config{}, fmt.Errorf("page-size must be >= 0 (got %d)", *pageSize)
	}
	if *debounce < 0 {
		return Config{}, fmt.Errorf("debounce must be >= 0 (got %s)", *debounce)
	}
	kind, err := backend.ParseKind(*source)
	if err != nil {
		return Config{}, err
	}
	listing, err := tmux.ParseKind(*tmuxListing)
	if err != nil {
		return Config{}, err
	}
	fb, ok := focus.ParseFallback(*fallback)
	if !ok {
		return Config{}, fmt.Errorf("unknown fallback %q", *fallback)
	}
	out, err := app.ParseOutput(*output)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			Source:      kind,
			Input:       *input,
			IDKey:       *idKey,
			LabelKey:    *labelKey,
			CategoryKey: *categoryKey,
			SQLite: backend.SQLiteConfig{
				Path:        *sqliteDB,
				Table:       *sqliteTable,
				IDColumn:    *sqliteIDCol,
				LabelColumn: *sqliteLabelCol,
				Columns:     splitList(*sqliteColumns),
				PageSize:    *pageSize,
			},
			TmuxSocket:     *socket,
			TmuxListing:    listing,
			TmuxFormats:    tmuxFormats(listing, *tmuxFormat, *tmuxFilter),
			Multi:          *multi,
			Categorized:    *categorized,
			RecordsPerPage: *recordsPerPage,
			Debounce:       *debounce,
			Fallback:       fb,
			Sort:           *sortBy,
			Output:         out,
			Width:          *width,
			Height:         *height,
			ShowFooter:     *footer,
			Prompt:         *prompt,
			Placeholder:    *placeholder,
			BestMatch:      *bestMatch,
			SubmitOnSelect: *submitOnSelect,
			Plain:          *plain,
			WatchInterval:  *watch,
			Columns:        splitList(*columns),
			Alignments:     parseAlignments(*align),
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"config":         configPath,
			"source":         string(kind),
			"input":          *input,
			"socket":         *socket,
			"tmuxListing":    string(listing),
			"multi":          strconv.FormatBool(*multi),
			"categorized":    strconv.FormatBool(*categorized),
			"recordsPerPage": strconv.Itoa(*recordsPerPage),
			"debounce":       debounce.String(),
			"fallback":       fb.String(),
			"sort":           *sortBy,
			"output":         string(out),
			"width":          strconv.Itoa(*width),
			"height":         strconv.Itoa(*height),
			"footer":         strconv.FormatBool(*footer),
			"watch":          watch.String(),
			"trace":          strconv.FormatBool(*trace),
			"logFile":        *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// findConfigPath looks for --config ahead of the real parse so the file
// can supply flag defaults.
func findConfigPath(args []string, env map[string]string) string {
	path := envOrDefault(env, envConfigFile, "")
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		switch {
		case name == "config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(name, "config="):
			path = strings.TrimPrefix(name, "config=")
		}
	}
	return path
}

func tmuxFormats(listing tmux.Kind, format, filter string) tmux.Formats {
	var formats tmux.Formats
	switch listing {
	case tmux.KindSessions:
		formats.Session = format
	case tmux.KindPanes:
		formats.Pane = format
		formats.PaneFilter = filter
	default:
		formats.Window = format
		formats.WindowFilter = filter
	}
	return formats
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAlignments(value string) []table.Alignment {
	parts := splitList(value)
	if len(parts) == 0 {
		return nil
	}
	out := make([]table.Alignment, len(parts))
	for i, part := range parts {
		out[i] = table.ParseAlignment(part)
	}
	return out
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := parseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// parseDuration accepts Go durations and bare integers as milliseconds.
func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}

// Validate checks the settings each source needs before anything is opened.
func Validate(cfg Config) error {
	a := cfg.App
	var errs []error
	switch a.Source {
	case backend.KindSQLite:
		if strings.TrimSpace(a.SQLite.Path) == "" {
			errs = append(errs, errors.New("sqlite source requires --sqlite-db"))
		}
		if strings.TrimSpace(a.SQLite.Table) == "" {
			errs = append(errs, errors.New("sqlite source requires --sqlite-table"))
		}
		if len(a.Columns) > 0 {
			errs = append(errs, errors.New("--columns is not supported for paged sources"))
		}
	case backend.KindJSONLines:
		if a.WatchInterval > 0 {
			errs = append(errs, errors.New("--watch is not supported for jsonl sources"))
		}
	}
	if a.Categorized && a.Source != backend.KindTmux && strings.TrimSpace(a.CategoryKey) == "" {
		errs = append(errs, option.ErrCategoryKeyMissing)
	}
	if len(a.Alignments) > len(a.Columns) {
		errs = append(errs, fmt.Errorf("%d alignments given for %d columns", len(a.Alignments), len(a.Columns)))
	}
	return errors.Join(errs...)
}
