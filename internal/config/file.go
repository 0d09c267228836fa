package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atomicstack/popup-select/internal/backend"
	"github.com/atomicstack/popup-select/internal/ui/state"
	"github.com/pelletier/go-toml/v2"
)

// settings holds the defaults each flag starts from.
type settings struct {
	source         string
	input          string
	idKey          string
	labelKey       string
	categoryKey    string
	sqliteDB       string
	sqliteTable    string
	sqliteIDCol    string
	sqliteLabelCol string
	sqliteColumns  string
	pageSize       int
	socket         string
	tmuxListing    string
	tmuxFormat     string
	tmuxFilter     string
	multi          bool
	categorized    bool
	recordsPerPage int
	debounce       time.Duration
	fallback       string
	sort           string
	output         string
	width          int
	height         int
	footer         bool
	prompt         string
	placeholder    string
	bestMatch      bool
	submitOnSelect bool
	plain          bool
	watch          time.Duration
	columns        string
	align          string
	trace          bool
	logFile        string
}

func builtinDefaults() settings {
	return settings{
		source:         string(backend.KindJSONLines),
		idKey:          "id",
		labelKey:       "label",
		sqliteIDCol:    "id",
		sqliteLabelCol: "label",
		pageSize:       backend.DefaultPageSize,
		tmuxListing:    "windows",
		debounce:       state.DefaultDebounce,
		fallback:       "opposite",
		output:         "ids",
		prompt:         "> ",
		bestMatch:      true,
	}
}

// File is the TOML configuration file layout. Unset keys leave the
// built-in defaults alone.
type File struct {
	Source         string     `toml:"source"`
	Input          string     `toml:"input"`
	IDKey          string     `toml:"id_key"`
	LabelKey       string     `toml:"label_key"`
	CategoryKey    string     `toml:"category_key"`
	SQLite         FileSQLite `toml:"sqlite"`
	Tmux           FileTmux   `toml:"tmux"`
	Multi          *bool      `toml:"multi"`
	Categorized    *bool      `toml:"categorized"`
	RecordsPerPage *int       `toml:"records_per_page"`
	Debounce       string     `toml:"debounce"`
	Fallback       string     `toml:"fallback"`
	Sort           string     `toml:"sort"`
	Output         string     `toml:"output"`
	Width          *int       `toml:"width"`
	Height         *int       `toml:"height"`
	Footer         *bool      `toml:"footer"`
	Prompt         *string    `toml:"prompt"`
	Placeholder    string     `toml:"placeholder"`
	BestMatch      *bool      `toml:"best_match"`
	SubmitOnSelect *bool      `toml:"submit_on_select"`
	Plain          *bool      `toml:"plain"`
	Watch          string     `toml:"watch"`
	Columns        []string   `toml:"columns"`
	Align          []string   `toml:"align"`
	Log            FileLog    `toml:"log"`
}

type FileSQLite struct {
	DB          string   `toml:"db"`
	Table       string   `toml:"table"`
	IDColumn    string   `toml:"id_column"`
	LabelColumn string   `toml:"label_column"`
	Columns     []string `toml:"columns"`
	PageSize    *int     `toml:"page_size"`
}

type FileTmux struct {
	Socket  string `toml:"socket"`
	Listing string `toml:"listing"`
	Format  string `toml:"format"`
	Filter  string `toml:"filter"`
}

type FileLog struct {
	File  string `toml:"file"`
	Trace *bool  `toml:"trace"`
}

// loadFile reads path, returning an empty File when path is blank.
func loadFile(path string) (File, error) {
	var f File
	if strings.TrimSpace(path) == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config file: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return f, nil
}

// apply overlays the values set in f onto s.
func (f File) apply(s settings) (settings, error) {
	setString(&s.source, f.Source)
	setString(&s.input, f.Input)
	setString(&s.idKey, f.IDKey)
	setString(&s.labelKey, f.LabelKey)
	setString(&s.categoryKey, f.CategoryKey)
	setString(&s.sqliteDB, f.SQLite.DB)
	setString(&s.sqliteTable, f.SQLite.Table)
	setString(&s.sqliteIDCol, f.SQLite.IDColumn)
	setString(&s.sqliteLabelCol, f.SQLite.LabelColumn)
	if len(f.SQLite.Columns) > 0 {
		s.sqliteColumns = strings.Join(f.SQLite.Columns, ",")
	}
	setInt(&s.pageSize, f.SQLite.PageSize)
	setString(&s.socket, f.Tmux.Socket)
	setString(&s.tmuxListing, f.Tmux.Listing)
	setString(&s.tmuxFormat, f.Tmux.Format)
	setString(&s.tmuxFilter, f.Tmux.Filter)
	setBool(&s.multi, f.Multi)
	setBool(&s.categorized, f.Categorized)
	setInt(&s.recordsPerPage, f.RecordsPerPage)
	if err := setDuration(&s.debounce, f.Debounce, "debounce"); err != nil {
		return s, err
	}
	setString(&s.fallback, f.Fallback)
	setString(&s.sort, f.Sort)
	setString(&s.output, f.Output)
	setInt(&s.width, f.Width)
	setInt(&s.height, f.Height)
	setBool(&s.footer, f.Footer)
	if f.Prompt != nil {
		s.prompt = *f.Prompt
	}
	setString(&s.placeholder, f.Placeholder)
	setBool(&s.bestMatch, f.BestMatch)
	setBool(&s.submitOnSelect, f.SubmitOnSelect)
	setBool(&s.plain, f.Plain)
	if err := setDuration(&s.watch, f.Watch, "watch"); err != nil {
		return s, err
	}
	if len(f.Columns) > 0 {
		s.columns = strings.Join(f.Columns, ",")
	}
	if len(f.Align) > 0 {
		s.align = strings.Join(f.Align, ",")
	}
	setString(&s.logFile, f.Log.File)
	setBool(&s.trace, f.Log.Trace)
	return s, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v, key string) error {
	if v == "" {
		return nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return fmt.Errorf("config file %s: %w", key, err)
	}
	*dst = d
	return nil
}
