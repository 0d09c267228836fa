package tmux

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
	"github.com/atomicstack/popup-select/internal/option"
)

type columnKind int

const (
	textColumn columnKind = iota
	numberColumn
	flagColumn
)

// column is one tab separated field of a format listing.
type column struct {
	key    string
	format string
	kind   columnKind
}

func (c column) value(raw string) any {
	raw = strings.TrimSpace(raw)
	switch c.kind {
	case numberColumn:
		n, _ := strconv.Atoi(raw)
		return n
	case flagColumn:
		return raw == "1"
	}
	return raw
}

// env is server state shared by every row of one listing.
type env struct {
	session string
	clients map[string][]string
}

// listing describes how one Kind is queried and turned into options. A row
// is the target, the columns, then the label, separated by tabs.
type listing struct {
	target   string
	columns  []column
	label    func(Formats) string
	filter   func(Formats) string
	query    func(c tmuxClient, filter, format string) ([]string, error)
	fallback func(c tmuxClient) ([]option.Option, error)
	decorate func(fields map[string]any, e env)
}

const fieldWindowActive = "window_active"

var listings = map[Kind]listing{
	KindSessions: {
		target: "#{session_name}",
		columns: []column{
			{key: FieldSession, format: "#{session_name}"},
			{key: FieldName, format: "#{session_name}"},
			{key: FieldWindows, format: "#{session_windows}", kind: numberColumn},
		},
		label:  func(f Formats) string { return orDefault(f.Session, defaultSessionFormat) },
		filter: func(Formats) string { return "" },
		query: func(c tmuxClient, _, format string) ([]string, error) {
			return c.ListSessionsFormat(format)
		},
		fallback: fallbackSessions,
		decorate: func(fields map[string]any, e env) {
			name, _ := fields[FieldSession].(string)
			clients := e.clients[name]
			fields[FieldActive] = len(clients) > 0
			fields[FieldClients] = clients
			fields[FieldCurrent] = name != "" && name == e.session
		},
	},
	KindWindows: {
		target: "#{session_name}:#{window_index}",
		columns: []column{
			{key: FieldSession, format: "#{session_name}"},
			{key: FieldName, format: "#{window_name}"},
			{key: FieldIndex, format: "#{window_index}", kind: numberColumn},
			{key: FieldActive, format: "#{window_active}", kind: flagColumn},
			{key: FieldTmuxID, format: "#{window_id}"},
		},
		label:    func(f Formats) string { return orDefault(f.Window, defaultWindowFormat) },
		filter:   func(f Formats) string { return strings.TrimSpace(f.WindowFilter) },
		query:    func(c tmuxClient, filter, format string) ([]string, error) { return c.ListWindowsFormat("", filter, format) },
		fallback: fallbackWindows,
		decorate: func(fields map[string]any, e env) {
			active, _ := fields[FieldActive].(bool)
			fields[FieldCurrent] = active && inSession(fields, e)
		},
	},
	KindPanes: {
		target: "#{session_name}:#{window_index}.#{pane_index}",
		columns: []column{
			{key: FieldSession, format: "#{session_name}"},
			{key: FieldWindow, format: "#{window_name}"},
			{key: FieldName, format: "#{pane_title}"},
			{key: FieldIndex, format: "#{pane_index}", kind: numberColumn},
			{key: FieldActive, format: "#{pane_active}", kind: flagColumn},
			{key: fieldWindowActive, format: "#{window_active}", kind: flagColumn},
			{key: FieldCommand, format: "#{pane_current_command}"},
			{key: FieldTmuxID, format: "#{pane_id}"},
		},
		label:    func(f Formats) string { return orDefault(f.Pane, defaultPaneFormat) },
		filter:   func(f Formats) string { return strings.TrimSpace(f.PaneFilter) },
		query:    func(c tmuxClient, filter, format string) ([]string, error) { return c.ListPanesFormat("", filter, format) },
		fallback: fallbackPanes,
		decorate: func(fields map[string]any, e env) {
			active, _ := fields[FieldActive].(bool)
			windowActive, _ := fields[fieldWindowActive].(bool)
			fields[FieldCurrent] = active && windowActive && inSession(fields, e)
		},
	},
}

func (l listing) format(f Formats) string {
	parts := make([]string, 0, len(l.columns)+2)
	parts = append(parts, l.target)
	for _, c := range l.columns {
		parts = append(parts, c.format)
	}
	parts = append(parts, l.target+": "+l.label(f))
	return strings.Join(parts, "\t")
}

// parse turns one row into an option. The label is the last field so a
// user format containing tabs survives the split.
func (l listing) parse(line string, e env) (option.Option, bool) {
	if strings.TrimSpace(line) == "" {
		return option.Option{}, false
	}
	parts := strings.SplitN(line, "\t", len(l.columns)+2)
	if len(parts) < len(l.columns)+1 {
		return option.Option{}, false
	}
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return option.Option{}, false
	}
	fields := make(map[string]any, len(l.columns)+3)
	for i, c := range l.columns {
		fields[c.key] = c.value(parts[i+1])
	}
	fields[FieldLabel] = id
	if len(parts) == len(l.columns)+2 {
		if label := strings.TrimSpace(parts[len(parts)-1]); label != "" {
			fields[FieldLabel] = label
		}
	}
	l.decorate(fields, e)
	return option.New(id, fields), true
}

// redecorate applies server state to options built by a fallback.
func (l listing) redecorate(options []option.Option, e env) []option.Option {
	out := make([]option.Option, len(options))
	for i, o := range options {
		fields := make(map[string]any, len(o.Fields)+2)
		for k, v := range o.Fields {
			fields[k] = v
		}
		l.decorate(fields, e)
		out[i] = option.New(o.ID, fields)
	}
	return out
}

func loadEnv(c tmuxClient, kind Kind) env {
	e := env{session: currentSessionName(c)}
	if kind == KindSessions {
		e.clients = realAttachedClients(c)
	}
	return e
}

func inSession(fields map[string]any, e env) bool {
	session, _ := fields[FieldSession].(string)
	return session != "" && session == e.session
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func fallbackSessions(c tmuxClient) ([]option.Option, error) {
	sessions, err := c.ListSessions()
	if err != nil {
		return nil, err
	}
	out := make([]option.Option, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, option.New(s.Name, map[string]any{
			FieldLabel:   defaultLabelForSession(s),
			FieldSession: s.Name,
			FieldName:    s.Name,
			FieldWindows: s.Windows,
		}))
	}
	return out, nil
}

func fallbackWindows(c tmuxClient) ([]option.Option, error) {
	windows, err := c.ListAllWindows()
	if err != nil {
		return nil, err
	}
	out := make([]option.Option, 0, len(windows))
	for _, w := range windows {
		session := firstSession(w)
		if session == "" {
			session = strings.TrimSpace(w.Session)
		}
		target := fmt.Sprintf("%s:%d", session, w.Index)
		out = append(out, option.New(target, map[string]any{
			FieldLabel:   fmt.Sprintf("%s: %s", target, w.Name),
			FieldSession: session,
			FieldName:    w.Name,
			FieldIndex:   w.Index,
			FieldActive:  w.Active,
			FieldTmuxID:  w.Id,
		}))
	}
	return out, nil
}

// fallbackPanes has no session or window context, so panes are keyed by
// their tmux id.
func fallbackPanes(c tmuxClient) ([]option.Option, error) {
	panes, err := c.ListAllPanes()
	if err != nil {
		return nil, err
	}
	out := make([]option.Option, 0, len(panes))
	for _, p := range panes {
		out = append(out, option.New(p.Id, map[string]any{
			FieldLabel:   fmt.Sprintf("%s: %s %s", p.Id, p.Title, p.CurrentCommand),
			FieldName:    p.Title,
			FieldIndex:   p.Index,
			FieldActive:  p.Active,
			FieldCommand: p.CurrentCommand,
			FieldTmuxID:  p.Id,
		}))
	}
	return out, nil
}

func defaultLabelForSession(s *gotmux.Session) string {
	label := fmt.Sprintf("%s: %d window", s.Name, s.Windows)
	if s.Windows != 1 {
		label += "s"
	}
	if s.Attached > 0 {
		label += " (attached)"
	}
	return label
}

// realAttachedClients maps session names to attached terminal clients,
// skipping control-mode connections such as our own.
func realAttachedClients(client tmuxClient) map[string][]string {
	clients, err := client.ListClients()
	if err != nil {
		return nil
	}
	result := make(map[string][]string)
	for _, c := range clients {
		if c == nil || c.ControlMode || c.Session == "" {
			continue
		}
		result[c.Session] = append(result[c.Session], c.Name)
	}
	return result
}

// currentSessionName resolves the session of the pane we were started from,
// else the session of the first real client.
func currentSessionName(client tmuxClient) string {
	if pane := strings.TrimSpace(os.Getenv("TMUX_PANE")); pane != "" {
		if name, err := client.DisplayMessage(pane, "#{session_name}"); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	if clients, err := client.ListClients(); err == nil {
		for _, c := range clients {
			if c != nil && !c.ControlMode && c.Session != "" {
				return c.Session
			}
		}
	}
	return ""
}
