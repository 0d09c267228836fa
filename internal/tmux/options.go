package tmux

import (
	"fmt"
	"strings"

	"github.com/atomicstack/popup-select/internal/option"
)

// Field keys carried by options built from tmux listings.
const (
	FieldLabel   = "label"
	FieldSession = "session"
	FieldName    = "name"
	FieldIndex   = "index"
	FieldActive  = "active"
	FieldCurrent = "current"
	FieldCommand = "command"
	FieldWindows = "windows"
	FieldClients = "clients"
	FieldWindow  = "window"
	FieldTmuxID  = "tmux_id"
)

// Kind names a tmux listing.
type Kind string

const (
	KindSessions Kind = "sessions"
	KindWindows  Kind = "windows"
	KindPanes    Kind = "panes"
)

// ParseKind maps a configuration value to a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case "", KindWindows:
		return KindWindows, nil
	case KindSessions:
		return KindSessions, nil
	case KindPanes:
		return KindPanes, nil
	}
	return "", fmt.Errorf("unknown tmux listing %q", value)
}

// Options lists kind from the server at socketPath as select options. The
// session field is the natural category key. Targets ("dev", "dev:1",
// "dev:1.0") are used as option ids; when the format listing fails the
// plain listing is used instead.
func Options(socketPath string, kind Kind, formats Formats) ([]option.Option, error) {
	l, ok := listings[kind]
	if !ok {
		return nil, fmt.Errorf("unknown tmux listing %q", kind)
	}
	client, err := newTmux(socketPath)
	if err != nil {
		return nil, err
	}
	e := loadEnv(client, kind)
	lines, err := l.query(client, l.filter(formats), l.format(formats))
	if err != nil {
		options, fallbackErr := l.fallback(client)
		if fallbackErr != nil {
			return nil, fmt.Errorf("list %s: %w", kind, fallbackErr)
		}
		return l.redecorate(options, e), nil
	}
	options := make([]option.Option, 0, len(lines))
	for _, line := range lines {
		if o, ok := l.parse(line, e); ok {
			options = append(options, o)
		}
	}
	return options, nil
}
