package tmux

import (
	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// Formats overrides the tmux format strings and filters used for listings.
// Empty fields fall back to the built-in formats.
type Formats struct {
	Session      string
	Window       string
	WindowFilter string
	Pane         string
	PaneFilter   string
}

const (
	defaultSessionFormat = "#{session_windows} windows#{?session_attached, (attached),}"
	defaultWindowFormat  = "#{window_name}"
	defaultPaneFormat    = "[#{window_name}:#{pane_title}] #{pane_current_command}  [#{pane_width}x#{pane_height}] #{?pane_active,[active],[inactive]}"
)

type tmuxClient interface {
	ListSessions() ([]*gotmux.Session, error)
	ListAllWindows() ([]*gotmux.Window, error)
	ListAllPanes() ([]*gotmux.Pane, error)
	ListClients() ([]*gotmux.Client, error)
	DisplayMessage(target, format string) (string, error)
	ListSessionsFormat(format string) ([]string, error)
	ListWindowsFormat(target, filter, format string) ([]string, error)
	ListPanesFormat(target, filter, format string) ([]string, error)
	Close() error
}
