package tmux

import (
	"cmp"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

var (
	clientMu     sync.Mutex
	cachedClient tmuxClient
	cachedSocket string
)

// newTmux returns a control-mode connection for socketPath, reusing the
// cached one while the socket stays the same.
var newTmux = func(socketPath string) (tmuxClient, error) {
	clientMu.Lock()
	defer clientMu.Unlock()
	if cachedClient != nil {
		if cachedSocket == socketPath {
			return cachedClient, nil
		}
		dropCachedLocked()
	}
	connect := gotmux.DefaultTmux
	if socketPath != "" {
		connect = func() (*gotmux.Tmux, error) { return gotmux.NewTmux(socketPath) }
	}
	client, err := connect()
	if err != nil {
		return nil, fmt.Errorf("connect tmux: %w", err)
	}
	cachedClient, cachedSocket = client, socketPath
	return client, nil
}

// Shutdown closes the cached control-mode connection.
func Shutdown() {
	clientMu.Lock()
	defer clientMu.Unlock()
	dropCachedLocked()
}

func dropCachedLocked() {
	if cachedClient != nil {
		_ = cachedClient.Close()
	}
	cachedClient, cachedSocket = nil, ""
}

// ResolveSocketPath picks the tmux socket: the flag value, then
// POPUP_SELECT_SOCKET, then the socket of the enclosing tmux, then the
// default per-user socket.
func ResolveSocketPath(flagValue string) (string, error) {
	candidates := []string{flagValue, os.Getenv("POPUP_SELECT_SOCKET"), socketFromTMUX(os.Getenv("TMUX"))}
	for _, c := range candidates {
		if c != "" {
			return c, nil
		}
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve tmux socket: %w", err)
	}
	return filepath.Join(cmp.Or(os.Getenv("TMUX_TMPDIR"), "/tmp"), "tmux-"+u.Uid, "default"), nil
}

// socketFromTMUX extracts the socket path from a $TMUX value of the form
// "path,pid,session".
func socketFromTMUX(value string) string {
	path, _, _ := strings.Cut(value, ",")
	return path
}

// firstSession names a session holding w, preferring one where it is active.
func firstSession(w *gotmux.Window) string {
	for _, list := range [][]string{w.ActiveSessionsList, w.LinkedSessionsList} {
		if len(list) > 0 {
			return list[0]
		}
	}
	return ""
}
