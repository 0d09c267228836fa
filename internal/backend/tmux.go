package backend

import (
	"context"
	"time"

	"github.com/atomicstack/popup-select/internal/option"
	"github.com/atomicstack/popup-select/internal/tmux"
)

// Tmux lists sessions, windows or panes of a tmux server. Successive loads
// are throttled so a fast watcher cannot hammer the server.
type Tmux struct {
	socketPath string
	listing    tmux.Kind
	formats    tmux.Formats
	throttle   *throttle
}

func NewTmux(socketPath string, listing tmux.Kind, formats tmux.Formats) *Tmux {
	return &Tmux{
		socketPath: socketPath,
		listing:    listing,
		formats:    formats,
		throttle:   newThrottle(250 * time.Millisecond),
	}
}

func (t *Tmux) Kind() Kind { return KindTmux }

func (t *Tmux) Close() error {
	tmux.Shutdown()
	return nil
}

// Load fetches the current listing.
func (t *Tmux) Load(ctx context.Context) ([]option.Option, error) {
	if err := t.throttle.wait(ctx); err != nil {
		return nil, err
	}
	return tmux.Options(t.socketPath, t.listing, t.formats)
}
