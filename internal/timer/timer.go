// Package timer provides cancellable, keyed timers that fire back into the
// Bubble Tea event loop. A scheduled callback only runs when its FiredMsg is
// handed to Fire on the loop, so callbacks never race state updates.
package timer

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FiredMsg is emitted when a scheduled timer elapses.
type FiredMsg struct {
	Owner string
	Key   string
	Seq   uint64
}

// Handle cancels one scheduled timer.
type Handle struct {
	key    string
	seq    uint64
	cancel context.CancelFunc
	owner  *Scheduler
}

// Cancel stops the timer. Cancelling twice, or after it fired, is a no-op.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancel()
	if h.owner == nil {
		return
	}
	if current, ok := h.owner.pending[h.key]; ok && current.seq == h.seq {
		delete(h.owner.pending, h.key)
	}
}

type entry struct {
	seq    uint64
	fn     func() tea.Cmd
	handle *Handle
}

// Scheduler tracks at most one pending timer per key. Scheduling a key again
// cancels the previous timer.
type Scheduler struct {
	name    string
	seq     uint64
	pending map[string]*entry
}

// NewScheduler creates a scheduler; name scopes FiredMsg values so several
// schedulers can share one event loop.
func NewScheduler(name string) *Scheduler {
	return &Scheduler{name: name, pending: make(map[string]*entry)}
}

// Schedule arranges for fn to run on the event loop after delay. The returned
// command must be handed to the Bubble Tea runtime; it emits a FiredMsg that
// the owner routes back to Fire.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func() tea.Cmd) (*Handle, tea.Cmd) {
	if prev, ok := s.pending[key]; ok {
		prev.handle.Cancel()
	}
	s.seq++
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{key: key, seq: s.seq, cancel: cancel, owner: s}
	s.pending[key] = &entry{seq: s.seq, fn: fn, handle: h}
	msg := FiredMsg{Owner: s.name, Key: key, Seq: s.seq}
	cmd := func() tea.Msg {
		if delay <= 0 {
			if ctx.Err() != nil {
				return nil
			}
			return msg
		}
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			return msg
		}
	}
	return h, cmd
}

// Owns reports whether msg was produced by this scheduler.
func (s *Scheduler) Owns(msg FiredMsg) bool {
	return msg.Owner == s.name
}

// Fire runs the callback matching msg when it is still the live timer for
// its key. Stale or cancelled timers are ignored.
func (s *Scheduler) Fire(msg FiredMsg) (tea.Cmd, bool) {
	if !s.Owns(msg) {
		return nil, false
	}
	current, ok := s.pending[msg.Key]
	if !ok || current.seq != msg.Seq {
		return nil, false
	}
	delete(s.pending, msg.Key)
	current.handle.cancel()
	if current.fn == nil {
		return nil, true
	}
	return current.fn(), true
}

// Pending reports whether key has a live timer.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.pending[key]
	return ok
}

// CancelAll stops every pending timer.
func (s *Scheduler) CancelAll() {
	for key, e := range s.pending {
		e.handle.cancel()
		delete(s.pending, key)
	}
}

// Cancel stops the pending timer for key, if any.
func (s *Scheduler) Cancel(key string) bool {
	e, ok := s.pending[key]
	if !ok {
		return false
	}
	e.handle.Cancel()
	return true
}
