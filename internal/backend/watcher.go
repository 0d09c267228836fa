package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/popup-select/internal/option"
)

// Event conveys a reloaded option list or an error from a poll.
type Event struct {
	Options []option.Option
	Err     error
}

// Watcher reloads a source at a fixed interval and publishes events.
type Watcher struct {
	source   Source
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts polling src every interval. The first load happens
// immediately; a non-positive interval loads exactly once.
func NewWatcher(src Source, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		source:   src,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.wg.Add(1)
	go w.poll()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of reload events. It is closed after Stop once
// the poller exits.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current load
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	emit := func() bool {
		options, err := w.source.Load(w.ctx)
		if w.ctx.Err() != nil {
			return false
		}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- Event{Options: options, Err: err}:
			return true
		}
	}

	if !emit() || w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
