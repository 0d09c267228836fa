// Package ui contains the Bubble Tea program that renders a select widget.
// Model focuses on message orchestration; the selection rules live in
// internal/ui/state and drawing is delegated to internal/ui/render.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg is
//     routed through a typed handler registry so it is handled by a focused
//     function (keys, mouse, resize, timers, fetch results, backend reloads).
//   - Every user interaction (typing, choosing an option, toggling the
//     dropdown, clearing values, reaching the bottom of the list) goes
//     through an event.Resolver, which runs either the built-in behaviour
//     plus an optional host followup, or a host override alone.
//   - After an interaction the displayed options are derived again and the
//     focus tracker reconciles focus and viewport against them.
//
// State ownership:
//   - state.Machine holds the input text, open flag, candidate options and
//     page, each resolvable to a host binding. The selected value is always
//     bound; when the host does not bind it, the Model owns the slice.
//   - state.FocusTracker owns focus and scrolling.
//   - fetch.Coordinator, when configured, owns paging and search against a
//     remote source and writes pages back into the machine.
//
// Backend interactions:
//   - A backend.Watcher streams reloads of a static source; Update waits for
//     those events and swaps the candidate list, keeping the current query.
package ui
