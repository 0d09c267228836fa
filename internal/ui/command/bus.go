package command

import (
	"context"
	"fmt"

	"github.com/atomicstack/popup-select/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Handler performs background work and reports back with a message.
type Handler func(ctx context.Context) tea.Msg

// Request encapsulates one unit of background work.
type Request struct {
	ID      string
	Label   string
	Handler Handler
}

// Bus turns requests into Bubble Tea commands.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps req into a Bubble Tea command while emitting trace logs. A
// request whose context is already done by the time the command runs is
// skipped.
func (b *Bus) Execute(ctx context.Context, req Request) tea.Cmd {
	events.Command.Step(events.StageQueued, req.ID, req.Label, "")
	return func() tea.Msg {
		if req.Handler == nil || ctx.Err() != nil {
			events.Command.Step(events.StageSkipped, req.ID, req.Label, "")
			return nil
		}
		msg := req.Handler(ctx)
		if msg == nil {
			events.Command.Step(events.StageEmpty, req.ID, req.Label, "")
			return nil
		}
		events.Command.Step(events.StageDone, req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}
