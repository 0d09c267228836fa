package events

import "github.com/atomicstack/popup-select/internal/logging"

type SelectTracer struct{}

type FocusTracer struct{}

type HandlerTracer struct{}

var (
	Select  = SelectTracer{}
	Focus   = FocusTracer{}
	Handler = HandlerTracer{}
)

func (SelectTracer) Action(widget, action string, controlled bool) {
	logging.Trace("select.action", map[string]interface{}{
		"widget":     widget,
		"action":     action,
		"controlled": controlled,
	})
}

func (SelectTracer) Value(widget string, ids []string) {
	logging.Trace("select.value", map[string]interface{}{"widget": widget, "value": ids})
}

func (SelectTracer) Disabled(widget, id string) {
	logging.Trace("select.disabled", map[string]interface{}{"widget": widget, "id": id})
}

func (SelectTracer) Snapshot(widget string, size int) {
	logging.Trace("select.snapshot", map[string]interface{}{"widget": widget, "size": size})
}

func (FocusTracer) Move(direction, category string, index int) {
	logging.Trace("focus.move", map[string]interface{}{
		"direction": direction,
		"category":  category,
		"index":     index,
	})
}

func (FocusTracer) Scroll(row, offset int) {
	logging.Trace("focus.scroll", map[string]interface{}{"row": row, "offset": offset})
}

func (HandlerTracer) Dispatch(interaction, mode string) {
	logging.Trace("handler.dispatch", map[string]interface{}{"interaction": interaction, "mode": mode})
}
