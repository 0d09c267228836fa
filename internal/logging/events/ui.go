package events

import "github.com/atomicstack/popup-select/internal/logging"

// UITracer records terminal input reaching the widget.
type UITracer struct{}

// FilterTracer records query changes.
type FilterTracer struct{}

// LoadTracer records option loads that failed after the widget started.
type LoadTracer struct{}

// CommandTracer follows background requests through the command bus.
type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Load    = LoadTracer{}
	Command = CommandTracer{}
)

func (UITracer) Key(widget, key string) {
	logging.Trace("ui.key", map[string]interface{}{"widget": widget, "key": key})
}

// Mouse records a click or wheel event; row is -1 for controls outside the
// option list.
func (UITracer) Mouse(widget, action string, row int) {
	payload := map[string]interface{}{"widget": widget, "action": action}
	if row >= 0 {
		payload["row"] = row
	}
	logging.Trace("ui.mouse", payload)
}

func (UITracer) Resize(widget string, width, height int) {
	logging.Trace("ui.resize", map[string]interface{}{"widget": widget, "size": [2]int{width, height}})
}

func (LoadTracer) Failed(origin string, err error) {
	if err == nil {
		return
	}
	logging.Trace("load.error", map[string]interface{}{"origin": origin, "error": err.Error()})
}

func (FilterTracer) Applied(widget, query string, before, after int) {
	logging.Trace("filter.apply", map[string]interface{}{
		"widget":  widget,
		"query":   query,
		"matched": after,
		"dropped": before - after,
	})
}

func (FilterTracer) Debounced(widget, query string) {
	logging.Trace("filter.debounce", map[string]interface{}{"widget": widget, "query": query})
}

func (FilterTracer) Cleared(widget string) {
	logging.Trace("filter.clear", map[string]interface{}{"widget": widget})
}

func (FilterTracer) WordBackspace(widget, query string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"widget": widget, "query": query})
}

func (FilterTracer) Cursor(widget string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"widget": widget, "cursor": pos})
}

// Stage names a point in a command's life.
type Stage string

const (
	StageQueued  Stage = "queue"
	StageSkipped Stage = "skip"
	StageEmpty   Stage = "noop"
	StageDone    Stage = "result"
)

// Step records req moving to stage. msgType is only set for StageDone.
func (CommandTracer) Step(stage Stage, id, label, msgType string) {
	payload := map[string]interface{}{"id": id, "label": label}
	if msgType != "" {
		payload["msg"] = msgType
	}
	logging.Trace("command."+string(stage), payload)
}
