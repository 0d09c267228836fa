package events

import "github.com/atomicstack/popup-select/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Source(kind string, options int) {
	logging.Trace("app.source", map[string]interface{}{"kind": kind, "options": options})
}

func (AppTracer) Exit(selected []string, cancelled bool) {
	logging.Trace("app.exit", map[string]interface{}{"selected": selected, "cancelled": cancelled})
}
