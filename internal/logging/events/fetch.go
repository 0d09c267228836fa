package events

import "github.com/atomicstack/popup-select/internal/logging"

type FetchTracer struct{}

var Fetch = FetchTracer{}

func (FetchTracer) Start(widget string, token uint64, page int, query, sort string) {
	logging.Trace("fetch.start", map[string]interface{}{
		"widget": widget,
		"token":  token,
		"page":   page,
		"query":  query,
		"sort":   sort,
	})
}

func (FetchTracer) Apply(widget string, token uint64, page, received, total int) {
	logging.Trace("fetch.apply", map[string]interface{}{
		"widget":   widget,
		"token":    token,
		"page":     page,
		"received": received,
		"total":    total,
	})
}

func (FetchTracer) Discard(widget string, token uint64, reason string) {
	logging.Trace("fetch.discard", map[string]interface{}{"widget": widget, "token": token, "reason": reason})
}

func (FetchTracer) Error(widget string, token uint64, err error) {
	if err == nil {
		return
	}
	logging.Trace("fetch.error", map[string]interface{}{"widget": widget, "token": token, "error": err.Error()})
}
