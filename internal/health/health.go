package health

import (
	"encoding/json"
	"net/http"
)

type Status struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message,omitempty"`
	Watcher    bool   `json:"watcher"`
	QueueDepth int    `json:"queue_depth"`
}

// Probes supplies the live state the handler reports.
type Probes struct {
	WatcherAlive func() bool
	QueueDepth   func() int
}

// HTTPHandler returns an HTTP handler that reports the health status of the
// service. A dead watcher is degraded but not failing: the submission API
// and delivery worker still function without it.
func HTTPHandler(p Probes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := Status{OK: true, Message: "ok"}

		if p.WatcherAlive != nil {
			st.Watcher = p.WatcherAlive()
			if !st.Watcher {
				st.Message = "watcher stream down"
			}
		}
		if p.QueueDepth != nil {
			st.QueueDepth = p.QueueDepth()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}
