package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CallEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "msgbridge_call_events_total",
			Help: "Total number of qualifying call notification lines observed.",
		},
	)

	TriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgbridge_triggers_total",
			Help: "Total number of trigger decisions by result.",
		},
		[]string{"result"}, // fired, suppressed
	)

	AutomationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgbridge_automation_failures_total",
			Help: "Total number of failed automation invocations by action.",
		},
		[]string{"action"}, // decline, restart
	)

	MessagesEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgbridge_messages_enqueued_total",
			Help: "Total number of messages admitted to the outbound queue by origin.",
		},
		[]string{"origin"}, // api, watcher
	)

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgbridge_deliveries_total",
			Help: "Total number of delivery attempts by status.",
		},
		[]string{"status"}, // sent, failed
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "msgbridge_queue_depth",
			Help: "Current number of messages waiting in the outbound queue.",
		},
	)

	StreamRestartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "msgbridge_stream_restarts_total",
			Help: "Total number of times the log stream was re-acquired after ending.",
		},
	)

	MonitorRestartsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "msgbridge_monitor_restarts_total",
			Help: "Total number of times the inbound monitor stream was re-acquired after ending.",
		},
	)

	ForwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "msgbridge_forwards_total",
			Help: "Total number of inbound message forwards by status.",
		},
		[]string{"status"}, // forwarded, failed, skipped
	)
)

func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(
		CallEventsTotal,
		TriggersTotal,
		AutomationFailuresTotal,
		MessagesEnqueuedTotal,
		DeliveriesTotal,
		QueueDepth,
		StreamRestartsTotal,
		MonitorRestartsTotal,
		ForwardsTotal,
	)
}

// RecordTrigger records a trigger decision outcome.
func RecordTrigger(result string) {
	TriggersTotal.WithLabelValues(result).Inc()
}

// RecordDelivery records a delivery attempt outcome.
func RecordDelivery(status string) {
	DeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordEnqueue records a message admitted to the outbound queue.
func RecordEnqueue(origin string) {
	MessagesEnqueuedTotal.WithLabelValues(origin).Inc()
}

// RecordAutomationFailure records a failed automation invocation.
func RecordAutomationFailure(action string) {
	AutomationFailuresTotal.WithLabelValues(action).Inc()
}

// RecordForward records an inbound forwarding outcome.
func RecordForward(status string) {
	ForwardsTotal.WithLabelValues(status).Inc()
}
