package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connections",
		Help: "Currently open websocket connections.",
	})
	EventsIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_events_in_total",
		Help: "Inbound relay events by type.",
	}, []string{"event"})
	FanOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_fanout_total",
		Help: "message-received emissions to personal rooms.",
	})
	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_dropped_events_total",
		Help: "Inbound events dropped as malformed.",
	})
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_sent_total",
		Help: "Messages persisted via ingestion by type.",
	}, []string{"type"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
