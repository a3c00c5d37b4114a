/*
Package metrics defines the Prometheus collectors exported by the relay.

Collectors are registered with the default registry at init time and served by the
/metrics endpoint.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Connections counts WebSocket connections currently attached to the hub.
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_connections",
		Help: "Number of active WebSocket connections",
	})

	// JoinedUsers counts connections that currently own a user in some room.
	JoinedUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_joined_users",
		Help: "Number of users currently joined to a room",
	})

	// InboundEvents counts inbound protocol events by type.
	InboundEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_inbound_events_total",
			Help: "Total number of inbound events processed",
		},
		[]string{"event"},
	)

	// Deliveries counts outbound events enqueued to connections, by event type.
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_deliveries_total",
			Help: "Total number of outbound events enqueued to connections",
		},
		[]string{"event"},
	)

	// Rejected counts inbound events refused, by reason.
	Rejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelay_rejected_total",
			Help: "Total number of rejected inbound events",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(Connections)
	prometheus.MustRegister(JoinedUsers)
	prometheus.MustRegister(InboundEvents)
	prometheus.MustRegister(Deliveries)
	prometheus.MustRegister(Rejected)
}
