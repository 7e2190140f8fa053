package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vet_chat_connections",
		Help: "Live chat connections.",
	})

	RoomJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vet_chat_room_joins_total",
		Help: "Successful chat room joins.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vet_chat_messages_sent_total",
		Help: "Chat messages accepted and broadcast.",
	})

	AppointmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vet_appointments_created_total",
		Help: "Appointments booked.",
	})
)
