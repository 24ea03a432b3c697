package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values for MessagesTotal.
const (
	StatusOK             = "ok"
	StatusDecodeError    = "decode_error"
	StatusUnknownCommand = "unknown_command"
	StatusEncodeError    = "encode_error"
)

var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pcviewer_sessions_active",
			Help: "Number of registered viewer sessions",
		},
	)

	SessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pcviewer_sessions_total",
			Help: "Total number of viewer sessions that completed the handshake",
		},
	)

	SessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pcviewer_session_duration_seconds",
			Help:    "Viewer session lifetime in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 3600},
		},
	)

	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcviewer_messages_total",
			Help: "Client messages handled, by command and outcome",
		},
		[]string{"command", "status"},
	)

	FramesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pcviewer_frames_served_total",
			Help: "Total number of point_cloud replies sent",
		},
	)

	BytesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pcviewer_bytes_sent_total",
			Help: "Total payload bytes written to viewer sessions",
		},
	)
)
