package scanlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wkscan_commands_total",
			Help: "Commands handled by the scan engine, by result code.",
		},
		[]string{"command", "code"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wkscan_command_duration_seconds",
			Help:    "Command latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	recordsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wkscan_records_saved_total",
		Help: "Scan records accepted.",
	})

	duplicatesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wkscan_duplicates_rejected_total",
		Help: "Scan records rejected because the qrcode was already in the partition.",
	})
)
