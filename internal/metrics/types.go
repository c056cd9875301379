package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	Settlements        *prometheus.CounterVec
	SettlementFailures *prometheus.CounterVec
	SettlementDuration prometheus.Histogram
	EloDelta           prometheus.Histogram
	PlayersCreated     prometheus.Counter
	TeamsCreated       prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
