package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_settlements_total",
			Help: "The total number of committed match settlements by outcome.",
		}, []string{"outcome"}),
		SettlementFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_settlement_failures_total",
			Help: "The total number of rejected or failed match settlements by error class.",
		}, []string{"class"}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_settlement_duration_seconds",
			Help:    "The duration of a single match settlement, including the transaction.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		EloDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_elo_delta",
			Help:    "Per-player rating change applied by a settlement.",
			Buckets: []float64{-50, -40, -30, -20, -10, -5, 0, 5, 10, 20, 30, 40, 50},
		}),
		PlayersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_players_created_total",
			Help: "The total number of players registered.",
		}),
		TeamsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_teams_created_total",
			Help: "The total number of teams formed.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ladder_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Settlements,
		s.SettlementFailures,
		s.SettlementDuration,
		s.EloDelta,
		s.PlayersCreated,
		s.TeamsCreated,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSettlements(outcome string) {
	s.Settlements.WithLabelValues(outcome).Inc()
}

func (s *Service) IncSettlementFailures(class string) {
	s.SettlementFailures.WithLabelValues(class).Inc()
}

func (s *Service) ObserveSettlementDuration(seconds float64) {
	s.SettlementDuration.Observe(seconds)
}

func (s *Service) ObserveEloDelta(delta float64) {
	s.EloDelta.Observe(delta)
}

func (s *Service) IncPlayersCreated() {
	s.PlayersCreated.Inc()
}

func (s *Service) IncTeamsCreated() {
	s.TeamsCreated.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
