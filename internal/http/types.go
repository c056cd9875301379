package http

import (
	"net/http"

	"github.com/mauv0809/team-ladder/internal/config"
	"github.com/mauv0809/team-ladder/internal/http/handlers"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/notifier"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
)

type Server struct {
	Store          roster.RosterStore
	Engine         handlers.Settler
	Leaderboard    leaderboard.Leaderboard
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	DB             handlers.Pinger
	Router         *http.ServeMux
	handler        http.Handler
}

// Deps groups everything the server needs. DB is optional and only used by /health.
type Deps struct {
	Store          roster.RosterStore
	Engine         handlers.Settler
	Leaderboard    leaderboard.Leaderboard
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	DB             handlers.Pinger
}
