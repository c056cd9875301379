package http

import (
	"net/http"

	"github.com/mauv0809/team-ladder/internal/http/handlers"
)

func NewServer(deps Deps) *Server {
	server := &Server{
		Store:          deps.Store,
		Engine:         deps.Engine,
		Leaderboard:    deps.Leaderboard,
		Metrics:        deps.Metrics,
		MetricsHandler: deps.MetricsHandler,
		Cfg:            deps.Cfg,
		Notifier:       deps.Notifier,
		PubSub:         deps.PubSub,
		DB:             deps.DB,
		Router:         http.NewServeMux(),
	}

	server.routes()
	server.handler = corsMiddleware(deps.Cfg.AllowedOrigins)(server.Router)
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /{$}", Chain(handlers.HelloHandler(), paramsMiddleware))
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(s.DB), paramsMiddleware))

	createPlayer := Chain(handlers.CreatePlayerHandler(s.Store, s.Leaderboard, s.Metrics, s.Cfg.InitialElo), paramsMiddleware)
	s.Router.Handle("POST /players", createPlayer)
	s.Router.Handle("POST /players/create", createPlayer)
	s.Router.Handle("GET /players", Chain(handlers.ListPlayersHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /players/{id}", Chain(handlers.GetPlayerHandler(s.Store), paramsMiddleware))
	s.Router.Handle("PUT /players/{id}/rating-adjustment", Chain(handlers.SetRatingAdjustmentHandler(s.Store), paramsMiddleware))

	s.Router.Handle("POST /teams", Chain(handlers.CreateTeamHandler(s.Store, s.Metrics, s.Notifier), paramsMiddleware))
	s.Router.Handle("GET /teams", Chain(handlers.ListTeamsHandler(s.Store), paramsMiddleware))
	s.Router.Handle("GET /teams/{id}", Chain(handlers.GetTeamHandler(s.Store), paramsMiddleware))

	s.Router.Handle("POST /matches", Chain(handlers.SettleMatchHandler(s.Engine, s.PubSub), paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(handlers.LeaderboardHandler(s.Leaderboard), paramsMiddleware))

	s.Router.Handle("POST /pubsub/settle-match", Chain(handlers.SettleMatchPushHandler(s.Engine, s.PubSub), paramsMiddleware))
	s.Router.Handle("POST /pubsub/match-settled", Chain(handlers.MatchSettledPushHandler(s.Store, s.Notifier, s.PubSub), paramsMiddleware))

	s.Router.Handle("POST /slack/command/leaderboard", Chain(handlers.LeaderboardCommandHandler(s.Leaderboard, s.Notifier), paramsMiddleware, s.slackVerifier))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
