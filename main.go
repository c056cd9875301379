package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/config"
	"github.com/mauv0809/team-ladder/internal/database"
	server "github.com/mauv0809/team-ladder/internal/http"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/notifier"
	"github.com/mauv0809/team-ladder/internal/notifier/slack"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	rosterStore := roster.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var n notifier.Notifier = notifier.Noop{}
	if cfg.SlackEnabled() {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Warn("Slack not configured, notifications are disabled")
	}

	var ps pubsub.PubSubClient
	if cfg.ProjectID != "" {
		ps = pubsub.New(cfg.ProjectID)
	} else {
		log.Warn("GCP_PROJECT not set, events will not be published")
		ps = pubsub.NewNoop()
	}
	defer ps.Close()

	board := leaderboard.NewStoreBacked(rosterStore)
	if cfg.Redis.URL != "" {
		redisBoard, err := leaderboard.NewRedis(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %s", err)
		}
		defer redisBoard.Close()
		if err := seedLeaderboard(context.Background(), rosterStore, redisBoard); err != nil {
			log.Error("Failed to seed leaderboard", "error", err)
		}
		board = redisBoard
	}

	engine := settlement.NewEngine(rosterStore, metricsSvc, ps, board)
	if !pubsub.Enabled(ps) {
		// nothing delivers match-settled, so the engine notifies directly
		engine.AnnounceWith(notifier.NewAnnouncer(rosterStore, n))
	}

	s := server.NewServer(server.Deps{
		Store:          rosterStore,
		Engine:         engine,
		Leaderboard:    board,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       n,
		PubSub:         ps,
		DB:             db,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// In-flight settlements finish before the database is closed.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// seedLeaderboard copies the current ratings into a freshly connected Redis board.
func seedLeaderboard(ctx context.Context, store roster.RosterStore, board leaderboard.Leaderboard) error {
	players, err := store.ListPlayersByElo(ctx, 0)
	if err != nil {
		return err
	}
	standings := make([]leaderboard.Standing, len(players))
	for i, p := range players {
		standings[i] = leaderboard.Standing{PlayerID: p.ID, Nickname: p.Nickname, Elo: p.Elo}
	}
	return board.Record(ctx, standings)
}
