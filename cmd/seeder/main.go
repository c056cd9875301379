package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/config"
	"github.com/mauv0809/team-ladder/internal/database"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			log.Fatalf("Error: %s must be a positive integer", key)
		}
		return n
	}
	return fallback
}

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()
	numTeams := envInt("SEED_TEAMS", 8)
	numRounds := envInt("SEED_ROUNDS", 25)
	if numTeams%2 != 0 {
		log.Fatalf("Error: SEED_TEAMS must be even, got %d", numTeams)
	}

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer dbTeardown()

	ctx := context.Background()
	store := roster.New(db)
	// Seeding never publishes events or touches the production metrics registry.
	engine := settlement.NewEngine(store, metrics.NewService(prometheus.NewRegistry()), pubsub.NewNoop(), leaderboard.NewStoreBacked(store))

	run := time.Now().Format("150405")
	teams, err := seedTeams(ctx, store, run, numTeams, cfg.InitialElo)
	if err != nil {
		log.Fatalf("Failed to seed teams: %s", err)
	}
	log.Info("Seeded teams", "count", len(teams))

	startTime := time.Now()
	settled := 0
	for round := 1; round <= numRounds; round++ {
		n, err := playRound(ctx, engine, teams)
		if err != nil {
			log.Fatalf("Round %d failed: %s", round, err)
		}
		settled += n
		log.Info("Finished round", "round", round, "matches", n)
	}
	log.Info("Successfully settled all seeded matches.", "matches", settled, "duration", time.Since(startTime))
}

func seedTeams(ctx context.Context, store roster.RosterStore, run string, numTeams int, initialElo float64) ([]string, error) {
	teamIDs := make([]string, 0, numTeams)
	for t := 1; t <= numTeams; t++ {
		playerIDs := make([]string, 0, roster.TeamSize)
		for p := 1; p <= roster.TeamSize; p++ {
			player, err := store.CreatePlayer(ctx, fmt.Sprintf("seed-%s-t%d-p%d", run, t, p), initialElo)
			if err != nil {
				return nil, err
			}
			playerIDs = append(playerIDs, player.ID)
		}
		team, err := store.CreateTeam(ctx, fmt.Sprintf("Seed %s #%d", run, t), playerIDs)
		if err != nil {
			return nil, err
		}
		teamIDs = append(teamIDs, team.ID)
	}
	return teamIDs, nil
}

// playRound pairs the teams up at random and settles every pairing concurrently.
// Pairings within a round never share a player.
func playRound(ctx context.Context, engine *settlement.Engine, teams []string) (int, error) {
	shuffled := append([]string(nil), teams...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i+1 < len(shuffled); i += 2 {
		match := settlement.Match{
			Team1ID:  shuffled[i],
			Team2ID:  shuffled[i+1],
			Duration: 30 + rand.Intn(150),
		}
		switch rand.Intn(3) {
		case 0:
			match.WinningTeamID = match.Team1ID
		case 1:
			match.WinningTeamID = match.Team2ID
		}
		g.Go(func() error {
			_, err := engine.Settle(ctx, match, false)
			return err
		})
	}
	return len(shuffled) / 2, g.Wait()
}
