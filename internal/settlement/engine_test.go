package settlement_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mauv0809/team-ladder/internal/database"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineDeps struct {
	store   *roster.MockStore
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
	board   *leaderboard.Mock
	engine  *settlement.Engine
}

func setupEngine(t *testing.T) engineDeps {
	t.Helper()
	d := engineDeps{
		store:   roster.NewMock(),
		metrics: metrics.NewMock(),
		pubsub:  pubsub.NewMock("TEST"),
		board:   leaderboard.NewMock(),
	}
	d.engine = settlement.NewEngine(d.store, d.metrics, d.pubsub, d.board)
	return d
}

func seedTeam(store *roster.MockStore, teamID string, elo float64, hours int) []roster.Player {
	players := make([]roster.Player, roster.TeamSize)
	for i := range players {
		players[i] = roster.Player{
			ID:          fmt.Sprintf("%s-p%d", teamID, i+1),
			Nickname:    fmt.Sprintf("%s-player-%d", teamID, i+1),
			Elo:         elo,
			HoursPlayed: hours,
		}
	}
	store.AddTeam(teamID, "Team "+teamID, players...)
	return players
}

func TestSettle_Team1Wins(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1000, 0)
	seedTeam(d.store, "B", 1000, 0)
	bystander := roster.Player{ID: "x", Nickname: "bystander", Elo: 1000, HoursPlayed: 7}
	d.store.AddPlayer(bystander)

	result, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 600}, false)
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.False(t, result.SettledAt.IsZero())

	for i := 1; i <= roster.TeamSize; i++ {
		winner, _ := d.store.Player(fmt.Sprintf("A-p%d", i))
		assert.InDelta(t, 1020.0, winner.Elo, 1e-9)
		assert.Equal(t, 600, winner.HoursPlayed)
		assert.Equal(t, 1, winner.Wins)
		assert.Zero(t, winner.Losses)

		loser, _ := d.store.Player(fmt.Sprintf("B-p%d", i))
		assert.InDelta(t, 980.0, loser.Elo, 1e-9)
		assert.Equal(t, 600, loser.HoursPlayed)
		assert.Zero(t, loser.Wins)
		assert.Equal(t, 1, loser.Losses)
	}
	untouched, _ := d.store.Player("x")
	assert.Equal(t, bystander, untouched)

	assert.Equal(t, 1, d.store.Commits)
	require.Len(t, d.store.ApplyPlayerUpdatesCalls, 1)
	assert.Len(t, d.store.ApplyPlayerUpdatesCalls[0], 10)

	assert.Equal(t, 1, d.metrics.Settlements("TEAM1"))
	assert.Len(t, d.metrics.EloDeltas(), 10)
	require.Len(t, d.board.RecordCalls, 1)
	assert.Len(t, d.board.RecordCalls[0], 10)
	sent := d.pubsub.Sent(pubsub.EventMatchSettled)
	require.Len(t, sent, 1)
	assert.Same(t, result, sent[0].Data)
}

func TestSettle_Draw(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1100, 0)
	seedTeam(d.store, "B", 900, 0)

	_, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "B", Duration: 10000}, false)
	require.NoError(t, err)

	a, _ := d.store.Player("A-p1")
	b, _ := d.store.Player("B-p1")
	assert.InDelta(t, 1100+10*(0.5-settlement.ExpectedScore(1100, 900)), a.Elo, 1e-9)
	assert.InDelta(t, 900+10*(0.5-settlement.ExpectedScore(900, 1100)), b.Elo, 1e-9)
	assert.Less(t, a.Elo, 1100.0)
	assert.Greater(t, b.Elo, 900.0)
	for _, p := range []roster.Player{a, b} {
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
		assert.Equal(t, 10000, p.HoursPlayed)
	}
	assert.Equal(t, 1, d.metrics.Settlements("DRAW"))
}

func TestSettle_RejectsSameTeamsWithoutTouchingStore(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1000, 0)

	_, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "A", WinningTeamID: "A", Duration: 60}, false)
	require.ErrorIs(t, err, settlement.ErrSameTeams)
	assert.Equal(t, settlement.ClassValidation, settlement.ClassOf(err))

	assert.Zero(t, d.store.WithinTxCalls)
	assert.Empty(t, d.store.ApplyPlayerUpdatesCalls)
	assert.Equal(t, 1, d.metrics.SettlementFailures("validation"))
	assert.Empty(t, d.pubsub.SendMessageCalls)
}

func TestSettle_Errors(t *testing.T) {
	tests := []struct {
		name      string
		match     settlement.Match
		setup     func(d engineDeps)
		wantErr   error
		wantClass settlement.Class
	}{
		{
			name:      "unknown team1",
			match:     settlement.Match{Team1ID: "ghost", Team2ID: "B", Duration: 60},
			wantErr:   settlement.ErrTeamNotFound,
			wantClass: settlement.ClassLookup,
		},
		{
			name:      "unknown team2",
			match:     settlement.Match{Team1ID: "A", Team2ID: "ghost", Duration: 60},
			wantErr:   settlement.ErrTeamNotFound,
			wantClass: settlement.ClassLookup,
		},
		{
			name:      "winner not in match",
			match:     settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "C", Duration: 60},
			wantErr:   settlement.ErrInvalidWinner,
			wantClass: settlement.ClassValidation,
		},
		{
			name:      "non-positive duration",
			match:     settlement.Match{Team1ID: "A", Team2ID: "B", Duration: 0},
			wantErr:   settlement.ErrInvalidDuration,
			wantClass: settlement.ClassValidation,
		},
		{
			name:  "empty roster",
			match: settlement.Match{Team1ID: "A", Team2ID: "E", Duration: 60},
			setup: func(d engineDeps) {
				d.store.AddTeam("E", "Empty")
			},
			wantErr:   settlement.ErrEmptyRoster,
			wantClass: settlement.ClassIntegrity,
		},
		{
			name:  "short roster",
			match: settlement.Match{Team1ID: "A", Team2ID: "S", Duration: 60},
			setup: func(d engineDeps) {
				d.store.AddTeam("S", "Short", roster.Player{ID: "s1", Nickname: "s1"}, roster.Player{ID: "s2", Nickname: "s2"})
			},
			wantErr:   settlement.ErrRosterSize,
			wantClass: settlement.ClassIntegrity,
		},
		{
			name:  "roster read failure",
			match: settlement.Match{Team1ID: "A", Team2ID: "B", Duration: 60},
			setup: func(d engineDeps) {
				d.store.ResolveRosterFunc = func(string) (bool, []roster.Player, error) {
					return false, nil, errors.New("disk on fire")
				}
			},
			wantErr:   settlement.ErrPersistence,
			wantClass: settlement.ClassPersistence,
		},
		{
			name:  "commit failure",
			match: settlement.Match{Team1ID: "A", Team2ID: "B", Duration: 60},
			setup: func(d engineDeps) {
				d.store.CommitFunc = func() error { return errors.New("database is locked") }
			},
			wantErr:   settlement.ErrPersistence,
			wantClass: settlement.ClassPersistence,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupEngine(t)
			seedTeam(d.store, "A", 1000, 0)
			seedTeam(d.store, "B", 1000, 0)
			if tt.setup != nil {
				tt.setup(d)
			}

			result, err := d.engine.Settle(context.Background(), tt.match, false)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantClass, settlement.ClassOf(err))
			assert.Equal(t, 1, d.metrics.SettlementFailures(string(tt.wantClass)))
			assert.Zero(t, d.store.Commits)

			p, _ := d.store.Player("A-p1")
			assert.Zero(t, p.HoursPlayed)
			assert.Empty(t, d.pubsub.Sent(pubsub.EventMatchSettled))
			assert.Empty(t, d.board.RecordCalls)
		})
	}
}

func TestSettle_FailureOnLastWriteLeavesEveryoneUntouched(t *testing.T) {
	d := setupEngine(t)
	team1 := seedTeam(d.store, "A", 1000, 100)
	team2 := seedTeam(d.store, "B", 1000, 100)
	d.store.FailOnUpdate = func(index int, _ roster.PlayerUpdate) error {
		if index == 9 {
			return errors.New("injected write failure")
		}
		return nil
	}

	_, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "B", Duration: 60}, false)
	require.ErrorIs(t, err, settlement.ErrPersistence)
	assert.Equal(t, settlement.ClassPersistence, settlement.ClassOf(err))

	for _, before := range append(team1, team2...) {
		after, _ := d.store.Player(before.ID)
		assert.Equal(t, before.Elo, after.Elo)
		assert.Equal(t, before.HoursPlayed, after.HoursPlayed)
		assert.Equal(t, before.Wins, after.Wins)
		assert.Equal(t, before.Losses, after.Losses)
	}
	assert.Equal(t, 1, d.store.Rollbacks)
}

func TestSettle_DryRunRollsBack(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1000, 0)
	seedTeam(d.store, "B", 1000, 0)

	result, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 600}, true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.InDelta(t, 1020.0, result.Changes[0].EloAfter, 1e-9)

	p, _ := d.store.Player("A-p1")
	assert.InDelta(t, 1000.0, p.Elo, 1e-9)
	assert.Zero(t, p.HoursPlayed)
	assert.Zero(t, d.store.Commits)
	assert.Equal(t, 1, d.store.Rollbacks)
	assert.Empty(t, d.pubsub.SendMessageCalls)
	assert.Empty(t, d.board.RecordCalls)
	assert.Zero(t, d.metrics.Settlements("TEAM1"))
}

func TestSettle_SideEffectFailuresDoNotFailSettlement(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1000, 0)
	seedTeam(d.store, "B", 1000, 0)
	d.board.RecordFunc = func([]leaderboard.Standing) error { return errors.New("redis down") }
	d.pubsub.SendMessageFunc = func(pubsub.EventType, any) error { return errors.New("pubsub down") }

	_, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 60}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, d.store.Commits)
}

type announcerFunc func(ctx context.Context, result *settlement.Result) error

func (f announcerFunc) AnnounceSettlement(ctx context.Context, result *settlement.Result) error {
	return f(ctx, result)
}

func TestSettle_AnnouncesCommittedSettlements(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1000, 0)
	seedTeam(d.store, "B", 1000, 0)

	var announced []*settlement.Result
	d.engine.AnnounceWith(announcerFunc(func(_ context.Context, result *settlement.Result) error {
		announced = append(announced, result)
		return nil
	}))

	m := settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "B", Duration: 60}
	_, err := d.engine.Settle(context.Background(), m, true)
	require.NoError(t, err)
	assert.Empty(t, announced, "dry runs are not announced")

	_, err = d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "A", Duration: 60}, false)
	require.Error(t, err)
	assert.Empty(t, announced, "rejected matches are not announced")

	result, err := d.engine.Settle(context.Background(), m, false)
	require.NoError(t, err)
	require.Len(t, announced, 1)
	assert.Same(t, result, announced[0])
	assert.Equal(t, settlement.OutcomeTeam2, announced[0].Outcome)

	t.Run("announcement failures do not fail the settlement", func(t *testing.T) {
		d.engine.AnnounceWith(announcerFunc(func(context.Context, *settlement.Result) error {
			return errors.New("slack down")
		}))
		_, err := d.engine.Settle(context.Background(), m, false)
		require.NoError(t, err)
		assert.Equal(t, 2, d.store.Commits)
	})
}

func TestSettle_SharedPlayersAreSerialized(t *testing.T) {
	d := setupEngine(t)
	seedTeam(d.store, "A", 1000, 0)
	seedTeam(d.store, "B", 1000, 0)

	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.engine.Settle(context.Background(), settlement.Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 1}, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, _ := d.store.Player("A-p1")
	assert.Equal(t, rounds, p.Wins)
	assert.Equal(t, rounds, p.HoursPlayed)
	q, _ := d.store.Player("B-p3")
	assert.Equal(t, rounds, q.Losses)
}

// The same settlement against the real SQLite store.
func TestSettle_SQLite(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()
	ctx := context.Background()

	store := roster.New(db)
	newTeam := func(name string) *roster.Team {
		ids := make([]string, 0, roster.TeamSize)
		for i := 1; i <= roster.TeamSize; i++ {
			p, err := store.CreatePlayer(ctx, fmt.Sprintf("%s-%d", name, i), 1000)
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}
		team, err := store.CreateTeam(ctx, name, ids)
		require.NoError(t, err)
		return team
	}
	home := newTeam("home")
	away := newTeam("away")
	engine := settlement.NewEngine(store, metrics.NewMock(), pubsub.NewNoop(), leaderboard.NewStoreBacked(store))

	t.Run("settles all ten players", func(t *testing.T) {
		_, err := engine.Settle(ctx, settlement.Match{Team1ID: home.ID, Team2ID: away.ID, WinningTeamID: home.ID, Duration: 600}, false)
		require.NoError(t, err)

		got, err := store.GetTeam(ctx, home.ID)
		require.NoError(t, err)
		for _, p := range got.Players {
			assert.InDelta(t, 1020.0, p.Elo, 1e-9)
			assert.Equal(t, 1, p.Wins)
			assert.Equal(t, 600, p.HoursPlayed)
		}
		got, err = store.GetTeam(ctx, away.ID)
		require.NoError(t, err)
		for _, p := range got.Players {
			assert.InDelta(t, 980.0, p.Elo, 1e-9)
			assert.Equal(t, 1, p.Losses)
		}
	})

	t.Run("failure on the last write rolls back", func(t *testing.T) {
		before, err := store.ListPlayers(ctx)
		require.NoError(t, err)

		last := away.Players[len(away.Players)-1].ID
		_, err = db.Exec(fmt.Sprintf(`
			CREATE TRIGGER fail_settlement BEFORE UPDATE OF elo ON players
			WHEN NEW.id = '%s'
			BEGIN SELECT RAISE(ABORT, 'injected failure'); END;`, last))
		require.NoError(t, err)
		defer db.Exec("DROP TRIGGER fail_settlement")

		_, err = engine.Settle(ctx, settlement.Match{Team1ID: home.ID, Team2ID: away.ID, Duration: 60}, false)
		require.ErrorIs(t, err, settlement.ErrPersistence)

		after, err := store.ListPlayers(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := engine.Settle(ctx, settlement.Match{Team1ID: home.ID, Team2ID: "missing", Duration: 60}, false)
		assert.ErrorIs(t, err, settlement.ErrTeamNotFound)
	})
}
