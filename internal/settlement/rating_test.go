package settlement

import (
	"fmt"
	"math"
	"testing"

	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTeam(prefix string, elo float64, hours int) []roster.Player {
	players := make([]roster.Player, roster.TeamSize)
	for i := range players {
		players[i] = roster.Player{
			ID:          fmt.Sprintf("%s-%d", prefix, i+1),
			Nickname:    fmt.Sprintf("%s-%d", prefix, i+1),
			Elo:         elo,
			HoursPlayed: hours,
		}
	}
	return players
}

func TestKFactor(t *testing.T) {
	tests := []struct {
		hours int
		want  int
	}{
		{0, 50},
		{499, 50},
		{500, 40},
		{999, 40},
		{1000, 30},
		{2999, 30},
		{3000, 20},
		{4999, 20},
		{5000, 10},
		{100000, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d hours", tt.hours), func(t *testing.T) {
			assert.Equal(t, tt.want, KFactor(tt.hours))
		})
	}
}

func TestKFactor_UsesHoursAfterTheMatch(t *testing.T) {
	boundaries := []struct {
		before, after int
	}{
		{50, 40},
		{40, 30},
		{30, 20},
		{20, 10},
	}
	for i, edge := range []int{500, 1000, 3000, 5000} {
		t.Run(fmt.Sprintf("boundary %d", edge), func(t *testing.T) {
			// one hour short of the boundary before the match, crossing it with the match itself
			team1 := makeTeam("a", 1000, edge-2)
			team2 := makeTeam("b", 1000, edge-2)

			below, err := Compute(Match{Team1ID: "A", Team2ID: "B", Duration: 1}, team1, team2)
			require.NoError(t, err)
			assert.Equal(t, edge-1, below.Changes[0].HoursAfter)
			assert.Equal(t, boundaries[i].before, below.Changes[0].K)

			at, err := Compute(Match{Team1ID: "A", Team2ID: "B", Duration: 2}, team1, team2)
			require.NoError(t, err)
			assert.Equal(t, edge, at.Changes[0].HoursAfter)
			assert.Equal(t, boundaries[i].after, at.Changes[0].K)
		})
	}
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1000, 1000), 1e-12)
	assert.InDelta(t, 1/(1+math.Pow(10, 0.5)), ExpectedScore(1000, 1200), 1e-12)
	assert.InDelta(t, 1.0, ExpectedScore(1200, 1000)+ExpectedScore(1000, 1200), 1e-12)
}

func TestActualScore(t *testing.T) {
	assert.Equal(t, 1.0, OutcomeTeam1.ActualScore(SideTeam1))
	assert.Equal(t, 0.0, OutcomeTeam1.ActualScore(SideTeam2))
	assert.Equal(t, 0.0, OutcomeTeam2.ActualScore(SideTeam1))
	assert.Equal(t, 1.0, OutcomeTeam2.ActualScore(SideTeam2))
	assert.Equal(t, 0.5, OutcomeDraw.ActualScore(SideTeam1))
	assert.Equal(t, 0.5, OutcomeDraw.ActualScore(SideTeam2))
}

func TestAverageElo(t *testing.T) {
	avg, err := AverageElo([]roster.Player{{Elo: 900}, {Elo: 1100}, {Elo: 1300}})
	require.NoError(t, err)
	assert.InDelta(t, 1100.0, avg, 1e-12)

	_, err = AverageElo(nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestMatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		match   Match
		wantErr error
	}{
		{"valid decisive", Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "B", Duration: 1}, nil},
		{"valid draw", Match{Team1ID: "A", Team2ID: "B", Duration: 1}, nil},
		{"missing team1", Match{Team2ID: "B", Duration: 1}, ErrMissingFields},
		{"missing team2", Match{Team1ID: "A", Duration: 1}, ErrMissingFields},
		{"zero duration", Match{Team1ID: "A", Team2ID: "B"}, ErrInvalidDuration},
		{"negative duration", Match{Team1ID: "A", Team2ID: "B", Duration: -5}, ErrInvalidDuration},
		{"longest accepted duration", Match{Team1ID: "A", Team2ID: "B", Duration: MaxDuration}, nil},
		{"duration above the limit", Match{Team1ID: "A", Team2ID: "B", Duration: MaxDuration + 1}, ErrInvalidDuration},
		{"max int duration", Match{Team1ID: "A", Team2ID: "B", Duration: math.MaxInt}, ErrInvalidDuration},
		{"same teams", Match{Team1ID: "A", Team2ID: "A", Duration: 1}, ErrSameTeams},
		{"foreign winner", Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "C", Duration: 1}, ErrInvalidWinner},
		{"missing fields reported before duration", Match{Team1ID: "A"}, ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.match.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ClassValidation, ClassOf(err))
		})
	}
}

func TestCompute_Team1WinsEvenMatch(t *testing.T) {
	result, err := Compute(
		Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 600},
		makeTeam("a", 1000, 0), makeTeam("b", 1000, 0),
	)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTeam1, result.Outcome)
	require.Len(t, result.Changes, 10)

	for _, c := range result.Changes {
		assert.Equal(t, 600, c.HoursAfter)
		assert.Equal(t, 40, c.K)
		assert.InDelta(t, 0.5, c.Expected, 1e-12)
		if c.Side == SideTeam1 {
			assert.InDelta(t, 1020.0, c.EloAfter, 1e-9, c.PlayerID)
			assert.Equal(t, 1, c.Wins)
			assert.Zero(t, c.Losses)
		} else {
			assert.InDelta(t, 980.0, c.EloAfter, 1e-9, c.PlayerID)
			assert.Zero(t, c.Wins)
			assert.Equal(t, 1, c.Losses)
		}
	}
	assert.Equal(t, "A", result.WinningTeamID())
}

func TestCompute_DrawMovesTowardsOpponentAverage(t *testing.T) {
	team1 := makeTeam("a", 1000, 0)
	team1[0].Elo = 1400
	team2 := makeTeam("b", 1100, 0)
	for i := range team2 {
		team2[i].Wins, team2[i].Losses = 3, 2
	}

	result, err := Compute(Match{Team1ID: "A", Team2ID: "B", Duration: 10000}, team1, team2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDraw, result.Outcome)
	assert.Empty(t, result.WinningTeamID())

	avg1, _ := AverageElo(team1)
	avg2, _ := AverageElo(team2)
	for _, c := range result.Changes {
		assert.Equal(t, 10, c.K)
		opp := avg2
		if c.Side == SideTeam2 {
			opp = avg1
			assert.Equal(t, 3, c.Wins)
			assert.Equal(t, 2, c.Losses)
		} else {
			assert.Zero(t, c.Wins)
			assert.Zero(t, c.Losses)
		}
		want := c.EloBefore + 10*(0.5-ExpectedScore(c.EloBefore, opp))
		assert.InDelta(t, want, c.EloAfter, 1e-9)
		// a draw pulls each rating towards the opposing average
		if c.EloBefore > opp {
			assert.Less(t, c.EloAfter, c.EloBefore)
		} else if c.EloBefore < opp {
			assert.Greater(t, c.EloAfter, c.EloBefore)
		}
	}
}

func TestCompute_UsesPreMatchAverages(t *testing.T) {
	team1 := makeTeam("a", 1200, 0)
	team2 := makeTeam("b", 1000, 0)
	result, err := Compute(Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "B", Duration: 60}, team1, team2)
	require.NoError(t, err)

	for _, c := range result.Changes {
		opp := 1000.0
		if c.Side == SideTeam2 {
			opp = 1200.0
		}
		want := c.EloBefore + float64(KFactor(c.HoursAfter))*(c.Actual-ExpectedScore(c.EloBefore, opp))
		assert.InDelta(t, want, c.EloAfter, 1e-9)
	}
}

func TestCompute_RosterIntegrity(t *testing.T) {
	m := Match{Team1ID: "A", Team2ID: "B", Duration: 60}

	_, err := Compute(m, nil, makeTeam("b", 1000, 0))
	assert.ErrorIs(t, err, ErrEmptyRoster)
	assert.Equal(t, ClassIntegrity, ClassOf(err))

	_, err = Compute(m, makeTeam("a", 1000, 0), makeTeam("b", 1000, 0)[:4])
	assert.ErrorIs(t, err, ErrRosterSize)
	assert.Equal(t, ClassIntegrity, ClassOf(err))
}

func TestCompute_RejectsHoursOverflow(t *testing.T) {
	t.Run("oversized duration", func(t *testing.T) {
		result, err := Compute(Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: math.MaxInt}, makeTeam("a", 1000, 600), makeTeam("b", 1000, 0))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidDuration)
		assert.Equal(t, ClassValidation, ClassOf(err))
	})

	t.Run("player hours near the limit", func(t *testing.T) {
		team2 := makeTeam("b", 1000, 0)
		team2[4].HoursPlayed = math.MaxInt - 10
		result, err := Compute(Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 11}, makeTeam("a", 1000, 0), team2)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidDuration)
		assert.Equal(t, ClassValidation, ClassOf(err))
		assert.Contains(t, err.Error(), "b-5")
	})

	t.Run("sum exactly at the limit is kept", func(t *testing.T) {
		team2 := makeTeam("b", 1000, 0)
		team2[4].HoursPlayed = math.MaxInt - 10
		result, err := Compute(Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "A", Duration: 10}, makeTeam("a", 1000, 0), team2)
		require.NoError(t, err)
		last := result.Changes[len(result.Changes)-1]
		assert.Equal(t, math.MaxInt, last.HoursAfter)
		assert.Equal(t, 10, last.K)
	})
}

func TestResultUpdates(t *testing.T) {
	result, err := Compute(Match{Team1ID: "A", Team2ID: "B", WinningTeamID: "B", Duration: 30}, makeTeam("a", 1000, 10), makeTeam("b", 1000, 10))
	require.NoError(t, err)

	updates := result.Updates()
	require.Len(t, updates, 10)
	assert.Equal(t, "a-1", updates[0].PlayerID)
	assert.Equal(t, "b-5", updates[9].PlayerID)
	for i, u := range updates {
		assert.Equal(t, 40, u.HoursPlayed)
		assert.Equal(t, result.Changes[i].EloAfter, u.Elo)
	}
}

func TestClassOf_Unclassified(t *testing.T) {
	assert.Equal(t, ClassPersistence, ClassOf(fmt.Errorf("boom")))
}
