package settlement

import (
	"fmt"
	"math"

	"github.com/mauv0809/team-ladder/internal/roster"
)

// KFactor is the largest rating swing a player can get from one match.
// It steps down as cumulative hours grow.
func KFactor(hoursPlayed int) int {
	switch {
	case hoursPlayed < 500:
		return 50
	case hoursPlayed < 1000:
		return 40
	case hoursPlayed < 3000:
		return 30
	case hoursPlayed < 5000:
		return 20
	default:
		return 10
	}
}

// ExpectedScore is the predicted chance a player rated rating beats a team averaging opponentAverage.
func ExpectedScore(rating, opponentAverage float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentAverage-rating)/400))
}

// AverageElo is the mean elo of players.
func AverageElo(players []roster.Player) (float64, error) {
	if len(players) == 0 {
		return 0, ErrEmptyRoster
	}
	var sum float64
	for _, p := range players {
		sum += p.Elo
	}
	return sum / float64(len(players)), nil
}

// MaxDuration is the longest single match accepted, in hours.
const MaxDuration = math.MaxInt32

// Validate checks the match fields in a fixed order so the first problem wins.
func (m Match) Validate() error {
	switch {
	case m.Team1ID == "" || m.Team2ID == "":
		return newError(ClassValidation, ErrMissingFields)
	case m.Duration <= 0 || m.Duration > MaxDuration:
		return newError(ClassValidation, ErrInvalidDuration)
	case m.Team1ID == m.Team2ID:
		return newError(ClassValidation, ErrSameTeams)
	case m.WinningTeamID != "" && m.WinningTeamID != m.Team1ID && m.WinningTeamID != m.Team2ID:
		return newError(ClassValidation, ErrInvalidWinner)
	}
	return nil
}

func (m Match) Outcome() Outcome {
	switch m.WinningTeamID {
	case "":
		return OutcomeDraw
	case m.Team1ID:
		return OutcomeTeam1
	default:
		return OutcomeTeam2
	}
}

// ActualScore is S for a player on side: 1 for a win, 0 for a loss, 0.5 for a draw.
func (o Outcome) ActualScore(side Side) float64 {
	switch {
	case o == OutcomeDraw:
		return 0.5
	case o == OutcomeTeam1 && side == SideTeam1, o == OutcomeTeam2 && side == SideTeam2:
		return 1
	default:
		return 0
	}
}

func checkRoster(teamID string, players []roster.Player) error {
	if len(players) == 0 {
		return newError(ClassIntegrity, fmt.Errorf("team %s: %w", teamID, ErrEmptyRoster))
	}
	if len(players) != roster.TeamSize {
		return newError(ClassIntegrity, fmt.Errorf("team %s has %d players: %w", teamID, len(players), ErrRosterSize))
	}
	return nil
}

// Compute settles m over the given pre-match roster snapshots without touching storage.
// Both team averages are taken before any player is changed.
func Compute(m Match, team1, team2 []roster.Player) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := checkRoster(m.Team1ID, team1); err != nil {
		return nil, err
	}
	if err := checkRoster(m.Team2ID, team2); err != nil {
		return nil, err
	}

	for _, p := range append(append([]roster.Player{}, team1...), team2...) {
		if p.HoursPlayed > math.MaxInt-m.Duration {
			return nil, newError(ClassValidation, fmt.Errorf("player %s with %d hours: %w", p.ID, p.HoursPlayed, ErrInvalidDuration))
		}
	}

	avg1, _ := AverageElo(team1)
	avg2, _ := AverageElo(team2)
	outcome := m.Outcome()

	result := &Result{
		Team1ID:  m.Team1ID,
		Team2ID:  m.Team2ID,
		Outcome:  outcome,
		Duration: m.Duration,
		Changes:  make([]PlayerChange, 0, len(team1)+len(team2)),
	}
	for _, side := range []struct {
		side        Side
		teamID      string
		players     []roster.Player
		opponentAvg float64
	}{
		{SideTeam1, m.Team1ID, team1, avg2},
		{SideTeam2, m.Team2ID, team2, avg1},
	} {
		actual := outcome.ActualScore(side.side)
		for _, p := range side.players {
			hours := p.HoursPlayed + m.Duration
			k := KFactor(hours)
			expected := ExpectedScore(p.Elo, side.opponentAvg)

			change := PlayerChange{
				PlayerID:    p.ID,
				Nickname:    p.Nickname,
				TeamID:      side.teamID,
				Side:        side.side,
				EloBefore:   p.Elo,
				EloAfter:    p.Elo + float64(k)*(actual-expected),
				K:           k,
				Expected:    expected,
				Actual:      actual,
				HoursBefore: p.HoursPlayed,
				HoursAfter:  hours,
				Wins:        p.Wins,
				Losses:      p.Losses,
			}
			switch actual {
			case 1:
				change.Wins++
			case 0:
				change.Losses++
			}
			result.Changes = append(result.Changes, change)
		}
	}
	return result, nil
}

// Updates converts the result into the writes applied by the roster store.
func (r *Result) Updates() []roster.PlayerUpdate {
	updates := make([]roster.PlayerUpdate, len(r.Changes))
	for i, c := range r.Changes {
		updates[i] = roster.PlayerUpdate{
			PlayerID:    c.PlayerID,
			Wins:        c.Wins,
			Losses:      c.Losses,
			HoursPlayed: c.HoursAfter,
			Elo:         c.EloAfter,
		}
	}
	return updates
}

// WinningTeamID returns the id of the winner, or "" for a draw.
func (r *Result) WinningTeamID() string {
	switch r.Outcome {
	case OutcomeTeam1:
		return r.Team1ID
	case OutcomeTeam2:
		return r.Team2ID
	}
	return ""
}
