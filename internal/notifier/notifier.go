package notifier

import (
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For settled matches
	SendSettlementNotification(settled Settlement, dryRun bool) error
	// For newly formed teams
	SendTeamCreatedNotification(team *roster.Team, dryRun bool) error
	SendLeaderboard(standings []leaderboard.Standing, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(standings []leaderboard.Standing) (any, error)
}

// Settlement is a settled match together with the display names of both teams.
type Settlement struct {
	Result    *settlement.Result
	Team1Name string
	Team2Name string
}
