package notifier

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/roster"
)

var _ Notifier = Noop{}

// Noop is used when Slack is not configured. Notifications are only logged.
type Noop struct{}

func (Noop) SendSettlementNotification(settled Settlement, dryRun bool) error {
	log.Debug("Notifications disabled, skipping settlement notification", "team1", settled.Result.Team1ID, "team2", settled.Result.Team2ID)
	return nil
}

func (Noop) SendTeamCreatedNotification(team *roster.Team, dryRun bool) error {
	log.Debug("Notifications disabled, skipping team notification", "teamID", team.ID)
	return nil
}

func (Noop) SendLeaderboard(standings []leaderboard.Standing, dryRun bool) error {
	return nil
}

// FormatLeaderboardResponse renders a plain text ephemeral response.
func (Noop) FormatLeaderboardResponse(standings []leaderboard.Standing) (any, error) {
	var b strings.Builder
	for _, s := range standings {
		fmt.Fprintf(&b, "%d. %s (%.0f)\n", s.Rank, s.Nickname, s.Elo)
	}
	return map[string]string{"response_type": "ephemeral", "text": b.String()}, nil
}
