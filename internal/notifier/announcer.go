package notifier

import (
	"context"

	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
)

type teamGetter interface {
	GetTeam(ctx context.Context, teamID string) (*roster.Team, error)
}

// AnnounceSettlement looks up both team names and sends the settlement notification.
// A team that cannot be looked up is announced without a name.
func AnnounceSettlement(ctx context.Context, teams teamGetter, n Notifier, result *settlement.Result, dryRun bool) error {
	settled := Settlement{Result: result}
	if team, err := teams.GetTeam(ctx, result.Team1ID); err == nil {
		settled.Team1Name = team.TeamName
	}
	if team, err := teams.GetTeam(ctx, result.Team2ID); err == nil {
		settled.Team2Name = team.TeamName
	}
	return n.SendSettlementNotification(settled, dryRun)
}

// Announcer sends settlement notifications in-process, straight from the engine.
type Announcer struct {
	teams    teamGetter
	notifier Notifier
}

var _ settlement.Announcer = (*Announcer)(nil)

func NewAnnouncer(teams teamGetter, n Notifier) *Announcer {
	return &Announcer{teams: teams, notifier: n}
}

func (a *Announcer) AnnounceSettlement(ctx context.Context, result *settlement.Result) error {
	return AnnounceSettlement(ctx, a.teams, a.notifier, result, result.DryRun)
}
