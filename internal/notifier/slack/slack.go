package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/notifier"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendSettlementNotification(settled notifier.Settlement, dryRun bool) error {
	_, _, err := s.sendMessage(formatSettlement(settled), dryRun)
	return err
}

func (s *Notifier) SendTeamCreatedNotification(team *roster.Team, dryRun bool) error {
	_, _, err := s.sendMessage(formatTeamCreated(team), dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(standings []leaderboard.Standing, dryRun bool) error {
	_, _, err := s.sendMessage(formatLeaderboard(standings), dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(standings []leaderboard.Standing) (any, error) {
	return formatLeaderboard(standings), nil
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject("plain_text", text, true, false)
}

func teamLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

// displayElo rounds for display only; stored ratings keep full precision.
func displayElo(elo float64) int {
	return int(math.Round(elo))
}

// formatSettlement creates the Slack message for a settled match using Block Kit.
func formatSettlement(settled notifier.Settlement) slack.Message {
	result := settled.Result
	team1 := teamLabel(settled.Team1Name, result.Team1ID)
	team2 := teamLabel(settled.Team2Name, result.Team2ID)

	blocks := make([]slack.Block, 0)
	blocks = append(blocks, slack.NewHeaderBlock(plainText("🏁 Match settled 🏁")))

	var summary string
	switch result.Outcome {
	case settlement.OutcomeTeam1:
		summary = fmt.Sprintf("%s beat %s! 🏆", team1, team2)
	case settlement.OutcomeTeam2:
		summary = fmt.Sprintf("%s beat %s! 🏆", team2, team1)
	default:
		summary = fmt.Sprintf("%s and %s played to a draw 🤝", team1, team2)
	}
	blocks = append(blocks, slack.NewSectionBlock(plainText(summary), nil, nil))

	for _, side := range []struct {
		side settlement.Side
		name string
	}{
		{settlement.SideTeam1, team1},
		{settlement.SideTeam2, team2},
	} {
		var lines []string
		for _, c := range result.Changes {
			if c.Side != side.side {
				continue
			}
			before, after := displayElo(c.EloBefore), displayElo(c.EloAfter)
			lines = append(lines, fmt.Sprintf("• %s: %d → %d (%+d)", c.Nickname, before, after, after-before))
		}
		if len(lines) == 0 {
			continue
		}
		text := fmt.Sprintf("%s\n%s", side.name, strings.Join(lines, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(plainText(text), nil, nil))
	}

	blocks = append(blocks, slack.NewContextBlock("", plainText(fmt.Sprintf("⏱️ %d hours played", result.Duration))))
	return slack.NewBlockMessage(blocks...)
}

// formatTeamCreated announces a newly formed team and its members.
func formatTeamCreated(team *roster.Team) slack.Message {
	blocks := make([]slack.Block, 0)
	blocks = append(blocks, slack.NewHeaderBlock(plainText(fmt.Sprintf("🆕 New team: %s", team.TeamName))))

	var names []string
	for _, p := range team.Players {
		names = append(names, fmt.Sprintf("• %s", p.Nickname))
	}
	if len(names) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(plainText("Players:\n"+strings.Join(names, "\n")), nil, nil))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the elo leaderboard.
func formatLeaderboard(standings []leaderboard.Standing) slack.Message {
	blocks := make([]slack.Block, 0)
	blocks = append(blocks, slack.NewHeaderBlock(plainText("🏆 Ladder Leaderboard 🏆")))

	if len(standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(plainText("No ratings available yet. Go play some matches!"), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, s := range standings {
		rank := s.Rank
		if rank == 0 {
			rank = i + 1
		}
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		text := fmt.Sprintf("%d. %s %s\n> Elo: %d", rank, medal, s.Nickname, displayElo(s.Elo))
		blocks = append(blocks, slack.NewSectionBlock(plainText(text), nil, nil))
	}
	return slack.NewBlockMessage(blocks...)
}
