package settlement

import (
	"context"
	"time"

	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
)

// Match is the transient input to a settlement. An empty WinningTeamID is a draw.
type Match struct {
	Team1ID       string `json:"team1Id" msgpack:"team1Id"`
	Team2ID       string `json:"team2Id" msgpack:"team2Id"`
	WinningTeamID string `json:"winningTeamId,omitempty" msgpack:"winningTeamId"`
	Duration      int    `json:"duration" msgpack:"duration"`
}

type Outcome string

const (
	OutcomeDraw  Outcome = "DRAW"
	OutcomeTeam1 Outcome = "TEAM1"
	OutcomeTeam2 Outcome = "TEAM2"
)

// Side identifies which team of the match a player was on.
type Side int

const (
	SideTeam1 Side = iota + 1
	SideTeam2
)

// PlayerChange is the before/after snapshot of one settled player.
type PlayerChange struct {
	PlayerID    string  `msgpack:"playerId"`
	Nickname    string  `msgpack:"nickname"`
	TeamID      string  `msgpack:"teamId"`
	Side        Side    `msgpack:"side"`
	EloBefore   float64 `msgpack:"eloBefore"`
	EloAfter    float64 `msgpack:"eloAfter"`
	K           int     `msgpack:"k"`
	Expected    float64 `msgpack:"expected"`
	Actual      float64 `msgpack:"actual"`
	HoursBefore int     `msgpack:"hoursBefore"`
	HoursAfter  int     `msgpack:"hoursAfter"`
	Wins        int     `msgpack:"wins"`
	Losses      int     `msgpack:"losses"`
}

// Result records a settlement. Changes lists team1's players first, then team2's.
type Result struct {
	Team1ID   string         `msgpack:"team1Id"`
	Team2ID   string         `msgpack:"team2Id"`
	Outcome   Outcome        `msgpack:"outcome"`
	Duration  int            `msgpack:"duration"`
	DryRun    bool           `msgpack:"dryRun"`
	SettledAt time.Time      `msgpack:"settledAt"`
	Changes   []PlayerChange `msgpack:"changes"`
}

// txRunner is the part of roster.RosterStore the engine needs.
type txRunner interface {
	WithinTx(ctx context.Context, fn func(tx roster.Tx) error) error
}

// Announcer is told about every committed settlement.
type Announcer interface {
	AnnounceSettlement(ctx context.Context, result *Result) error
}

// Engine settles matches against the roster store.
type Engine struct {
	store     txRunner
	metrics   metrics.Metrics
	publisher pubsub.PubSubClient
	board     leaderboard.Leaderboard
	announcer Announcer
	now       func() time.Time
}
