package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	teamName    string
	teamPlayers []string

	team1ID       string
	team2ID       string
	winningTeamID string
	duration      int
	dryRun        bool
	async         bool

	leaderboardLimit int
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)

	playersCmd.AddCommand(playersListCmd, playersGetCmd, playersCreateCmd)
	rootCmd.AddCommand(playersCmd)

	teamsCreateCmd.Flags().StringVar(&teamName, "name", "", "Name of the team")
	teamsCreateCmd.Flags().StringSliceVar(&teamPlayers, "player", nil, "Player id, repeat five times")
	teamsCreateCmd.MarkFlagRequired("name")
	teamsCmd.AddCommand(teamsListCmd, teamsGetCmd, teamsCreateCmd)
	rootCmd.AddCommand(teamsCmd)

	settleCmd.Flags().StringVar(&team1ID, "team1", "", "Id of the first team")
	settleCmd.Flags().StringVar(&team2ID, "team2", "", "Id of the second team")
	settleCmd.Flags().StringVar(&winningTeamID, "winner", "", "Id of the winning team, omit for a draw")
	settleCmd.Flags().IntVar(&duration, "duration", 0, "Match duration in hours")
	settleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the settlement without saving it")
	settleCmd.Flags().BoolVar(&async, "async", false, "Queue the match instead of settling it right away")
	settleCmd.MarkFlagRequired("team1")
	settleCmd.MarkFlagRequired("team2")
	settleCmd.MarkFlagRequired("duration")
	matchesCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(matchesCmd)

	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 10, "Number of players to show")
	rootCmd.AddCommand(leaderboardCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Manage players",
}

var playersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var playersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/" + url.PathEscape(args[0]))
	},
}

var playersCreateCmd = &cobra.Command{
	Use:   "create <nickname>",
	Short: "Register a new player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performJSONRequest(http.MethodPost, "/players", map[string]string{"nickname": args[0]})
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Manage teams",
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/teams")
	},
}

var teamsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a team and its players",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/teams/" + url.PathEscape(args[0]))
	},
}

var teamsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Form a team of five unassigned players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performJSONRequest(http.MethodPost, "/teams", map[string]any{
			"teamName": teamName,
			"players":  teamPlayers,
		})
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Settle matches",
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle a finished match between two teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performJSONRequest(http.MethodPost, settleEndpoint(dryRun, async), matchBody(team1ID, team2ID, winningTeamID, duration))
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the highest rated players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard?limit=" + strconv.Itoa(leaderboardLimit))
	},
}

func settleEndpoint(dryRun, async bool) string {
	q := url.Values{}
	if dryRun {
		q.Set("dry_run", "true")
	}
	if async {
		q.Set("async", "true")
	}
	if len(q) == 0 {
		return "/matches"
	}
	return "/matches?" + q.Encode()
}

func matchBody(team1, team2, winner string, duration int) map[string]any {
	body := map[string]any{
		"team1Id":  team1,
		"team2Id":  team2,
		"duration": duration,
	}
	if winner != "" {
		body["winningTeamId"] = winner
	}
	return body
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performJSONRequest(method, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return performRequest(method, endpoint, bytes.NewReader(body))
}

func performRequest(method, endpoint string, body io.Reader) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
