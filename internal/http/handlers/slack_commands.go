package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/notifier"
)

// LeaderboardCommandHandler answers the /leaderboard slash command.
func LeaderboardCommandHandler(board leaderboard.Leaderboard, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := board.Top(r.Context(), defaultLeaderboardSize)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}

		msg, err := notifier.FormatLeaderboardResponse(standings)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}
