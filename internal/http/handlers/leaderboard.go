package handlers

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
)

const defaultLeaderboardSize = 10

func LeaderboardHandler(board leaderboard.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLeaderboardSize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = parsed
		}

		standings, err := board.Top(r.Context(), limit)
		if err != nil {
			log.Error("Failed to read leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, codeInternal, "Failed to read leaderboard")
			return
		}
		writeJSON(w, http.StatusOK, standings)
	}
}
