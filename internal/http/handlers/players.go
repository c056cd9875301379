package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/roster"
)

type createPlayerRequest struct {
	Nickname string `json:"nickname"`
}

type ratingAdjustmentRequest struct {
	RatingAdjustment *int `json:"ratingAdjustment"`
}

// CreatePlayerHandler registers a player and puts them on the leaderboard straight away.
func CreatePlayerHandler(store roster.RosterStore, board leaderboard.Leaderboard, metrics metrics.Metrics, initialElo float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPlayerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid JSON")
			return
		}

		player, err := store.CreatePlayer(r.Context(), req.Nickname, initialElo)
		if err != nil {
			writeRosterError(w, err, "Failed to create player")
			return
		}
		metrics.IncPlayersCreated()
		standing := leaderboard.Standing{PlayerID: player.ID, Nickname: player.Nickname, Elo: player.Elo}
		if err := board.Record(r.Context(), []leaderboard.Standing{standing}); err != nil {
			log.Error("Failed to add player to leaderboard", "playerID", player.ID, "error", err)
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func ListPlayersHandler(store roster.RosterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.ListPlayers(r.Context())
		if err != nil {
			writeRosterError(w, err, "Failed to retrieve players")
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func GetPlayerHandler(store roster.RosterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := store.GetPlayer(r.Context(), r.PathValue("id"))
		if err != nil {
			writeRosterError(w, err, "Failed to retrieve player")
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

// SetRatingAdjustmentHandler stores or clears (null) the manual rating override of a player.
func SetRatingAdjustmentHandler(store roster.RosterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ratingAdjustmentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid JSON")
			return
		}
		playerID := r.PathValue("id")
		player, err := store.SetRatingAdjustment(r.Context(), playerID, req.RatingAdjustment)
		if err != nil {
			writeRosterError(w, err, "Failed to update rating adjustment")
			return
		}
		log.Info("Rating adjustment updated", "playerID", playerID, "adjustment", req.RatingAdjustment)
		writeJSON(w, http.StatusOK, player)
	}
}
