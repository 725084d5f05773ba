package handlers

import (
	"context"
	"net/http"
	"time"

	"ecoQuestAPI/middleware"
	"ecoQuestAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard serves a sorted view of the local cache. It never
// touches the remote store; refresh is an explicit separate trigger.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view := r.URL.Query().Get("view")
	switch view {
	case "", "daily":
		respondWithJSON(w, http.StatusOK, map[string]any{
			"loading": h.leaderboardService.Loading(),
			"board":   h.leaderboardService.Daily(userID),
		})
	case "alltime":
		respondWithJSON(w, http.StatusOK, map[string]any{
			"loading": h.leaderboardService.Loading(),
			"board":   h.leaderboardService.AllTime(userID),
		})
	default:
		respondWithError(w, http.StatusBadRequest, "view must be 'daily' or 'alltime'")
	}
}

func (h *LeaderboardHandler) RefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.leaderboardService.Fetch(ctx); err != nil {
		// cache stays at last known good; nothing fatal to surface
		respondWithError(w, http.StatusBadGateway, "Leaderboard refresh failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Leaderboard refreshed"})
}
