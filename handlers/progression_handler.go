package handlers

import (
	"encoding/json"
	"net/http"

	"ecoQuestAPI/middleware"
	"ecoQuestAPI/services"
)

type ProgressionHandler struct {
	progressionService  *services.ProgressionService
	verificationService *services.VerificationService
}

func NewProgressionHandler(progressionService *services.ProgressionService, verificationService *services.VerificationService) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService:  progressionService,
		verificationService: verificationService,
	}
}

func (h *ProgressionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, h.progressionService.Stats(userID))
}

func (h *ProgressionHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, h.progressionService.Level(userID))
}

func (h *ProgressionHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, h.progressionService.Achievements(userID))
}

// GetNotice surfaces the user's transient verification notice, if one is
// still showing.
func (h *ProgressionHandler) GetNotice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	message, active := h.verificationService.Notice(userID)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"active":  active,
		"message": message,
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
