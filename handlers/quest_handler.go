package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ecoQuestAPI/middleware"
	"ecoQuestAPI/services"

	"github.com/google/uuid"
)

type QuestHandler struct {
	progressionService  *services.ProgressionService
	verificationService *services.VerificationService
}

func NewQuestHandler(progressionService *services.ProgressionService, verificationService *services.VerificationService) *QuestHandler {
	return &QuestHandler{
		progressionService:  progressionService,
		verificationService: verificationService,
	}
}

func (h *QuestHandler) GetQuestBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	board := h.progressionService.QuestBoard(userID)
	respondWithJSON(w, http.StatusOK, board)
}

type verifyRequest struct {
	QuestID   string `json:"questId"`
	CaptureID string `json:"captureId"`
	Image     string `json:"image"` // base64 payload from the capture device
}

func (h *QuestHandler) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	// allow for the classifier round trip
	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	userID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	captureID, err := uuid.Parse(req.CaptureID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "captureId must be a valid UUID")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "image must be base64 encoded")
		return
	}

	outcome, err := h.verificationService.Submit(ctx, userID, req.QuestID, captureID, image)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuestNotFound):
			respondWithError(w, http.StatusNotFound, "Quest not found")
		case errors.Is(err, services.ErrVerificationInFlight):
			respondWithError(w, http.StatusConflict, "A verification for this quest is already in progress")
		case errors.Is(err, services.ErrEmptyImage):
			respondWithError(w, http.StatusBadRequest, "Capture image is empty")
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

type creditRequest struct {
	QuestID   string `json:"questId"`
	CaptureID string `json:"captureId"`
}

// CreditAction credits a quest action without photo verification, same
// increment and payout rules as the verified path.
func (h *QuestHandler) CreditAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	captureID, err := uuid.Parse(req.CaptureID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "captureId must be a valid UUID")
		return
	}

	outcome, err := h.progressionService.Credit(userID, req.QuestID, captureID)
	if err != nil {
		if errors.Is(err, services.ErrQuestNotFound) {
			respondWithError(w, http.StatusNotFound, "Quest not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}
