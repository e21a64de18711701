package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"llamadesk-backend/internal/models"
	"llamadesk-backend/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req models.SessionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Key) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Key is required", r))
		return
	}

	token, err := h.sessions.IssueToken(req.Key)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SessionTokenResponse{Token: token})
}
