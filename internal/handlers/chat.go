package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"llamadesk-backend/internal/models"
)

type chatService interface {
	Ask(ctx context.Context, messages []models.ChatMessage, model string) (string, error)
	AskWithHistory(ctx context.Context, messages []models.ChatMessage, model string) (string, error)
	ClearHistory(ctx context.Context)
	History() []models.ChatMessage
	Translate(text string) string
}

type ChatHandler struct {
	chat        chatService
	historyMode bool
}

// NewChatHandler wires the chat endpoints. historyMode selects the stateful
// code path once at startup; it is not switchable per request.
func NewChatHandler(chat chatService, historyMode bool) *ChatHandler {
	return &ChatHandler{chat: chat, historyMode: historyMode}
}

func (h *ChatHandler) AskLLM(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "At least one message is required", r))
		return
	}

	var (
		reply string
		err   error
	)
	if h.historyMode {
		reply, err = h.chat.AskWithHistory(r.Context(), req.Messages, req.Model)
	} else {
		reply, err = h.chat.Ask(r.Context(), req.Messages, req.Model)
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.chat.History(),
	})
}

func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.chat.ClearHistory(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared"})
}

func (h *ChatHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	writeJSON(w, http.StatusOK, models.TranslateResponse{Result: h.chat.Translate(req.Text)})
}
