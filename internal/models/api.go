package models

// WebSocket event types pushed to connected UI windows.
const (
	WSTurnCompleted  = "turn_completed"
	WSHistoryCleared = "history_cleared"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TurnCompletedEvent announces a finished ask over the event channel.
type TurnCompletedEvent struct {
	Model string `json:"model"`
	Reply string `json:"reply"`
}

// SessionTokenRequest exchanges the local API key for a bearer token.
type SessionTokenRequest struct {
	Key string `json:"key"`
}

type SessionTokenResponse struct {
	Token string `json:"token"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
