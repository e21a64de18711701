package models

// Chat roles understood by the backend. Anything else sent by the UI is
// treated as RoleUser; the fallback is a defaulting policy, not an error.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single role-tagged turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeRole maps a raw UI role onto one of the supported roles.
func NormalizeRole(role string) string {
	switch role {
	case RoleSystem:
		return RoleSystem
	case RoleAssistant:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
}

// ChatResponse is the reply returned to the UI.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// TranslateRequest is the payload for the placeholder translate endpoint.
type TranslateRequest struct {
	Text string `json:"text"`
}

// TranslateResponse carries the formatted echo back to the UI.
type TranslateResponse struct {
	Result string `json:"result"`
}

// ModelSummary is the read-only projection of a locally installed model,
// fetched fresh from the Ollama registry on every call.
type ModelSummary struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       uint64 `json:"size"`
}

// ModelsResponse wraps the model list for the UI.
type ModelsResponse struct {
	Models []ModelSummary `json:"models"`
}
