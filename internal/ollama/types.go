package ollama

import "time"

// Message is a chat message in the shape the Ollama API expects.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// ChatResponse is the response from the /api/chat endpoint.
type ChatResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`
}

// LocalModel describes one locally installed model as reported by /api/tags.
type LocalModel struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       uint64 `json:"size"`
	Digest     string `json:"digest,omitempty"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []LocalModel `json:"models"`
}

// apiError is the error body Ollama returns on non-200 responses.
type apiError struct {
	Error string `json:"error"`
}
