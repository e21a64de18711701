package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"llamadesk-backend/internal/models"
	"llamadesk-backend/internal/ollama"
)

const (
	// QueueTurnPersistence carries turns the worker pool writes to Postgres.
	QueueTurnPersistence = "queue:turn-persistence"
	// QueueConversationClose carries conversation IDs closed by a history reset.
	QueueConversationClose = "queue:conversation-close"
	// EventsChannel is the pub/sub channel the WebSocket hub relays to the UI.
	EventsChannel = "chat:events"
)

// ChatService owns the process-wide conversation history and forwards prompts
// to the local Ollama server.
//
// The history buffer is guarded by a single mutex that is held for the entire
// duration of a stateful ask, including the outbound network round trip, so
// history-mode calls are fully serialized.
type ChatService struct {
	client       *ollama.Client
	defaultModel string
	redis        *redis.Client // nil disables persistence and event publishing

	mu             sync.Mutex
	history        []models.ChatMessage
	conversationID uuid.UUID
}

// NewChatService builds a chat service with an empty history buffer and a
// fresh conversation ID. redisClient may be nil when the persistence add-on
// is disabled.
func NewChatService(client *ollama.Client, defaultModel string, redisClient *redis.Client) *ChatService {
	return &ChatService{
		client:         client,
		defaultModel:   defaultModel,
		redis:          redisClient,
		history:        []models.ChatMessage{},
		conversationID: uuid.New(),
	}
}

// adaptMessages converts UI-shaped messages into the client's message type,
// normalizing unknown roles to "user". Output order and length always match
// the input.
func adaptMessages(messages []models.ChatMessage) []ollama.Message {
	out := make([]ollama.Message, len(messages))
	for i, m := range messages {
		out[i] = ollama.Message{
			Role:    models.NormalizeRole(m.Role),
			Content: m.Content,
		}
	}
	return out
}

// Ask sends the entire message list in one stateless request. Nothing is
// remembered between calls and the history buffer is never touched.
func (s *ChatService) Ask(ctx context.Context, messages []models.ChatMessage, model string) (string, error) {
	if len(messages) == 0 {
		return "", &ValidationError{Fields: map[string]string{"messages": "At least one message is required"}}
	}
	if model == "" {
		model = s.defaultModel
	}

	reply, err := s.complete(ctx, model, adaptMessages(messages))
	if err != nil {
		return "", err
	}

	s.publishTurnCompleted(ctx, model, reply)
	return reply, nil
}

// AskWithHistory treats the last element of messages as the new turn and
// supplies the prior context from the shared history buffer; any preceding
// elements in the input are already-settled history and are ignored in favor
// of the buffer. On success the user turn and the assistant reply are
// appended to the buffer, so it grows monotonically until the next reset.
func (s *ChatService) AskWithHistory(ctx context.Context, messages []models.ChatMessage, model string) (string, error) {
	if len(messages) == 0 {
		return "", &ValidationError{Fields: map[string]string{"messages": "At least one message is required"}}
	}
	if model == "" {
		model = s.defaultModel
	}

	last := messages[len(messages)-1]
	userTurn := models.ChatMessage{
		Role:    models.NormalizeRole(last.Role),
		Content: last.Content,
	}

	// The lock spans the network call. Only one stateful ask or clear is in
	// flight at a time; the rest block here.
	s.mu.Lock()
	defer s.mu.Unlock()

	// The new prompt must not be in the buffer before the call; it rides along
	// separately and is appended only after the server answered.
	outbound := adaptMessages(s.history)
	outbound = append(outbound, ollama.Message{Role: userTurn.Role, Content: userTurn.Content})

	reply, err := s.complete(ctx, model, outbound)
	if err != nil {
		return "", err
	}

	assistantTurn := models.ChatMessage{Role: models.RoleAssistant, Content: reply}
	s.history = append(s.history, userTurn, assistantTurn)

	s.enqueueTurn(ctx, userTurn)
	s.enqueueTurn(ctx, assistantTurn)
	s.publishTurnCompleted(ctx, model, reply)

	return reply, nil
}

// ClearHistory truncates the buffer and rotates the conversation ID. Clearing
// an already-empty buffer is a no-op success.
func (s *ChatService) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	closedID := s.conversationID
	hadTurns := len(s.history) > 0

	s.history = s.history[:0]
	s.conversationID = uuid.New()

	if hadTurns && s.redis != nil {
		payload, _ := json.Marshal(closedID)
		s.redis.LPush(ctx, QueueConversationClose, string(payload))
	}
	s.publish(ctx, models.WSMessage{Type: models.WSHistoryCleared, Payload: nil})
}

// History returns a snapshot of the current buffer.
func (s *ChatService) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.ChatMessage, len(s.history))
	copy(snapshot, s.history)
	return snapshot
}

// Translate is a placeholder capability with no external dependency.
func (s *ChatService) Translate(text string) string {
	return fmt.Sprintf("Hello world %s", text)
}

// complete performs the single best-effort round trip to Ollama. All failure
// modes collapse into one descriptive error; there is no retry and no
// distinction between transient and permanent causes.
func (s *ChatService) complete(ctx context.Context, model string, messages []ollama.Message) (string, error) {
	resp, err := s.client.Chat(ctx, model, messages)
	if err != nil {
		return "", &UpstreamError{Message: fmt.Sprintf("Error communicating with Ollama: %v", err)}
	}
	if resp.Message.Content == "" {
		return "", &UpstreamError{Message: "Error communicating with Ollama: server returned no content"}
	}
	return resp.Message.Content, nil
}

// enqueueTurn hands one turn to the persistence queue. Must be called with
// the history mutex held so turns are enqueued in conversation order.
func (s *ChatService) enqueueTurn(ctx context.Context, msg models.ChatMessage) {
	if s.redis == nil {
		return
	}
	job := models.TurnJob{
		ConversationID: s.conversationID,
		Role:           msg.Role,
		Content:        msg.Content,
		RecordedAt:     time.Now().UTC(),
	}
	data, _ := json.Marshal(job)
	s.redis.LPush(ctx, QueueTurnPersistence, string(data))
}

func (s *ChatService) publishTurnCompleted(ctx context.Context, model, reply string) {
	s.publish(ctx, models.WSMessage{
		Type:    models.WSTurnCompleted,
		Payload: models.TurnCompletedEvent{Model: model, Reply: reply},
	})
}

// publish sends a WebSocket update via Redis pub/sub.
func (s *ChatService) publish(ctx context.Context, msg models.WSMessage) {
	if s.redis == nil {
		return
	}
	data, _ := json.Marshal(msg)
	s.redis.Publish(ctx, EventsChannel, string(data))
}
