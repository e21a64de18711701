package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"llamadesk-backend/internal/models"
	"llamadesk-backend/internal/ollama"
)

// fakeOllama records every chat request it receives and answers with a fixed
// reply.
type fakeOllama struct {
	mu       sync.Mutex
	requests []ollama.ChatRequest
	reply    string
	srv      *httptest.Server
}

func newFakeOllama(t *testing.T, reply string) *fakeOllama {
	t.Helper()
	f := &fakeOllama{reply: reply}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollama.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode chat request: %v", err)
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		json.NewEncoder(w).Encode(ollama.ChatResponse{
			Model:   req.Model,
			Message: ollama.Message{Role: "assistant", Content: f.reply},
			Done:    true,
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeOllama) client() *ollama.Client {
	return ollama.NewClient(f.srv.URL)
}

func (f *fakeOllama) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeOllama) request(i int) ollama.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

// ─── Message Adapter ───

func TestAdaptMessages_RoleMapping(t *testing.T) {
	input := []models.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "robot", Content: "beep"},
		{Role: "", Content: ""},
	}

	out := adaptMessages(input)

	if len(out) != len(input) {
		t.Fatalf("Expected %d messages, got %d", len(input), len(out))
	}

	expectedRoles := []string{"system", "user", "assistant", "user", "user"}
	for i, want := range expectedRoles {
		if out[i].Role != want {
			t.Errorf("Message %d: expected role %q, got %q", i, want, out[i].Role)
		}
		if out[i].Content != input[i].Content {
			t.Errorf("Message %d: content changed from %q to %q", i, input[i].Content, out[i].Content)
		}
	}
}

func TestAdaptMessages_Empty(t *testing.T) {
	out := adaptMessages(nil)
	if len(out) != 0 {
		t.Errorf("Expected empty output, got %d messages", len(out))
	}
}

// ─── Stateless Ask ───

func TestAsk_ReturnsReply(t *testing.T) {
	fake := newFakeOllama(t, "4")
	svc := NewChatService(fake.client(), "llama3", nil)

	reply, err := svc.Ask(context.Background(), []models.ChatMessage{{Role: "user", Content: "2+2?"}}, "llama3")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if reply != "4" {
		t.Errorf("Expected reply '4', got %q", reply)
	}
	if n := len(svc.History()); n != 0 {
		t.Errorf("Stateless ask must not touch history, got %d entries", n)
	}
}

func TestAsk_EmptyMessages(t *testing.T) {
	fake := newFakeOllama(t, "never")
	svc := NewChatService(fake.client(), "llama3", nil)

	_, err := svc.Ask(context.Background(), nil, "llama3")
	if err == nil {
		t.Fatal("Expected error for empty message list")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
	if fake.requestCount() != 0 {
		t.Errorf("Network path must not be invoked for empty input, saw %d requests", fake.requestCount())
	}
}

func TestAsk_StatelessCallsAreIndependent(t *testing.T) {
	fake := newFakeOllama(t, "ok")
	svc := NewChatService(fake.client(), "llama3", nil)

	first := []models.ChatMessage{{Role: "user", Content: "alpha"}}
	second := []models.ChatMessage{{Role: "system", Content: "rules"}, {Role: "user", Content: "beta"}}

	if _, err := svc.Ask(context.Background(), first, ""); err != nil {
		t.Fatalf("First ask failed: %v", err)
	}
	if _, err := svc.Ask(context.Background(), second, ""); err != nil {
		t.Fatalf("Second ask failed: %v", err)
	}

	req := fake.request(1)
	if len(req.Messages) != 2 {
		t.Fatalf("Expected second request to carry exactly its own 2 messages, got %d", len(req.Messages))
	}
	for _, m := range req.Messages {
		if m.Content == "alpha" {
			t.Error("Data from the first call leaked into the second request")
		}
	}
}

func TestAsk_DefaultModel(t *testing.T) {
	fake := newFakeOllama(t, "ok")
	svc := NewChatService(fake.client(), "llama3", nil)

	if _, err := svc.Ask(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}}, ""); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got := fake.request(0).Model; got != "llama3" {
		t.Errorf("Expected default model 'llama3', got %q", got)
	}
}

func TestAsk_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewChatService(ollama.NewClient(srv.URL), "llama3", nil)
	_, err := svc.Ask(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}}, "")
	if err == nil {
		t.Fatal("Expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "Error communicating with Ollama:") {
		t.Errorf("Expected error to embed the Ollama cause, got %q", err.Error())
	}
	if _, ok := err.(*UpstreamError); !ok {
		t.Errorf("Expected UpstreamError, got %T", err)
	}
}

func TestAsk_EmptyReplyIsError(t *testing.T) {
	fake := newFakeOllama(t, "")
	svc := NewChatService(fake.client(), "llama3", nil)

	_, err := svc.Ask(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}}, "")
	if err == nil {
		t.Fatal("Expected error when server returns no content")
	}
	if !strings.Contains(err.Error(), "no content") {
		t.Errorf("Expected 'no content' in %q", err.Error())
	}
}

// ─── Stateful Ask ───

func TestAskWithHistory_EmptyMessages(t *testing.T) {
	fake := newFakeOllama(t, "never")
	svc := NewChatService(fake.client(), "llama3", nil)

	_, err := svc.AskWithHistory(context.Background(), nil, "")
	if err == nil {
		t.Fatal("Expected error for empty message list")
	}
	if fake.requestCount() != 0 {
		t.Errorf("Network path must not be invoked for empty input, saw %d requests", fake.requestCount())
	}
}

func TestAskWithHistory_HistoryGrowsMonotonically(t *testing.T) {
	fake := newFakeOllama(t, "reply")
	svc := NewChatService(fake.client(), "llama3", nil)

	if _, err := svc.AskWithHistory(context.Background(), []models.ChatMessage{{Role: "user", Content: "hello"}}, "m1"); err != nil {
		t.Fatalf("First ask failed: %v", err)
	}
	if n := len(svc.History()); n != 2 {
		t.Fatalf("Expected 2 history entries after first ask, got %d", n)
	}

	if _, err := svc.AskWithHistory(context.Background(), []models.ChatMessage{{Role: "user", Content: "world"}}, "m1"); err != nil {
		t.Fatalf("Second ask failed: %v", err)
	}
	if n := len(svc.History()); n != 4 {
		t.Fatalf("Expected 4 history entries after second ask, got %d", n)
	}

	// The first request carries only the new prompt; the second carries the
	// two settled turns plus the new prompt. The new prompt is never
	// duplicated into the context.
	if n := len(fake.request(0).Messages); n != 1 {
		t.Errorf("Expected 1 message in first request, got %d", n)
	}
	second := fake.request(1)
	if n := len(second.Messages); n != 3 {
		t.Fatalf("Expected 3 messages in second request, got %d", n)
	}
	if second.Messages[2].Content != "world" {
		t.Errorf("Expected new prompt last, got %q", second.Messages[2].Content)
	}

	history := svc.History()
	if history[1].Role != models.RoleAssistant || history[1].Content != "reply" {
		t.Errorf("Expected assistant reply in history, got %+v", history[1])
	}
}

func TestAskWithHistory_OnlyLastMessageIsNewTurn(t *testing.T) {
	fake := newFakeOllama(t, "ok")
	svc := NewChatService(fake.client(), "llama3", nil)

	// Preceding elements are already-settled context supplied by the UI; the
	// buffer version wins and only the last element is sent as the new turn.
	messages := []models.ChatMessage{
		{Role: "user", Content: "old question"},
		{Role: "assistant", Content: "old answer"},
		{Role: "user", Content: "new question"},
	}
	if _, err := svc.AskWithHistory(context.Background(), messages, ""); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	req := fake.request(0)
	if len(req.Messages) != 1 {
		t.Fatalf("Expected only the new turn to be sent, got %d messages", len(req.Messages))
	}
	if req.Messages[0].Content != "new question" {
		t.Errorf("Expected the last element as new turn, got %q", req.Messages[0].Content)
	}
	if n := len(svc.History()); n != 2 {
		t.Errorf("Expected 2 history entries, got %d", n)
	}
}

func TestAskWithHistory_FailureLeavesHistoryUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewChatService(ollama.NewClient(srv.URL), "llama3", nil)
	_, err := svc.AskWithHistory(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}}, "")
	if err == nil {
		t.Fatal("Expected error for unreachable server")
	}
	if n := len(svc.History()); n != 0 {
		t.Errorf("Failed ask must not mutate history, got %d entries", n)
	}
}

func TestAskWithHistory_UnknownRoleNormalized(t *testing.T) {
	fake := newFakeOllama(t, "ok")
	svc := NewChatService(fake.client(), "llama3", nil)

	if _, err := svc.AskWithHistory(context.Background(), []models.ChatMessage{{Role: "robot", Content: "beep"}}, ""); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got := fake.request(0).Messages[0].Role; got != "user" {
		t.Errorf("Expected unknown role normalized to 'user', got %q", got)
	}
}

// ─── History Reset ───

func TestClearHistory(t *testing.T) {
	fake := newFakeOllama(t, "ok")
	svc := NewChatService(fake.client(), "llama3", nil)
	ctx := context.Background()

	// Clearing an empty buffer is a no-op success.
	svc.ClearHistory(ctx)
	if n := len(svc.History()); n != 0 {
		t.Fatalf("Expected empty history, got %d", n)
	}

	if _, err := svc.AskWithHistory(ctx, []models.ChatMessage{{Role: "user", Content: "hello"}}, ""); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	svc.ClearHistory(ctx)
	if n := len(svc.History()); n != 0 {
		t.Fatalf("Expected empty history after clear, got %d", n)
	}

	// The next ask starts from an empty buffer.
	if _, err := svc.AskWithHistory(ctx, []models.ChatMessage{{Role: "user", Content: "fresh"}}, ""); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	req := fake.request(fake.requestCount() - 1)
	if len(req.Messages) != 1 {
		t.Errorf("Expected request after clear to carry only the new prompt, got %d messages", len(req.Messages))
	}
}

// ─── Concurrency ───

func TestConcurrentAsksAndClearsSerialize(t *testing.T) {
	fake := newFakeOllama(t, "ok")
	svc := NewChatService(fake.client(), "llama3", nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.AskWithHistory(ctx, []models.ChatMessage{{Role: "user", Content: "q"}}, "")
		}()
		go func() {
			defer wg.Done()
			svc.ClearHistory(ctx)
		}()
	}
	wg.Wait()

	// Every observable state is pre- or post-operation: asks append in pairs
	// and clears truncate to zero, so the length is always even.
	if n := len(svc.History()); n%2 != 0 {
		t.Errorf("Torn history state: %d entries", n)
	}
}

// ─── Translate ───

func TestTranslate(t *testing.T) {
	svc := NewChatService(nil, "llama3", nil)
	if got := svc.Translate("from Go"); got != "Hello world from Go" {
		t.Errorf("Expected 'Hello world from Go', got %q", got)
	}
}
