package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"

	return &OpenAI{
		client:      openai.NewClientWithConfig(cfg),
		model:       "gpt-4o",
		maxTokens:   600,
		temperature: 0.7,
	}
}

func TestComplete_ReturnsReply(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Merhaba!"}},
			},
		})
	})

	reply, err := c.Complete(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "sistem"},
		{Role: openai.ChatMessageRoleUser, Content: "merhaba"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Merhaba!" {
		t.Errorf("reply = %q, want Merhaba!", reply)
	}

	if gotReq.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", gotReq.Model)
	}
	if gotReq.MaxTokens != 600 {
		t.Errorf("MaxTokens = %d, want 600", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 {
		t.Errorf("forwarded %d messages, want 2", len(gotReq.Messages))
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	reply, err := c.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Üzgünüm, cevap üretemiyorum." {
		t.Errorf("reply = %q, want fallback text", reply)
	}
}

func TestComplete_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
