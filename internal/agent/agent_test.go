package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStartConversation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations" {
			t.Errorf("path = %q, want /conversations", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "ApiKey test-key" {
			t.Errorf("authorization = %q, want %q", got, "ApiKey test-key")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "conv-42"})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", 5*time.Second)
	id, err := c.StartConversation(context.Background())
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if id != "conv-42" {
		t.Errorf("id = %q, want conv-42", id)
	}
}

func TestStartConversation_EmptyID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 0)
	if _, err := c.StartConversation(context.Background()); err == nil {
		t.Fatal("expected error for empty conversation id")
	}
}

func TestChat_TextContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["message"] != "classify this" {
			t.Errorf("message = %v, want %q", req["message"], "classify this")
		}
		if req["conversationId"] != "conv-1" {
			t.Errorf("conversationId = %v, want conv-1", req["conversationId"])
		}
		_, _ = w.Write([]byte(`{"message":{"content":"{\"severity\":\"HIGH\"}"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	reply, err := c.Chat(context.Background(), "classify this", "conv-1")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.IsObject() {
		t.Error("expected text reply, got object")
	}
	if reply.Text != `{"severity":"HIGH"}` {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestChat_ObjectContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":{"severity":"LOW","severity_score":20}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	reply, err := c.Chat(context.Background(), "m", "")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !reply.IsObject() {
		t.Fatal("expected object reply")
	}

	var parsed struct {
		Severity string `json:"severity"`
	}
	if err := json.Unmarshal(reply.Object, &parsed); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if parsed.Severity != "LOW" {
		t.Errorf("severity = %q, want LOW", parsed.Severity)
	}
}

func TestChat_NullConversationID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ConversationID *string `json:"conversationId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.ConversationID != nil {
			t.Errorf("conversationId = %v, want null", *req.ConversationID)
		}
		_, _ = w.Write([]byte(`{"message":{"content":"ok"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 5*time.Second)
	if _, err := c.Chat(context.Background(), "m", ""); err != nil {
		t.Fatalf("Chat: %v", err)
	}
}

func TestChat_ErrorOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"message":`))
			},
		},
		{
			name: "missing content",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"message":{}}`))
			},
		},
		{
			name: "content is a number",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"message":{"content":42}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(srv.URL, "k", 5*time.Second)
			if _, err := c.Chat(context.Background(), "m", "conv"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestChat_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"message":{"content":"too late"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 20*time.Millisecond)
	if _, err := c.Chat(context.Background(), "m", ""); err == nil {
		t.Fatal("expected timeout error")
	}
}
