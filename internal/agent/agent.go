// Package agent is the HTTP client for the remote conversational agent that
// performs incident classification.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the agent's conversation API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// New creates a new agent client. A non-positive timeout falls back to the
// default; remote calls must always be bounded.
func New(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Reply is the agent's answer to a chat message. Exactly one of Text or
// Object is set: Text when the wire content was a JSON string, Object when
// the agent returned a ready-made JSON object.
type Reply struct {
	Text   string
	Object json.RawMessage
}

// IsObject reports whether the agent returned structured content.
func (r *Reply) IsObject() bool {
	return len(r.Object) > 0
}

type chatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversationId"`
}

type chatResponse struct {
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// StartConversation requests a new conversation session from the agent and
// returns its opaque identifier.
func (c *Client) StartConversation(ctx context.Context) (string, error) {
	body, err := c.post(ctx, "/conversations", nil)
	if err != nil {
		return "", err
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("agent returned empty conversation id")
	}
	return out.ID, nil
}

// Chat sends a message to the agent, correlated to conversationID when
// non-empty, and returns the reply. Any transport error, non-2xx status, or
// malformed body is returned as an error; callers treat all of them
// uniformly as "agent unavailable".
func (c *Client) Chat(ctx context.Context, message, conversationID string) (*Reply, error) {
	req := chatRequest{Message: message}
	if conversationID != "" {
		req.ConversationID = &conversationID
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.post(ctx, "/chat", payload)
	if err != nil {
		return nil, err
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return decodeContent(out.Message.Content)
}

// decodeContent maps the wire content (string or object) onto the Reply union.
func decodeContent(raw json.RawMessage) (*Reply, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("agent reply has no content")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &Reply{Text: text}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("agent content is neither text nor object: %w", err)
	}
	return &Reply{Object: raw}, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "ApiKey "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20)) // 5 MB
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agent api error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
