// Package slack sends escalation notifications to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/derrick/internal/severity"
	"github.com/linnemanlabs/derrick/internal/triage"
)

const (
	maxActionsLen = 3000
	httpTimeout   = 10 * time.Second
)

// Notifier sends classification results to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a classification result to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, result *triage.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(result)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(r *triage.Result) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(r),
			{"type": "divider"},
			fieldsBlock(r),
			{"type": "divider"},
			actionsBlock(r),
			{"type": "divider"},
			contextBlock(r),
		},
	}
}

func headerBlock(r *triage.Result) map[string]any {
	c := r.Classification
	text := fmt.Sprintf("%s Escalation Required: %s", severityEmoji(c.Severity), c.IncidentType)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *triage.Result) map[string]any {
	c := r.Classification

	responseWindow := "unknown"
	if det, ok := severity.Lookup(c.Severity); ok {
		responseWindow = fmt.Sprintf("%dh", det.ResponseTimeHours)
	}

	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Severity:* %s", c.Severity),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Score:* %d", c.SeverityScore),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Response window:* %s", responseWindow),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Classified by:* %s", r.Provenance),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Duration:* %.1fs", r.Duration),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func actionsBlock(r *triage.Result) map[string]any {
	c := r.Classification

	var b strings.Builder
	for i, action := range c.ImmediateActions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, action)
	}

	text := truncate(strings.TrimRight(b.String(), "\n"), maxActionsLen)
	if text == "" {
		text = "_No immediate actions listed._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Immediate actions*\n\n%s", text),
		},
	}
}

func contextBlock(r *triage.Result) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("derrick • triage %s • %s", r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func severityEmoji(level severity.Level) string {
	switch level {
	case severity.Critical:
		return "\U0001f534" // red circle
	case severity.High:
		return "\U0001f7e0" // orange circle
	case severity.Medium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
