package triage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/derrick/internal/agent"
	"github.com/linnemanlabs/derrick/internal/severity"
)

// parseReply extracts a Classification from an agent reply. It is total over
// the reply union: object content decodes directly, text content gets a
// single decode attempt on the span from the first '{' to the last '}'.
// Any failure is returned as an error for the engine to recover from; it is
// never surfaced past the engine.
func parseReply(reply *agent.Reply, originalDesc string) (*Classification, error) {
	if reply == nil {
		return nil, fmt.Errorf("nil agent reply")
	}

	var raw json.RawMessage
	switch {
	case reply.IsObject():
		raw = reply.Object
	default:
		span, err := extractJSON(reply.Text)
		if err != nil {
			return nil, err
		}
		raw = span
	}

	var c Classification
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}

	enrich(&c, originalDesc, AgentVersion)

	// Attach the severity policy entry when the label is recognized. An
	// unknown label is tolerated: the details are simply omitted.
	if det, ok := severity.Lookup(c.Severity); ok {
		c.SeverityDetails = &det
	}
	return &c, nil
}

// extractJSON returns the substring from the first '{' to the last '}'
// inclusive. Multiple brace-delimited substrings are not recovered
// individually; only the outermost span gets the one decode attempt.
func extractJSON(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return nil, fmt.Errorf("no JSON object found in agent reply")
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return nil, fmt.Errorf("unterminated JSON object in agent reply")
	}
	return json.RawMessage(text[start : end+1]), nil
}

// enrich stamps the provenance metadata shared by both the agent and the
// fallback path.
func enrich(c *Classification, originalDesc, version string) {
	c.OriginalDescription = originalDesc
	c.TriageTimestamp = time.Now().UTC()
	c.TriageAgentVersion = version
}
