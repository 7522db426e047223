package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/derrick/internal/agent"
)

// Agent is the interface to the remote conversational classifier.
type Agent interface {
	StartConversation(ctx context.Context) (string, error)
	Chat(ctx context.Context, message, conversationID string) (*agent.Reply, error)
}

// EngineHooks are optional observation callbacks wired by metrics.
type EngineHooks struct {
	OnAgentCall      func(outcome string, d time.Duration)
	OnFallback       func(reason string)
	OnClassification func(provenance, severity string, d time.Duration)
}

// Engine drives the classification pipeline: prompt construction, the agent
// call, response parsing, and rule-based fallback. Classify never fails:
// triage must return something usable even when the agent is down.
type Engine struct {
	agent  Agent
	logger log.Logger
	hooks  EngineHooks
}

// NewEngine creates a new triage engine with the given dependencies.
func NewEngine(ag Agent, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		agent:  ag,
		logger: logger,
		hooks:  hooks,
	}
}

// StartConversation requests a new session from the agent. Failure is logged
// and yields a Conversation with an empty ID; there is no automatic retry,
// and classification calls proceed without a session.
func (e *Engine) StartConversation(ctx context.Context) *Conversation {
	id, err := e.agent.StartConversation(ctx)
	if err != nil {
		e.logger.Error(ctx, err, "failed to start agent conversation")
		return &Conversation{}
	}
	e.logger.Info(ctx, "agent conversation started", "conversation_id", id)
	return &Conversation{ID: id}
}

// Classify produces a structured classification for the given description.
// Any transport/remote failure or unparsable reply falls through to the
// rule-based classifier; the error is logged, never returned.
func (e *Engine) Classify(ctx context.Context, conv *Conversation, description string, ictx *Context) *Classification {
	start := time.Now()

	var conversationID string
	if conv != nil {
		conversationID = conv.ID
	}

	prompt := buildClassificationPrompt(description, ictx)

	callStart := time.Now()
	reply, err := e.agent.Chat(ctx, prompt, conversationID)
	callDur := time.Since(callStart)

	var c *Classification
	switch {
	case err != nil:
		e.observeAgentCall("error", callDur)
		e.logger.Error(ctx, err, "agent classification failed, using fallback")
		e.observeFallback("agent_error")
		c = fallbackClassification(description)

	default:
		e.observeAgentCall("ok", callDur)
		c, err = parseReply(reply, description)
		if err != nil {
			e.logger.Error(ctx, err, "failed to parse agent response, using fallback")
			e.observeFallback("unparsable")
			c = fallbackClassification(description)
		}
	}

	dur := time.Since(start)
	if e.hooks.OnClassification != nil {
		e.hooks.OnClassification(c.Provenance(), string(c.Severity), dur)
	}

	e.logger.Info(ctx, "incident classified",
		"incident_type", c.IncidentType,
		"severity", c.Severity,
		"severity_score", c.SeverityScore,
		"provenance", c.Provenance(),
		"conversation_id", conversationID,
		"duration", dur.Seconds(),
	)
	return c
}

func (e *Engine) observeAgentCall(outcome string, d time.Duration) {
	if e.hooks.OnAgentCall != nil {
		e.hooks.OnAgentCall(outcome, d)
	}
}

func (e *Engine) observeFallback(reason string) {
	if e.hooks.OnFallback != nil {
		e.hooks.OnFallback(reason)
	}
}
