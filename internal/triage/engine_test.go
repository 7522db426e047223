package triage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/derrick/internal/agent"
	"github.com/linnemanlabs/derrick/internal/incident"
	"github.com/linnemanlabs/derrick/internal/severity"
)

// mockAgent returns preconfigured conversation IDs and replies.
type mockAgent struct {
	mu sync.Mutex

	startID    string
	startErr   error
	startCalls int

	reply   *agent.Reply
	chatErr error

	chatCalls  int
	lastPrompt string
	lastConvID string
}

func (m *mockAgent) StartConversation(_ context.Context) (string, error) {
	m.mu.Lock()
	m.startCalls++
	m.mu.Unlock()
	if m.startErr != nil {
		return "", m.startErr
	}
	return m.startID, nil
}

func (m *mockAgent) Chat(_ context.Context, message, conversationID string) (*agent.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatCalls++
	m.lastPrompt = message
	m.lastConvID = conversationID
	if m.chatErr != nil {
		return nil, m.chatErr
	}
	return m.reply, nil
}

func TestStartConversation(t *testing.T) {
	t.Parallel()

	e := NewEngine(&mockAgent{startID: "conv-7"}, log.Nop(), EngineHooks{})
	conv := e.StartConversation(context.Background())
	if conv.ID != "conv-7" {
		t.Errorf("conversation id = %q, want conv-7", conv.ID)
	}
}

func TestStartConversation_FailureLeavesIDUnset(t *testing.T) {
	t.Parallel()

	e := NewEngine(&mockAgent{startErr: errors.New("agent down")}, log.Nop(), EngineHooks{})
	conv := e.StartConversation(context.Background())
	if conv == nil {
		t.Fatal("expected a conversation value even on failure")
	}
	if conv.ID != "" {
		t.Errorf("conversation id = %q, want empty", conv.ID)
	}
}

func TestClassify_AgentPath(t *testing.T) {
	t.Parallel()

	ag := &mockAgent{reply: &agent.Reply{
		Text: `{"incident_type":"PIPELINE_LEAK","severity":"HIGH","severity_score":68,
			"immediate_actions":["Isolate section"],"root_cause_hypothesis":"Corrosion",
			"similar_incidents_keywords":["corrosion","pipeline"]}`,
	}}
	e := NewEngine(ag, log.Nop(), EngineHooks{})

	c := e.Classify(context.Background(), &Conversation{ID: "conv-1"}, "pipeline leak at weld joint", nil)

	if c.IncidentType != incident.TypePipelineLeak {
		t.Errorf("incident_type = %q, want PIPELINE_LEAK", c.IncidentType)
	}
	if c.Severity != severity.High {
		t.Errorf("severity = %q, want HIGH", c.Severity)
	}
	if c.FallbackDerived() {
		t.Error("expected agent-derived classification")
	}
	if ag.lastConvID != "conv-1" {
		t.Errorf("conversation id sent = %q, want conv-1", ag.lastConvID)
	}
	if !strings.Contains(ag.lastPrompt, "pipeline leak at weld joint") {
		t.Error("prompt must carry the description")
	}
}

func TestClassify_RemoteErrorFallsBack(t *testing.T) {
	t.Parallel()

	var fallbackReason string
	hooks := EngineHooks{
		OnFallback: func(reason string) { fallbackReason = reason },
	}
	e := NewEngine(&mockAgent{chatErr: errors.New("connection refused")}, log.Nop(), hooks)

	c := e.Classify(context.Background(), &Conversation{}, "compressor fire on platform", nil)

	if !c.FallbackDerived() {
		t.Fatal("expected fallback-derived classification")
	}
	if c.Severity != severity.Critical {
		t.Errorf("severity = %q, want CRITICAL for fire keyword", c.Severity)
	}
	if fallbackReason != "agent_error" {
		t.Errorf("fallback reason = %q, want agent_error", fallbackReason)
	}
}

func TestClassify_UnparsableReplyFallsBack(t *testing.T) {
	t.Parallel()

	var fallbackReason string
	hooks := EngineHooks{
		OnFallback: func(reason string) { fallbackReason = reason },
	}
	e := NewEngine(&mockAgent{reply: &agent.Reply{Text: "not json at all"}}, log.Nop(), hooks)

	desc := "hydraulic leak on workover rig"
	c := e.Classify(context.Background(), &Conversation{ID: "conv-2"}, desc, nil)

	// Must equal exactly what the fallback classifier produces.
	want := fallbackClassification(desc)
	if c.Severity != want.Severity || c.SeverityScore != want.SeverityScore {
		t.Errorf("got %q/%d, want %q/%d", c.Severity, c.SeverityScore, want.Severity, want.SeverityScore)
	}
	if c.IncidentType != want.IncidentType {
		t.Errorf("incident_type = %q, want %q", c.IncidentType, want.IncidentType)
	}
	if c.TriageAgentVersion != FallbackAgentVersion {
		t.Errorf("version = %q, want %q", c.TriageAgentVersion, FallbackAgentVersion)
	}
	if fallbackReason != "unparsable" {
		t.Errorf("fallback reason = %q, want unparsable", fallbackReason)
	}
}

func TestClassify_NilConversationProceeds(t *testing.T) {
	t.Parallel()

	ag := &mockAgent{reply: &agent.Reply{Text: `{"severity":"LOW","incident_type":"NEAR_MISS","severity_score":15}`}}
	e := NewEngine(ag, log.Nop(), EngineHooks{})

	c := e.Classify(context.Background(), nil, "near miss at loading dock", nil)
	if c == nil {
		t.Fatal("expected a classification")
	}
	if ag.lastConvID != "" {
		t.Errorf("conversation id sent = %q, want empty", ag.lastConvID)
	}
}

func TestClassify_Hooks(t *testing.T) {
	t.Parallel()

	var (
		callOutcome string
		provenance  string
		sev         string
		gotDur      time.Duration
	)
	hooks := EngineHooks{
		OnAgentCall: func(outcome string, d time.Duration) { callOutcome = outcome },
		OnClassification: func(p, s string, d time.Duration) {
			provenance, sev, gotDur = p, s, d
		},
	}
	ag := &mockAgent{reply: &agent.Reply{Text: `{"severity":"MEDIUM","incident_type":"EQUIPMENT_FAILURE","severity_score":45}`}}
	e := NewEngine(ag, log.Nop(), hooks)

	e.Classify(context.Background(), &Conversation{}, "valve actuator fault", nil)

	if callOutcome != "ok" {
		t.Errorf("agent call outcome = %q, want ok", callOutcome)
	}
	if provenance != "agent" {
		t.Errorf("provenance = %q, want agent", provenance)
	}
	if sev != "MEDIUM" {
		t.Errorf("severity label = %q, want MEDIUM", sev)
	}
	if gotDur < 0 {
		t.Error("expected non-negative duration")
	}
}
