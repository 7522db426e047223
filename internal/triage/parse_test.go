package triage

import (
	"encoding/json"
	"testing"

	"github.com/linnemanlabs/derrick/internal/agent"
	"github.com/linnemanlabs/derrick/internal/severity"
)

func TestParseReply_TextWithNoise(t *testing.T) {
	t.Parallel()

	reply := &agent.Reply{Text: `noise {"severity":"HIGH","incident_type":"PIPELINE_LEAK"} trailing`}

	c, err := parseReply(reply, "pipeline leak near pump station")
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if c.Severity != severity.High {
		t.Errorf("severity = %q, want HIGH", c.Severity)
	}
	if c.IncidentType != "PIPELINE_LEAK" {
		t.Errorf("incident_type = %q, want PIPELINE_LEAK", c.IncidentType)
	}
	if c.SeverityDetails == nil {
		t.Fatal("expected severity_details for recognized level")
	}
	want, _ := severity.Lookup(severity.High)
	if *c.SeverityDetails != want {
		t.Errorf("severity_details = %+v, want %+v", *c.SeverityDetails, want)
	}
	if c.TriageAgentVersion != AgentVersion {
		t.Errorf("version = %q, want %q", c.TriageAgentVersion, AgentVersion)
	}
	if c.OriginalDescription != "pipeline leak near pump station" {
		t.Errorf("original_description = %q", c.OriginalDescription)
	}
}

func TestParseReply_ObjectContent(t *testing.T) {
	t.Parallel()

	reply := &agent.Reply{Object: json.RawMessage(`{
		"incident_type": "H2S_GAS_RELEASE",
		"severity": "CRITICAL",
		"severity_score": 95,
		"immediate_actions": ["Evacuate", "Don SCBA", "Activate muster"],
		"root_cause_hypothesis": "Sour gas pocket",
		"similar_incidents_keywords": ["h2s", "sour"],
		"escalation_contacts": ["Emergency Response", "HSE Team"],
		"estimated_resolution_hours": 12,
		"regulatory_reporting_required": true,
		"safety_bulletin_required": false
	}`)}

	c, err := parseReply(reply, "h2s alarm")
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if c.Severity != severity.Critical {
		t.Errorf("severity = %q, want CRITICAL", c.Severity)
	}
	if c.SeverityScore != 95 {
		t.Errorf("severity_score = %d, want 95", c.SeverityScore)
	}
	if len(c.ImmediateActions) != 3 {
		t.Errorf("immediate_actions = %d, want 3", len(c.ImmediateActions))
	}
	if len(c.EscalationContacts) != 2 {
		t.Errorf("escalation_contacts = %d, want 2", len(c.EscalationContacts))
	}
	if c.RegulatoryReportingRequired == nil || !*c.RegulatoryReportingRequired {
		t.Error("regulatory_reporting_required should be true")
	}
	if c.SafetyBulletinRequired == nil || *c.SafetyBulletinRequired {
		t.Error("safety_bulletin_required should be false")
	}
	if c.Provenance() != "agent" {
		t.Errorf("provenance = %q, want agent", c.Provenance())
	}
}

func TestParseReply_UnknownSeverityTolerated(t *testing.T) {
	t.Parallel()

	reply := &agent.Reply{Text: `{"severity":"UNKNOWN","incident_type":"NEAR_MISS"}`}

	c, err := parseReply(reply, "near miss")
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if c.SeverityDetails != nil {
		t.Error("unknown severity must not attach severity_details")
	}
	if c.Severity != "UNKNOWN" {
		t.Errorf("severity = %q, want UNKNOWN passthrough", c.Severity)
	}
}

func TestParseReply_OutermostSpanOnly(t *testing.T) {
	t.Parallel()

	// Two brace-delimited substrings: the span from the first '{' to the
	// last '}' is not valid JSON, so the single decode attempt fails.
	reply := &agent.Reply{Text: `{"severity":"LOW"} and also {"severity":"HIGH"`}

	if _, err := parseReply(reply, "d"); err == nil {
		t.Fatal("expected decode error for outermost non-JSON span")
	}
}

func TestParseReply_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply *agent.Reply
	}{
		{"no braces", &agent.Reply{Text: "not json at all"}},
		{"open brace only", &agent.Reply{Text: "prefix { dangling"}},
		{"invalid json in span", &agent.Reply{Text: `{"severity": }`}},
		{"empty text", &agent.Reply{}},
		{"nil reply", nil},
		{"object with wrong types", &agent.Reply{Object: json.RawMessage(`{"severity_score":"ninety"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := parseReply(tt.reply, "desc"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseReply_FailureEqualsFallback(t *testing.T) {
	t.Parallel()

	desc := "chemical spill in containment area"

	// Engine semantics: parse failure falls through to the rule-based
	// classifier for the same original description.
	if _, err := parseReply(&agent.Reply{Text: "not json at all"}, desc); err == nil {
		t.Fatal("expected parse failure")
	}
	got := fallbackClassification(desc)
	want := fallbackClassification(desc)

	if got.Severity != want.Severity || got.SeverityScore != want.SeverityScore {
		t.Error("fallback output must be reproducible for the same description")
	}
	if got.Severity != severity.High {
		t.Errorf("severity = %q, want HIGH for spill keyword", got.Severity)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"surrounded", `Here you go: {"a":1}. Done.`, `{"a":1}`, false},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, false},
		{"no open brace", `a} b`, "", true},
		{"close before open", `} {`, "", true},
		{"empty", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := extractJSON(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractJSON: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("span = %q, want %q", got, tt.want)
			}
		})
	}
}
