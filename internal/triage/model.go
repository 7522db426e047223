package triage

import (
	"time"

	"github.com/linnemanlabs/derrick/internal/severity"
)

// Agent version tags distinguish how a classification was produced.
const (
	AgentVersion         = "1.0.0"
	FallbackAgentVersion = "1.0.0-fallback"
)

// Context is the optional side-channel accompanying a classification request.
// Every field is independently optional; absent fields render as "Unknown"
// (or the current time, for Timestamp) in the agent prompt.
type Context struct {
	Location  string `json:"location,omitempty"`
	Equipment string `json:"equipment,omitempty"`
	Personnel string `json:"personnel,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Classification is the structured triage outcome for one incident
// description. Agent-only fields are pointers/omitempty: they are absent
// entirely on the fallback path.
type Classification struct {
	IncidentType             string         `json:"incident_type"`
	Severity                 severity.Level `json:"severity"`
	SeverityScore            int            `json:"severity_score"`
	ImmediateActions         []string       `json:"immediate_actions"`
	RootCauseHypothesis      string         `json:"root_cause_hypothesis"`
	SimilarIncidentsKeywords []string       `json:"similar_incidents_keywords,omitempty"`

	EscalationContacts          []string `json:"escalation_contacts,omitempty"`
	EstimatedResolutionHours    float64  `json:"estimated_resolution_hours,omitempty"`
	RegulatoryReportingRequired *bool    `json:"regulatory_reporting_required,omitempty"`
	SafetyBulletinRequired      *bool    `json:"safety_bulletin_required,omitempty"`

	// Enrichment, set at parse/fallback time.
	OriginalDescription string            `json:"original_description"`
	TriageTimestamp     time.Time         `json:"triage_timestamp"`
	TriageAgentVersion  string            `json:"triage_agent_version"`
	SeverityDetails     *severity.Details `json:"severity_details,omitempty"`
}

// FallbackDerived reports whether this classification came from the
// rule-based fallback rather than the remote agent.
func (c *Classification) FallbackDerived() bool {
	return c.TriageAgentVersion == FallbackAgentVersion
}

// Provenance returns "fallback" or "agent", for metrics labelling and stored
// results.
func (c *Classification) Provenance() string {
	if c.FallbackDerived() {
		return "fallback"
	}
	return "agent"
}

// Conversation is the explicit session state correlating a sequence of
// classification calls at the remote agent. A zero ID means no session could
// be established; classification proceeds without one.
type Conversation struct {
	ID string
}

// Result is a stored classification run.
type Result struct {
	ID             string          `json:"id"`
	Classification *Classification `json:"classification"`
	Provenance     string          `json:"provenance"`
	CreatedAt      time.Time       `json:"created_at"`
	Duration       float64         `json:"duration_seconds"`
}
