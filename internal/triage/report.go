package triage

import (
	"time"

	"github.com/linnemanlabs/derrick/internal/severity"
)

// ReportInput is the caller-supplied incident identity merged into a report.
type ReportInput struct {
	IncidentID string `json:"incident_id"`
	Location   string `json:"location"`
	Timestamp  string `json:"timestamp"`
}

// ReportSummary is the condensed incident block at the top of a report.
type ReportSummary struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Severity      severity.Level `json:"severity"`
	SeverityScore int            `json:"severity_score"`
	Location      string         `json:"location"`
	Timestamp     string         `json:"timestamp"`
}

// Report is the final incident report assembled from a classification.
type Report struct {
	ReportID              string          `json:"report_id"`
	GeneratedAt           time.Time       `json:"generated_at"`
	IncidentSummary       ReportSummary   `json:"incident_summary"`
	TriageResults         *Classification `json:"triage_results"`
	RecommendedActions    []string        `json:"recommended_actions"`
	EscalationRequired    bool            `json:"escalation_required"`
	ResponseDeadlineHours int             `json:"response_deadline_hours"`
	RegulatoryReporting   bool            `json:"regulatory_reporting"`
}

// GenerateReport merges a classification with caller-supplied incident data.
// Escalation and the response deadline are recomputed from the severity
// policy, never trusted from agent output: this is the one safety-relevant
// decision the agent does not get to make. Unknown or missing severity
// defaults to MEDIUM.
func GenerateReport(c *Classification, in ReportInput) *Report {
	now := time.Now().UTC()

	det, ok := severity.Lookup(c.Severity)
	if !ok {
		det, _ = severity.Lookup(severity.Medium)
	}

	return &Report{
		ReportID:    "RPT-" + now.Format("20060102-150405"),
		GeneratedAt: now,
		IncidentSummary: ReportSummary{
			ID:            in.IncidentID,
			Type:          c.IncidentType,
			Severity:      c.Severity,
			SeverityScore: c.SeverityScore,
			Location:      in.Location,
			Timestamp:     in.Timestamp,
		},
		TriageResults:         c,
		RecommendedActions:    c.ImmediateActions,
		EscalationRequired:    det.EscalationRequired,
		ResponseDeadlineHours: det.ResponseTimeHours,
		RegulatoryReporting:   c.RegulatoryReportingRequired != nil && *c.RegulatoryReportingRequired,
	}
}
