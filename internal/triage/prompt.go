package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/derrick/internal/incident"
)

// buildClassificationPrompt composes the structured instruction sent to the
// remote agent. The contract with a free-text generator is necessarily soft:
// the prompt maximizes the odds of a parseable, schema-conformant reply, and
// the tolerant parser plus the fallback classifier cover the rest.
func buildClassificationPrompt(description string, ictx *Context) string {
	var contextBlock string
	if ictx != nil {
		contextBlock = fmt.Sprintf(`
Additional Context:
- Location: %s
- Equipment: %s
- Personnel on site: %s
- Time of incident: %s
`,
			orUnknown(ictx.Location),
			orUnknown(ictx.Equipment),
			orUnknown(ictx.Personnel),
			orNow(ictx.Timestamp),
		)
	}

	return fmt.Sprintf(`You are an expert oilfield safety and operations AI assistant.

Analyze this incident report and provide structured classification:

INCIDENT DESCRIPTION:
%s
%s
Provide your analysis in JSON format with these fields:
1. incident_type: One of [%s]
2. severity: CRITICAL/HIGH/MEDIUM/LOW
3. severity_score: 0-100
4. immediate_actions: List of 3-5 immediate response actions
5. root_cause_hypothesis: Most likely root cause
6. similar_incidents_keywords: Keywords to search historical incidents
7. escalation_contacts: List of teams to notify
8. estimated_resolution_hours: Estimated time to resolve
9. regulatory_reporting_required: true/false
10. safety_bulletin_required: true/false

Respond ONLY with the JSON object.`,
		description,
		contextBlock,
		strings.Join(incident.KnownTypes(), ", "),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNow(s string) string {
	if s == "" {
		return time.Now().Format(time.RFC3339)
	}
	return s
}
