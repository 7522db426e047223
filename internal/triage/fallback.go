package triage

import (
	"strings"

	"github.com/linnemanlabs/derrick/internal/incident"
	"github.com/linnemanlabs/derrick/internal/severity"
)

// Keyword tiers are checked in order; the first matching tier wins regardless
// of how many tiers match.
var fallbackTiers = []struct {
	keywords []string
	severity severity.Level
	score    int
}{
	{[]string{"blowout", "explosion", "fire", "fatality", "death"}, severity.Critical, 90},
	{[]string{"injury", "leak", "spill", "h2s", "pressure"}, severity.High, 65},
	{[]string{"equipment", "failure", "malfunction"}, severity.Medium, 45},
}

var fallbackActions = []string{
	"Assess the situation and ensure personnel safety",
	"Notify immediate supervisor",
	"Isolate affected equipment if safe to do so",
	"Document initial observations",
}

const fallbackRootCause = "Under investigation - agent unavailable for detailed analysis"

// fallbackClassification is the deterministic, network-free classifier used
// whenever the remote agent path fails. It always succeeds.
//
// The incident type is always EQUIPMENT_FAILURE, even when the matched
// keywords suggest otherwise; downstream consumers depend on this behavior.
func fallbackClassification(description string) *Classification {
	lower := strings.ToLower(description)

	sev := severity.Low
	score := 20
	for _, tier := range fallbackTiers {
		if containsAny(lower, tier.keywords) {
			sev = tier.severity
			score = tier.score
			break
		}
	}

	c := &Classification{
		IncidentType:        incident.TypeEquipmentFailure,
		Severity:            sev,
		SeverityScore:       score,
		ImmediateActions:    append([]string(nil), fallbackActions...),
		RootCauseHypothesis: fallbackRootCause,
	}
	enrich(c, description, FallbackAgentVersion)
	return c
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
