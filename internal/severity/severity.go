// Package severity defines the static severity policy for incident triage:
// score ranges, response-time SLAs, and escalation rules per severity level.
package severity

// Level is an incident severity classification.
type Level string

const (
	Critical Level = "CRITICAL"
	High     Level = "HIGH"
	Medium   Level = "MEDIUM"
	Low      Level = "LOW"
)

// Details holds the policy metadata attached to a severity level.
type Details struct {
	ScoreRange         [2]int `json:"score_range"`
	ResponseTimeHours  int    `json:"response_time_hours"`
	EscalationRequired bool   `json:"escalation_required"`
	Description        string `json:"description"`
}

// matrix is loaded once and never mutated; Lookup returns copies.
var matrix = map[Level]Details{
	Critical: {
		ScoreRange:         [2]int{80, 100},
		ResponseTimeHours:  1,
		EscalationRequired: true,
		Description:        "Immediate threat to life, catastrophic equipment failure, or major environmental release",
	},
	High: {
		ScoreRange:         [2]int{60, 79},
		ResponseTimeHours:  4,
		EscalationRequired: true,
		Description:        "Significant safety risk, major production loss, or regulatory violation",
	},
	Medium: {
		ScoreRange:         [2]int{40, 59},
		ResponseTimeHours:  24,
		EscalationRequired: false,
		Description:        "Moderate risk, production impact, equipment damage without immediate danger",
	},
	Low: {
		ScoreRange:         [2]int{0, 39},
		ResponseTimeHours:  72,
		EscalationRequired: false,
		Description:        "Minor incident, near-miss, or procedural deviation",
	},
}

// Lookup returns the policy details for a level. The second return is false
// for anything outside the four defined levels.
func Lookup(level Level) (Details, bool) {
	d, ok := matrix[level]
	return d, ok
}

// Known reports whether level is one of the four defined severity levels.
func Known(level Level) bool {
	_, ok := matrix[level]
	return ok
}

// Levels returns the defined levels ordered from most to least severe.
func Levels() []Level {
	return []Level{Critical, High, Medium, Low}
}
