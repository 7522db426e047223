// Package triage provides the business boundary for Derrick's incident
// classification system. It defines the Engine (prompt construction, agent
// call, response parsing, rule-based fallback), the Service (session state,
// storage, notifications, similar-incident lookup), the Store interface, and
// domain models.
package triage
