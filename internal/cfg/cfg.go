// Package cfg holds service configuration registered as flags and filled
// from the environment.
package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config carries everything the server needs beyond the common logging and
// telemetry options.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	AgentEndpoint         string
	AgentAPIKey           string
	AgentTimeoutSeconds   int
	SearchEndpoint        string
	SearchAPIKey          string
	IncidentIndex         string
	DatabaseURL           string
	SlackWebhookURL       string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.AgentEndpoint, "agent-endpoint", "", "base URL of the conversational agent backend")
	fs.StringVar(&c.AgentAPIKey, "agent-api-key", "", "API key for the conversational agent backend")
	fs.IntVar(&c.AgentTimeoutSeconds, "agent-timeout-seconds", 30, "per-call timeout for agent requests (1..300)")
	fs.StringVar(&c.SearchEndpoint, "search-endpoint", "", "base URL of the incident search backend")
	fs.StringVar(&c.SearchAPIKey, "search-api-key", "", "API key for the incident search backend")
	fs.StringVar(&c.IncidentIndex, "incident-index", "oilfield-incidents", "name of the historical incident index")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for escalation notifications")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// The agent backend is required; classification falls back to rules when
	// it is unreachable, but it must be configured.
	if c.AgentEndpoint == "" {
		errs = append(errs, errors.New("AGENT_ENDPOINT is required"))
	}
	if c.AgentAPIKey == "" {
		errs = append(errs, errors.New("AGENT_API_KEY is required"))
	}
	if c.AgentTimeoutSeconds <= 0 || c.AgentTimeoutSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid AGENT_TIMEOUT_SECONDS %d (must be 1..300)", c.AgentTimeoutSeconds))
	}

	if c.SearchEndpoint == "" {
		errs = append(errs, errors.New("SEARCH_ENDPOINT is required"))
	}
	if c.SearchAPIKey == "" {
		errs = append(errs, errors.New("SEARCH_API_KEY is required"))
	}
	if c.IncidentIndex == "" {
		errs = append(errs, errors.New("INCIDENT_INDEX is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
