// Package analytics answers aggregate questions about historical incident
// data via ES|QL against the search backend.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/derrick/internal/search"
)

const (
	defaultTrendDays    = 30
	defaultTopLocations = 10
)

// Agent runs canned analytical queries over the incident index. Queries are
// templated server-side; none of the inputs are free-form strings.
type Agent struct {
	querier search.Querier
	index   string
	logger  log.Logger
}

// New creates an analytics agent for the given index.
func New(querier search.Querier, index string, logger log.Logger) *Agent {
	if logger == nil {
		logger = log.Nop()
	}
	return &Agent{querier: querier, index: index, logger: logger}
}

// Trends aggregates incident counts, severity, casualties, and financial
// impact per incident type over the past days.
func (a *Agent) Trends(ctx context.Context, days int) (*search.Rows, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	esql := fmt.Sprintf(`FROM %s
| WHERE timestamp >= NOW() - %d days
| STATS
    total_incidents = COUNT(*),
    avg_severity_score = AVG(severity_score),
    total_injuries = SUM(injuries),
    total_fatalities = SUM(fatalities),
    total_financial_impact = SUM(financial_impact)
  BY incident_type
| SORT total_incidents DESC`, a.index, days)
	return a.run(ctx, "trends", esql)
}

// SeverityDistribution counts incidents per severity level.
func (a *Agent) SeverityDistribution(ctx context.Context) (*search.Rows, error) {
	esql := fmt.Sprintf(`FROM %s
| STATS count = COUNT(*) BY severity
| SORT count DESC`, a.index)
	return a.run(ctx, "severity_distribution", esql)
}

// MTTRByType computes mean time to resolution per incident type over
// resolved incidents.
func (a *Agent) MTTRByType(ctx context.Context) (*search.Rows, error) {
	esql := fmt.Sprintf(`FROM %s
| WHERE status == "RESOLVED"
| STATS
    mttr_hours = AVG(resolution_time_hours),
    min_resolution = MIN(resolution_time_hours),
    max_resolution = MAX(resolution_time_hours),
    total_resolved = COUNT(*)
  BY incident_type
| SORT mttr_hours ASC`, a.index)
	return a.run(ctx, "mttr_by_type", esql)
}

// HighRiskLocations ranks fields by a composite risk score built from
// incident frequency, average severity, and critical-incident count.
func (a *Agent) HighRiskLocations(ctx context.Context, topN int) (*search.Rows, error) {
	if topN <= 0 {
		topN = defaultTopLocations
	}
	esql := fmt.Sprintf(`FROM %s
| STATS
    incident_count = COUNT(*),
    avg_severity = AVG(severity_score),
    critical_count = COUNT_IF(severity == "CRITICAL"),
    total_injuries = SUM(injuries)
  BY location.field_name
| EVAL risk_score = (avg_severity * incident_count) + (critical_count * 20)
| SORT risk_score DESC
| LIMIT %d`, a.index, topN)
	return a.run(ctx, "high_risk_locations", esql)
}

// MonthlySummary aggregates per-month incident statistics for a year. A zero
// year means the current year.
func (a *Agent) MonthlySummary(ctx context.Context, year int) (*search.Rows, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	esql := fmt.Sprintf(`FROM %s
| WHERE timestamp >= "%d-01-01" AND timestamp < "%d-01-01"
| EVAL month = DATE_TRUNC(1 month, timestamp)
| STATS
    total = COUNT(*),
    critical = COUNT_IF(severity == "CRITICAL"),
    high = COUNT_IF(severity == "HIGH"),
    injuries = SUM(injuries),
    financial_impact = SUM(financial_impact)
  BY month
| SORT month ASC`, a.index, year, year+1)
	return a.run(ctx, "monthly_summary", esql)
}

// EquipmentFailureAnalysis surfaces the most failure-prone equipment with
// downtime and cost aggregates.
func (a *Agent) EquipmentFailureAnalysis(ctx context.Context) (*search.Rows, error) {
	esql := fmt.Sprintf(`FROM %s
| WHERE incident_type == "EQUIPMENT_FAILURE"
| STATS
    failure_count = COUNT(*),
    avg_financial_impact = AVG(financial_impact),
    total_downtime_hours = SUM(resolution_time_hours)
  BY equipment_involved
| SORT failure_count DESC
| LIMIT 20`, a.index)
	return a.run(ctx, "equipment_failure_analysis", esql)
}

// ExecutiveSummary is a two-part rollup: all-time overview plus last-30-day
// activity. Sub-query failures leave the corresponding section nil; the
// summary is always returned.
type ExecutiveSummary struct {
	Overview    map[string]json.RawMessage `json:"overview,omitempty"`
	Last30Days  map[string]json.RawMessage `json:"last_30_days,omitempty"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

// GenerateExecutiveSummary runs the summary rollup queries.
func (a *Agent) GenerateExecutiveSummary(ctx context.Context) *ExecutiveSummary {
	overview := fmt.Sprintf(`FROM %s
| STATS
    total_incidents = COUNT(*),
    open_incidents = COUNT_IF(status == "OPEN"),
    critical_open = COUNT_IF(status == "OPEN" AND severity == "CRITICAL"),
    total_injuries = SUM(injuries),
    total_fatalities = SUM(fatalities),
    total_financial_impact = SUM(financial_impact),
    avg_resolution_hours = AVG(resolution_time_hours)`, a.index)

	last30 := fmt.Sprintf(`FROM %s
| WHERE timestamp >= NOW() - 30 days
| STATS
    incidents_30d = COUNT(*),
    critical_30d = COUNT_IF(severity == "CRITICAL")`, a.index)

	s := &ExecutiveSummary{GeneratedAt: time.Now().UTC()}
	s.Overview = a.firstRow(ctx, "executive_overview", overview)
	s.Last30Days = a.firstRow(ctx, "executive_last_30_days", last30)
	return s
}

// run executes one query and logs failures with the query name.
func (a *Agent) run(ctx context.Context, name, esql string) (*search.Rows, error) {
	rows, err := a.querier.Query(ctx, esql)
	if err != nil {
		a.logger.Error(ctx, err, "analytics query failed", "query", name)
		return nil, fmt.Errorf("analytics %s: %w", name, err)
	}
	return rows, nil
}

// firstRow runs a single-row aggregate and returns it keyed by column name,
// or nil if the query failed or returned nothing.
func (a *Agent) firstRow(ctx context.Context, name, esql string) map[string]json.RawMessage {
	rows, err := a.run(ctx, name, esql)
	if err != nil {
		return nil
	}
	maps := rows.Maps()
	if len(maps) == 0 {
		return nil
	}
	return maps[0]
}
