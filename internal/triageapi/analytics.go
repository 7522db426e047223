package triageapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/linnemanlabs/derrick/internal/search"
)

// rowsHandler adapts a rows-producing analytics call to an HTTP handler.
func (a *API) rowsHandler(w http.ResponseWriter, r *http.Request, name string, run func(ctx context.Context) (*search.Rows, error)) {
	if a.analytics == nil {
		http.Error(w, `{"error":"analytics not configured"}`, http.StatusServiceUnavailable)
		return
	}

	rows, err := run(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "analytics query failed", "query", name)
		http.Error(w, `{"error":"analytics backend unavailable"}`, http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"columns": rows.Columns,
		"values":  rows.Values,
	})
}

// intParam parses an optional positive integer query parameter, returning 0
// when absent and -1 when malformed.
func intParam(r *http.Request, name string) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return -1
	}
	return n
}

func (a *API) handleTrends(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days")
	if days < 0 {
		http.Error(w, `{"error":"invalid days"}`, http.StatusBadRequest)
		return
	}
	a.rowsHandler(w, r, "trends", func(ctx context.Context) (*search.Rows, error) {
		return a.analytics.Trends(ctx, days)
	})
}

func (a *API) handleSeverityDistribution(w http.ResponseWriter, r *http.Request) {
	a.rowsHandler(w, r, "severity_distribution", func(ctx context.Context) (*search.Rows, error) {
		return a.analytics.SeverityDistribution(ctx)
	})
}

func (a *API) handleMTTR(w http.ResponseWriter, r *http.Request) {
	a.rowsHandler(w, r, "mttr_by_type", func(ctx context.Context) (*search.Rows, error) {
		return a.analytics.MTTRByType(ctx)
	})
}

func (a *API) handleHighRiskLocations(w http.ResponseWriter, r *http.Request) {
	topN := intParam(r, "top")
	if topN < 0 {
		http.Error(w, `{"error":"invalid top"}`, http.StatusBadRequest)
		return
	}
	a.rowsHandler(w, r, "high_risk_locations", func(ctx context.Context) (*search.Rows, error) {
		return a.analytics.HighRiskLocations(ctx, topN)
	})
}

func (a *API) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year := intParam(r, "year")
	if year < 0 {
		http.Error(w, `{"error":"invalid year"}`, http.StatusBadRequest)
		return
	}
	a.rowsHandler(w, r, "monthly_summary", func(ctx context.Context) (*search.Rows, error) {
		return a.analytics.MonthlySummary(ctx, year)
	})
}

func (a *API) handleEquipmentFailures(w http.ResponseWriter, r *http.Request) {
	a.rowsHandler(w, r, "equipment_failure_analysis", func(ctx context.Context) (*search.Rows, error) {
		return a.analytics.EquipmentFailureAnalysis(ctx)
	})
}

func (a *API) handleExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	if a.analytics == nil {
		http.Error(w, `{"error":"analytics not configured"}`, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, a.analytics.GenerateExecutiveSummary(r.Context()))
}
