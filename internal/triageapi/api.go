// Package triageapi exposes incident classification, reporting, and analytics
// over HTTP.
package triageapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/derrick/internal/analytics"
	"github.com/linnemanlabs/derrick/internal/search"
	"github.com/linnemanlabs/derrick/internal/triage"
)

// TriageService defines the business operations triageapi needs.
type TriageService interface {
	Classify(ctx context.Context, description string, ictx *triage.Context) (*triage.Result, error)
	Get(ctx context.Context, id string) (*triage.Result, bool, error)
	ListRecent(ctx context.Context, limit int) ([]*triage.Result, error)
	Report(ctx context.Context, id string, in triage.ReportInput) (*triage.Report, error)
	SimilarIncidents(ctx context.Context, keywords []string) []map[string]json.RawMessage
}

// Analytics defines the aggregate-query operations triageapi exposes.
type Analytics interface {
	Trends(ctx context.Context, days int) (*search.Rows, error)
	SeverityDistribution(ctx context.Context) (*search.Rows, error)
	MTTRByType(ctx context.Context) (*search.Rows, error)
	HighRiskLocations(ctx context.Context, topN int) (*search.Rows, error)
	MonthlySummary(ctx context.Context, year int) (*search.Rows, error)
	EquipmentFailureAnalysis(ctx context.Context) (*search.Rows, error)
	GenerateExecutiveSummary(ctx context.Context) *analytics.ExecutiveSummary
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	svc       TriageService
	analytics Analytics
}

// New creates a new API handler. analytics may be nil; the analytics routes
// then answer 503.
func New(logger log.Logger, svc TriageService, analytics Analytics) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger:    logger,
		svc:       svc,
		analytics: analytics,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/incidents/classify", a.handleClassify)
		r.Get("/incidents/similar", a.handleSimilar)
		r.Get("/triage", a.handleListTriage)
		r.Get("/triage/{id}", a.handleGetTriage)
		r.Post("/triage/{id}/report", a.handleReport)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/trends", a.handleTrends)
			r.Get("/severity-distribution", a.handleSeverityDistribution)
			r.Get("/mttr", a.handleMTTR)
			r.Get("/high-risk-locations", a.handleHighRiskLocations)
			r.Get("/monthly-summary", a.handleMonthlySummary)
			r.Get("/equipment-failures", a.handleEquipmentFailures)
			r.Get("/executive-summary", a.handleExecutiveSummary)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
