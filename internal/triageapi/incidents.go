package triageapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/derrick/internal/triage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type classifyRequest struct {
	Description string          `json:"description"`
	Context     *triage.Context `json:"context,omitempty"`
}

func (a *API) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		http.Error(w, `{"error":"description is required"}`, http.StatusBadRequest)
		return
	}

	result, err := a.svc.Classify(r.Context(), req.Description, req.Context)
	if err != nil {
		a.logger.Error(r.Context(), err, "classification failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("derrick.triage.id", result.ID),
		attribute.String("derrick.triage.severity", string(result.Classification.Severity)),
		attribute.String("derrick.triage.provenance", result.Provenance),
	)

	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleGetTriage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("derrick.triage.id", id))

	result, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get classification result", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleListTriage(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	results, err := a.svc.ListRecent(r.Context(), limit)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list classification results")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*triage.Result{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("derrick.triage.id", id))

	var in triage.ReportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	report, err := a.svc.Report(r.Context(), id, in)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to generate report", "id", id)
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleSimilar(w http.ResponseWriter, r *http.Request) {
	keywords := r.URL.Query()["keyword"]
	if len(keywords) == 0 {
		http.Error(w, `{"error":"at least one keyword is required"}`, http.StatusBadRequest)
		return
	}

	incidents := a.svc.SimilarIncidents(r.Context(), keywords)
	if incidents == nil {
		incidents = []map[string]json.RawMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"similar_incidents": incidents})
}
