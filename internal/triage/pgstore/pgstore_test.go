package pgstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/linnemanlabs/derrick/internal/postgres"
	"github.com/linnemanlabs/derrick/internal/severity"
	"github.com/linnemanlabs/derrick/internal/triage"
	"github.com/linnemanlabs/derrick/internal/triage/pgstore"
)

func openStore(t *testing.T) *pgstore.Store {
	t.Helper()
	dsn := os.Getenv("DERRICK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DERRICK_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("postgres.NewPool: %v", err)
	}
	s, err := pgstore.New(ctx, pool)
	if err != nil {
		t.Fatalf("pgstore.New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func sampleResult(id string, createdAt time.Time) *triage.Result {
	reporting := true
	return &triage.Result{
		ID: id,
		Classification: &triage.Classification{
			IncidentType:                "PIPELINE_LEAK",
			Severity:                    severity.High,
			SeverityScore:               68,
			ImmediateActions:            []string{"Isolate section", "Notify HSE"},
			RootCauseHypothesis:         "External corrosion at weld joint",
			SimilarIncidentsKeywords:    []string{"corrosion", "pipeline"},
			RegulatoryReportingRequired: &reporting,
			OriginalDescription:         "pipeline leak near pump station 4",
			TriageTimestamp:             createdAt,
			TriageAgentVersion:          triage.AgentVersion,
		},
		Provenance: "agent",
		CreatedAt:  createdAt,
		Duration:   1.23,
	}
}

func assertEqual[T comparable](t *testing.T, field string, want, got T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestPutAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	r := sampleResult("test-put-get-001", now)

	if err := s.Put(ctx, r); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false, want true")
	}

	assertEqual(t, "ID", r.ID, got.ID)
	assertEqual(t, "Provenance", r.Provenance, got.Provenance)
	assertEqual(t, "Duration", r.Duration, got.Duration)
	assertEqual(t, "Severity", r.Classification.Severity, got.Classification.Severity)
	assertEqual(t, "IncidentType", r.Classification.IncidentType, got.Classification.IncidentType)
	assertEqual(t, "SeverityScore", r.Classification.SeverityScore, got.Classification.SeverityScore)
	assertEqual(t, "RootCauseHypothesis", r.Classification.RootCauseHypothesis, got.Classification.RootCauseHypothesis)

	if len(got.Classification.ImmediateActions) != 2 {
		t.Errorf("ImmediateActions = %v", got.Classification.ImmediateActions)
	}
	if got.Classification.RegulatoryReportingRequired == nil || !*got.Classification.RegulatoryReportingRequired {
		t.Error("RegulatoryReportingRequired should round-trip as true")
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, ok, err := s.Get(context.Background(), "nonexistent-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get returned ok=true for nonexistent ID")
	}
}

func TestUpsert(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	r := sampleResult("test-upsert-001", now)
	if err := s.Put(ctx, r); err != nil {
		t.Fatalf("Put initial: %v", err)
	}

	r.Provenance = "fallback"
	r.Classification.Severity = severity.Medium
	r.Classification.SeverityScore = 45
	r.Classification.TriageAgentVersion = triage.FallbackAgentVersion
	r.Duration = 0.04

	if err := s.Put(ctx, r); err != nil {
		t.Fatalf("Put update: %v", err)
	}

	got, ok, err := s.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get after upsert: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false after upsert")
	}

	assertEqual(t, "Provenance", "fallback", got.Provenance)
	assertEqual(t, "Severity", severity.Medium, got.Classification.Severity)
	assertEqual(t, "SeverityScore", 45, got.Classification.SeverityScore)
	assertEqual(t, "Duration", 0.04, got.Duration)
}

func TestListRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Microsecond).UTC()
	for i := range 3 {
		r := sampleResult("test-list-00"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	got, err := s.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Errorf("expected newest first, got %v then %v", got[0].CreatedAt, got[1].CreatedAt)
	}
}
