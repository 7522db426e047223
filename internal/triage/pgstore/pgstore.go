// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/derrick/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/derrick/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists classification results in PostgreSQL. The full classification
// document lives in a JSONB column; severity and incident type are lifted into
// their own columns for querying.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store. The
// Store takes ownership of the pool.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const resultColumns = `id, provenance, classification, created_at, duration_s`

// Get retrieves a classification result by ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Result, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + resultColumns + ` FROM classification_runs WHERE id = $1`
	r, err := scanResultRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// Put inserts or updates a classification result.
func (s *Store) Put(ctx context.Context, r *triage.Result) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	classificationJSON, err := json.Marshal(r.Classification)
	if err != nil {
		return fmt.Errorf("marshal classification: %w", err)
	}

	query := `INSERT INTO classification_runs (
		id, provenance, severity, incident_type, severity_score, classification, created_at, duration_s
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	ON CONFLICT (id) DO UPDATE SET
		provenance     = EXCLUDED.provenance,
		severity       = EXCLUDED.severity,
		incident_type  = EXCLUDED.incident_type,
		severity_score = EXCLUDED.severity_score,
		classification = EXCLUDED.classification,
		duration_s     = EXCLUDED.duration_s`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.Provenance, string(r.Classification.Severity), r.Classification.IncidentType,
		r.Classification.SeverityScore, classificationJSON, r.CreatedAt, r.Duration,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert classification: %w", err)
	}
	return nil
}

// ListRecent returns up to limit results, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*triage.Result, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ListRecent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + resultColumns + ` FROM classification_runs ORDER BY created_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*triage.Result
	for rows.Next() {
		r, err := scanResultRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// scanResultRow scans a single row into a triage.Result. Returns (nil, nil)
// when no row is found.
func scanResultRow(row pgx.Row) (*triage.Result, error) {
	var (
		r                  triage.Result
		classificationJSON []byte
		createdAt          time.Time
	)

	err := row.Scan(&r.ID, &r.Provenance, &classificationJSON, &createdAt, &r.Duration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.CreatedAt = createdAt.UTC()

	if err := json.Unmarshal(classificationJSON, &r.Classification); err != nil {
		return nil, fmt.Errorf("unmarshal classification: %w", err)
	}

	return &r, nil
}
