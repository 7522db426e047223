package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/derrick/internal/search"
	"github.com/linnemanlabs/derrick/internal/severity"
)

// Notifier delivers finished classification results to an external channel.
type Notifier interface {
	Send(ctx context.Context, result *Result) error
}

// ServiceHooks observes service-level operations. Nil hooks are skipped.
type ServiceHooks struct {
	OnSimilarLookup func(outcome string)
	OnReport        func()
}

// Service is the business boundary for triage operations. It owns the cached
// agent conversation (guarded for concurrent callers), result storage, the
// similar-incident lookup, and escalation notifications.
type Service struct {
	store    Store
	engine   *Engine
	querier  search.Querier
	notifier Notifier
	logger   log.Logger
	index    string
	hooks    ServiceHooks

	mu   sync.Mutex
	conv *Conversation
}

// NewService creates a new triage service. querier and notifier may be nil;
// the similar-incident lookup then returns empty results and notifications
// are skipped.
func NewService(store Store, engine *Engine, querier search.Querier, notifier Notifier, logger log.Logger, index string, hooks ServiceHooks) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		engine:   engine,
		querier:  querier,
		notifier: notifier,
		logger:   logger,
		index:    index,
		hooks:    hooks,
	}
}

// conversation returns the cached agent conversation, starting one on first
// use. A failed start is cached too (empty ID): the orchestrator does not
// retry, and classification proceeds without a session.
func (s *Service) conversation(ctx context.Context) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv == nil {
		s.conv = s.engine.StartConversation(ctx)
	}
	return s.conv
}

// Classify runs the classification pipeline for a description and stores the
// result. The only error path is storage; classification itself always
// produces a usable result.
func (s *Service) Classify(ctx context.Context, description string, ictx *Context) (*Result, error) {
	start := time.Now()
	conv := s.conversation(ctx)

	c := s.engine.Classify(ctx, conv, description, ictx)

	result := &Result{
		ID:             ulid.Make().String(),
		Classification: c,
		Provenance:     c.Provenance(),
		CreatedAt:      time.Now().UTC(),
		Duration:       time.Since(start).Seconds(),
	}

	if err := s.store.Put(ctx, result); err != nil {
		return nil, fmt.Errorf("store classification: %w", err)
	}

	s.notify(ctx, result)
	return result, nil
}

// notify sends escalation-required results to the notifier. Delivery failure
// is logged, never surfaced: notification is best-effort.
func (s *Service) notify(ctx context.Context, result *Result) {
	if s.notifier == nil {
		return
	}
	det, ok := severity.Lookup(result.Classification.Severity)
	if !ok || !det.EscalationRequired {
		return
	}
	if err := s.notifier.Send(ctx, result); err != nil {
		s.logger.Error(ctx, err, "failed to send escalation notification", "id", result.ID)
	}
}

// Get retrieves a stored classification result by ID.
func (s *Service) Get(ctx context.Context, id string) (*Result, bool, error) {
	return s.store.Get(ctx, id)
}

// ListRecent returns up to limit most recent classification results.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Result, error) {
	return s.store.ListRecent(ctx, limit)
}

// Report assembles an incident report for a stored classification.
func (s *Service) Report(ctx context.Context, id string, in ReportInput) (*Report, error) {
	result, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load classification: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("classification %s not found", id)
	}
	if s.hooks.OnReport != nil {
		s.hooks.OnReport()
	}
	return GenerateReport(result.Classification, in), nil
}

// SimilarIncidents looks up historical incidents matching the classifier's
// suggested keywords. Lookup failure is recovered by returning an empty
// result set; similarity is advisory, never load-bearing.
func (s *Service) SimilarIncidents(ctx context.Context, keywords []string) []map[string]json.RawMessage {
	if s.querier == nil || len(keywords) == 0 {
		return nil
	}

	kw := sanitizeKeyword(keywords[0])
	if kw == "" {
		return nil
	}

	esql := fmt.Sprintf(`FROM %s
| WHERE description LIKE "*%s*"
| SORT severity_score DESC
| LIMIT 5
| KEEP incident_id, timestamp, incident_type, severity, description, resolution_time_hours`,
		s.index, kw)

	rows, err := s.querier.Query(ctx, esql)
	if err != nil {
		s.logger.Error(ctx, err, "similar incident lookup failed", "keyword", kw)
		s.observeSimilarLookup("error")
		return nil
	}
	s.observeSimilarLookup("ok")
	return rows.Maps()
}

func (s *Service) observeSimilarLookup(outcome string) {
	if s.hooks.OnSimilarLookup != nil {
		s.hooks.OnSimilarLookup(outcome)
	}
}

// sanitizeKeyword strips characters that would break out of the LIKE pattern.
func sanitizeKeyword(kw string) string {
	kw = strings.TrimSpace(kw)
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '*', '\\', '\n', '\r':
			return -1
		}
		return r
	}, kw)
}
