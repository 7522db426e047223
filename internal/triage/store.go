package triage

import "context"

// Store is the persistence interface for classification results.
type Store interface {
	Get(ctx context.Context, id string) (*Result, bool, error)
	Put(ctx context.Context, result *Result) error
	ListRecent(ctx context.Context, limit int) ([]*Result, error)
}
