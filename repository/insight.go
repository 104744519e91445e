package repository

import "context"

// InsightCache caches generated insight statements per owner. It is a cache,
// not the system of record: callers treat a failed read as a miss.
type InsightCache interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Set(ctx context.Context, userID string, statements []string) error
	Invalidate(ctx context.Context, userID string) error
}
