package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/qmoney/internal/contracts"
	"github.com/wonny/qmoney/pkg/redis"
)

const (
	keyPrefix = "qmoney:report"
	latestKey = "latest"

	// SnapshotTTL keeps a stale snapshot from outliving a broken schedule forever
	SnapshotTTL = 7 * 24 * time.Hour
)

// Store keeps the most recent report in redis so readers don't recompute it.
// Quotes are never stored.
type Store struct {
	cache *redis.Cache
}

// NewStore creates a new report snapshot store
func NewStore(client *redis.Client) *Store {
	return &Store{cache: redis.NewCache(client, keyPrefix)}
}

// SaveLatest replaces the latest snapshot
func (s *Store) SaveLatest(ctx context.Context, report *contracts.Report) error {
	if err := s.cache.Set(ctx, latestKey, report, SnapshotTTL); err != nil {
		return fmt.Errorf("save latest report: %w", err)
	}
	return nil
}

// Latest returns the latest snapshot; found is false when none exists or redis is disabled
func (s *Store) Latest(ctx context.Context) (*contracts.Report, bool, error) {
	var report contracts.Report
	found, err := s.cache.Get(ctx, latestKey, &report)
	if err != nil {
		return nil, false, fmt.Errorf("load latest report: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &report, true, nil
}
