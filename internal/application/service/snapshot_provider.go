package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/rating"
)

// SnapshotProvider returns validated configuration snapshots per franchise
type SnapshotProvider interface {
	Get(ctx context.Context, franchiseID int64) (*rating.Snapshot, error)
	Invalidate(franchiseID int64)
	// InvalidateAll drops every cached snapshot, used when the company table changes
	InvalidateAll()
}

type snapshotEntry struct {
	snapshot *rating.Snapshot
	expires  time.Time
}

type cachedSnapshotProvider struct {
	repo   port.ConfigRepository
	ttl    time.Duration
	now    func() time.Time
	logger Logger

	mu      sync.RWMutex
	entries map[int64]snapshotEntry
}

// NewSnapshotProvider creates a provider that keeps built snapshots for ttl.
// A ttl of zero rebuilds on every call.
func NewSnapshotProvider(repo port.ConfigRepository, ttl time.Duration, logger Logger) SnapshotProvider {
	return &cachedSnapshotProvider{
		repo:    repo,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		entries: make(map[int64]snapshotEntry),
	}
}

func (p *cachedSnapshotProvider) Get(ctx context.Context, franchiseID int64) (*rating.Snapshot, error) {
	now := p.now()

	p.mu.RLock()
	entry, ok := p.entries[franchiseID]
	p.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.snapshot, nil
	}

	cfg, err := p.repo.LoadFranchiseConfig(ctx, franchiseID)
	if err != nil {
		return nil, fmt.Errorf("load franchise config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: %d", ErrFranchiseNotFound, franchiseID)
	}

	snap, err := rating.Build(*cfg)
	if err != nil {
		p.logger.Error("Franchise configuration rejected", "franchise_id", franchiseID, "error", err)
		return nil, err
	}

	if p.ttl > 0 {
		p.mu.Lock()
		p.entries[franchiseID] = snapshotEntry{snapshot: snap, expires: now.Add(p.ttl)}
		p.mu.Unlock()
	}

	if !ok || entry.snapshot.Version() != snap.Version() {
		p.logger.Info("Configuration snapshot loaded",
			"franchise_id", franchiseID,
			"snapshot_version", snap.Version(),
			"overlaps", len(snap.Overlaps()),
		)
	}
	return snap, nil
}

func (p *cachedSnapshotProvider) Invalidate(franchiseID int64) {
	p.mu.Lock()
	delete(p.entries, franchiseID)
	p.mu.Unlock()
}

func (p *cachedSnapshotProvider) InvalidateAll() {
	p.mu.Lock()
	p.entries = make(map[int64]snapshotEntry)
	p.mu.Unlock()
}
