// Package forecast implements the snapshot caching contract around the
// forecast engine (which lives elsewhere and is treated as a collaborator).
//
// Snapshots are keyed by (user, domain, horizon). Many snapshots per key may
// coexist; the newest GeneratedAt is authoritative. The cache never serves a
// snapshot whose coverage window has lapsed without flagging it stale — the
// snapshot itself is still returned so callers can decide whether to use it
// while a regeneration runs.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moneymatters/backend/internal/models"
	"github.com/moneymatters/backend/internal/storage"
)

// ErrStaleSnapshot flags a snapshot whose StartDate..EndDate window no longer
// contains now. Lookup returns it alongside the snapshot.
var ErrStaleSnapshot = errors.New("stale forecast snapshot")

// Cache is the snapshot cache over a storage backend.
type Cache struct {
	store storage.Store
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the cache's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = func() time.Time { return now().UTC() }
	}
}

// NewCache creates a snapshot cache on top of the given store.
func NewCache(store storage.Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put stores a freshly generated snapshot. GeneratedAt defaults to now; the
// coverage window must be well-formed.
func (c *Cache) Put(ctx context.Context, snap *models.ForecastSnapshot) error {
	if snap.EndDate.Before(snap.StartDate) {
		return fmt.Errorf("snapshot window %s..%s is inverted",
			snap.StartDate.Format(time.DateOnly), snap.EndDate.Format(time.DateOnly))
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = c.now()
	}
	return c.store.PutForecastSnapshot(ctx, snap)
}

// Lookup returns the newest snapshot for the key. When the snapshot's
// coverage window does not contain now, the snapshot is still returned
// together with ErrStaleSnapshot so the caller is never served stale data
// unflagged. A missing key surfaces as storage.ErrNotFound.
func (c *Cache) Lookup(ctx context.Context, userID uuid.UUID, domain models.FinancialDomain, horizonDays int) (*models.ForecastSnapshot, error) {
	snap, err := c.store.LatestForecastSnapshot(ctx, userID, domain, horizonDays)
	if err != nil {
		return nil, err
	}
	if snap.IsStale(c.now()) {
		return snap, fmt.Errorf("snapshot %s generated %s covers %s..%s: %w",
			snap.ID, snap.GeneratedAt.Format(time.RFC3339),
			snap.StartDate.Format(time.DateOnly), snap.EndDate.Format(time.DateOnly),
			ErrStaleSnapshot)
	}
	return snap, nil
}
