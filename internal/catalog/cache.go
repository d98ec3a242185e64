package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mindwell/portal-gateway/internal/cache"
	"github.com/mindwell/portal-gateway/internal/models"
)

const snapshotKey = "catalog:snapshot"

// Source fetches the catalog lists from the backend
type Source interface {
	GetAllTests(ctx context.Context) ([]models.Test, error)
	GetCounsellors(ctx context.Context) ([]models.Counsellor, error)
	GetFilters(ctx context.Context) (*models.FilterValues, error)
}

// Snapshot is the cached state of the catalog
type Snapshot struct {
	Tests       []models.Test       `json:"tests"`
	Counsellors []models.Counsellor `json:"counsellors"`
	Filters     models.FilterValues `json:"filters"`
	LoadedAt    time.Time           `json:"loaded_at"`
}

// Cache owns the tests-by-slug and counsellor lists. It is loaded once,
// refreshed only on request and never invalidated on its own.
type Cache struct {
	store  cache.Store
	source Source
	group  singleflight.Group

	mu     sync.RWMutex
	snap   *Snapshot
	bySlug map[string]models.Test
}

// NewCache creates a catalog cache backed by store
func NewCache(store cache.Store, source Source) *Cache {
	return &Cache{store: store, source: source}
}

// Load fills the cache from the shared snapshot, or from the backend when
// no snapshot exists. A loaded cache is left untouched.
func (c *Cache) Load(ctx context.Context) error {
	if c.loaded() {
		return nil
	}

	var snap Snapshot
	err := c.store.Get(ctx, snapshotKey, &snap)
	switch {
	case err == nil:
		c.swap(&snap)
		slog.Info("catalog loaded from store", "tests", len(snap.Tests), "counsellors", len(snap.Counsellors))
		return nil
	case !errors.Is(err, cache.ErrMiss):
		slog.Warn("catalog snapshot unreadable, refreshing", "error", err)
	}

	return c.Refresh(ctx)
}

// Refresh reloads every list from the backend and replaces the snapshot.
// Concurrent refreshes share one backend round.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Cache) refresh(ctx context.Context) error {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tests, err := c.source.GetAllTests(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch tests: %w", err)
		}
		snap.Tests = tests
		return nil
	})
	g.Go(func() error {
		counsellors, err := c.source.GetCounsellors(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch counsellors: %w", err)
		}
		snap.Counsellors = counsellors
		return nil
	})
	g.Go(func() error {
		filters, err := c.source.GetFilters(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch filters: %w", err)
		}
		if filters != nil {
			snap.Filters = *filters
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	snap.LoadedAt = time.Now().UTC()
	if err := c.store.Set(ctx, snapshotKey, &snap); err != nil {
		slog.Warn("failed to persist catalog snapshot", "error", err)
	}
	c.swap(&snap)

	slog.Info("catalog refreshed", "tests", len(snap.Tests), "counsellors", len(snap.Counsellors))
	return nil
}

// Tests returns every cached test
func (c *Cache) Tests(ctx context.Context) []models.Test {
	snap := c.current(ctx)
	if snap == nil {
		return []models.Test{}
	}
	return append([]models.Test(nil), snap.Tests...)
}

// Test returns the cached test with the given slug
func (c *Cache) Test(ctx context.Context, slug string) (models.Test, bool) {
	if c.current(ctx) == nil {
		return models.Test{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.bySlug[slug]
	return t, ok
}

// Counsellors returns every cached counsellor
func (c *Cache) Counsellors(ctx context.Context) []models.Counsellor {
	snap := c.current(ctx)
	if snap == nil {
		return []models.Counsellor{}
	}
	return append([]models.Counsellor(nil), snap.Counsellors...)
}

// Filters returns the available filter values
func (c *Cache) Filters(ctx context.Context) models.FilterValues {
	snap := c.current(ctx)
	if snap == nil {
		return models.FilterValues{}
	}
	return snap.Filters
}

// IsActive reports whether slug is in the active test list
func (c *Cache) IsActive(ctx context.Context, slug string) bool {
	t, ok := c.Test(ctx, slug)
	return ok && bool(t.IsActive)
}

// LoadedAt returns when the current snapshot was fetched, zero if never
func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return time.Time{}
	}
	return c.snap.LoadedAt
}

// current returns the snapshot, loading it on first use
func (c *Cache) current(ctx context.Context) *Snapshot {
	if err := c.Load(ctx); err != nil {
		slog.Error("failed to load catalog", "error", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap != nil
}

func (c *Cache) swap(snap *Snapshot) {
	bySlug := make(map[string]models.Test, len(snap.Tests))
	for _, t := range snap.Tests {
		if _, dup := bySlug[t.Slug]; !dup {
			bySlug[t.Slug] = t
		}
	}

	c.mu.Lock()
	c.snap = snap
	c.bySlug = bySlug
	c.mu.Unlock()
}
