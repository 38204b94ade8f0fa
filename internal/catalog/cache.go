// Package catalog caches the three related backend collections (stocks,
// products, stores) behind a shared time-to-live, so repeated reads within
// the window cost no network round trips. The three collections always
// refresh together; a partial failure keeps the previous snapshot intact.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saul00x/gestion3-sub000/internal/erp"
	"github.com/saul00x/gestion3-sub000/internal/observability/metrics"
)

// DefaultTTL is the staleness window for the cached snapshot.
const DefaultTTL = 5 * time.Minute

// Snapshot holds the three collections fetched together.
type Snapshot struct {
	Stocks   []erp.Stock   `json:"stocks"`
	Products []erp.Product `json:"products"`
	Stores   []erp.Store   `json:"stores"`
}

// Fetcher loads the three collections from the backend.
type Fetcher interface {
	ListStocks(ctx context.Context) ([]erp.Stock, error)
	ListProducts(ctx context.Context) ([]erp.Product, error)
	ListStores(ctx context.Context) ([]erp.Store, error)
}

// Clock returns the current time; injected so tests control staleness.
type Clock func() time.Time

// Cache is the process-wide read-through cache. All consumers share one
// instance; it is safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	clock   Clock
	ttl     time.Duration

	mu          sync.Mutex
	snapshot    Snapshot
	lastFetch   time.Time
	initialized bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the staleness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the cache clock.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewCache constructs a Cache.
func NewCache(fetcher Fetcher, opts ...Option) (*Cache, error) {
	if fetcher == nil {
		return nil, errors.New("catalog: nil fetcher")
	}
	c := &Cache{
		fetcher: fetcher,
		clock:   func() time.Time { return time.Now().UTC() },
		ttl:     DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Data returns the cached snapshot, refreshing it first when stale. The
// refresh fetches the three collections concurrently and replaces the cache
// atomically: if any fetch fails, the previous snapshot is preserved and the
// error is returned to the caller.
func (c *Cache) Data(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.initialized && now.Sub(c.lastFetch) < c.ttl {
		metrics.ObserveCatalogHit()
		return c.snapshot.clone(), nil
	}

	started := now
	fresh, err := c.refresh(ctx)
	metrics.ObserveCatalogRefresh(err, c.clock().Sub(started))
	if err != nil {
		return Snapshot{}, err
	}

	c.snapshot = fresh
	c.lastFetch = c.clock()
	c.initialized = true
	return c.snapshot.clone(), nil
}

// Invalidate forces the next Data call to refetch. Called after any local
// mutation so the next read reflects it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFetch = time.Time{}
}

// Prime applies the server's response to a local mutation directly to the
// in-memory snapshot, avoiding a stale read between the mutation and the
// next refresh. No-op until the cache is initialized.
func (c *Cache) Prime(apply func(*Snapshot)) {
	if apply == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	apply(&c.snapshot)
}

func (c *Cache) refresh(ctx context.Context) (Snapshot, error) {
	var fresh Snapshot
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		stocks, err := c.fetcher.ListStocks(ctx)
		if err != nil {
			return fmt.Errorf("catalog: stocks: %w", err)
		}
		fresh.Stocks = stocks
		return nil
	})
	group.Go(func() error {
		products, err := c.fetcher.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("catalog: products: %w", err)
		}
		fresh.Products = products
		return nil
	})
	group.Go(func() error {
		stores, err := c.fetcher.ListStores(ctx)
		if err != nil {
			return fmt.Errorf("catalog: stores: %w", err)
		}
		fresh.Stores = stores
		return nil
	})
	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}
	return fresh, nil
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Stocks:   make([]erp.Stock, len(s.Stocks)),
		Products: make([]erp.Product, len(s.Products)),
		Stores:   make([]erp.Store, len(s.Stores)),
	}
	copy(out.Stocks, s.Stocks)
	copy(out.Products, s.Products)
	copy(out.Stores, s.Stores)
	return out
}

// ProductByID finds a product in the snapshot.
func (s Snapshot) ProductByID(id string) (erp.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return erp.Product{}, false
}

// StoreByID finds a store in the snapshot.
func (s Snapshot) StoreByID(id string) (erp.Store, bool) {
	for _, st := range s.Stores {
		if st.ID == id {
			return st, true
		}
	}
	return erp.Store{}, false
}

// QuantityOf sums the stock quantity of a product across stores.
func (s Snapshot) QuantityOf(productID string) float64 {
	var total float64
	for _, line := range s.Stocks {
		if line.ProductID == productID {
			total += line.Quantity.Float64()
		}
	}
	return total
}
