package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/erp"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type countingFetcher struct {
	stocks   []erp.Stock
	products []erp.Product
	stores   []erp.Store

	stockErr error

	stockCalls   int
	productCalls int
	storeCalls   int
}

func (f *countingFetcher) ListStocks(context.Context) ([]erp.Stock, error) {
	f.stockCalls++
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return f.stocks, nil
}

func (f *countingFetcher) ListProducts(context.Context) ([]erp.Product, error) {
	f.productCalls++
	return f.products, nil
}

func (f *countingFetcher) ListStores(context.Context) ([]erp.Store, error) {
	f.storeCalls++
	return f.stores, nil
}

func newTestCache(t *testing.T, fetcher *countingFetcher, clock *fakeClock) *Cache {
	t.Helper()
	cache, err := NewCache(fetcher, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return cache
}

func TestDataFetchesOncePerCollection(t *testing.T) {
	fetcher := &countingFetcher{
		stocks:   []erp.Stock{{ID: "s1", ProductID: "p1", Quantity: 4}},
		products: []erp.Product{{ID: "p1", Name: "Clavier"}},
		stores:   []erp.Store{{ID: "m1", Name: "Centre Ville"}},
	}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, fetcher, clock)

	snapshot, err := cache.Data(context.Background())
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(snapshot.Stocks) != 1 || len(snapshot.Products) != 1 || len(snapshot.Stores) != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if fetcher.stockCalls != 1 || fetcher.productCalls != 1 || fetcher.storeCalls != 1 {
		t.Fatalf("expected exactly one fetch per collection, got %d/%d/%d",
			fetcher.stockCalls, fetcher.productCalls, fetcher.storeCalls)
	}
}

func TestDataServesFromCacheWithinTTL(t *testing.T) {
	fetcher := &countingFetcher{}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, fetcher, clock)

	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("first data: %v", err)
	}
	clock.Advance(4 * time.Minute)
	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("second data: %v", err)
	}
	if fetcher.stockCalls != 1 || fetcher.productCalls != 1 || fetcher.storeCalls != 1 {
		t.Fatalf("expected zero fetches within TTL, got %d/%d/%d",
			fetcher.stockCalls, fetcher.productCalls, fetcher.storeCalls)
	}
}

func TestDataRefetchesAfterTTL(t *testing.T) {
	fetcher := &countingFetcher{}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, fetcher, clock)

	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("first data: %v", err)
	}
	clock.Advance(6 * time.Minute)
	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("second data: %v", err)
	}
	if fetcher.stockCalls != 2 || fetcher.productCalls != 2 || fetcher.storeCalls != 2 {
		t.Fatalf("expected one fresh fetch per collection after TTL, got %d/%d/%d",
			fetcher.stockCalls, fetcher.productCalls, fetcher.storeCalls)
	}
}

func TestFailedRefreshPreservesPreviousSnapshot(t *testing.T) {
	fetcher := &countingFetcher{
		stocks: []erp.Stock{{ID: "s1", ProductID: "p1", Quantity: 4}},
	}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, fetcher, clock)

	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("first data: %v", err)
	}

	clock.Advance(6 * time.Minute)
	fetcher.stockErr = errors.New("backend down")
	fetcher.stocks = nil
	if _, err := cache.Data(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}

	// A later successful read must return the old data, not a mixed state.
	fetcher.stockErr = nil
	fetcher.stocks = []erp.Stock{{ID: "s1", ProductID: "p1", Quantity: 4}}
	snapshot, err := cache.Data(context.Background())
	if err != nil {
		t.Fatalf("recovery data: %v", err)
	}
	if len(snapshot.Stocks) != 1 || snapshot.Stocks[0].ID != "s1" {
		t.Fatalf("unexpected snapshot after recovery %+v", snapshot)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &countingFetcher{}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, fetcher, clock)

	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("first data: %v", err)
	}
	cache.Invalidate()
	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("second data: %v", err)
	}
	if fetcher.stockCalls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d stock fetches", fetcher.stockCalls)
	}
}

func TestPrimeAppliesOptimisticUpdate(t *testing.T) {
	fetcher := &countingFetcher{
		stocks: []erp.Stock{{ID: "s1", ProductID: "p1", Quantity: 4}},
	}
	clock := &fakeClock{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, fetcher, clock)

	if _, err := cache.Data(context.Background()); err != nil {
		t.Fatalf("data: %v", err)
	}
	cache.Prime(func(s *Snapshot) {
		for i := range s.Stocks {
			if s.Stocks[i].ID == "s1" {
				s.Stocks[i].Quantity = 9
			}
		}
	})

	snapshot, err := cache.Data(context.Background())
	if err != nil {
		t.Fatalf("data after prime: %v", err)
	}
	if snapshot.Stocks[0].Quantity.Float64() != 9 {
		t.Fatalf("expected primed quantity 9, got %f", snapshot.Stocks[0].Quantity.Float64())
	}
	if fetcher.stockCalls != 1 {
		t.Fatalf("prime must not trigger a fetch, got %d", fetcher.stockCalls)
	}
}

func TestSnapshotHelpers(t *testing.T) {
	snapshot := Snapshot{
		Stocks: []erp.Stock{
			{ID: "s1", ProductID: "p1", StoreID: "m1", Quantity: 4},
			{ID: "s2", ProductID: "p1", StoreID: "m2", Quantity: 3},
		},
		Products: []erp.Product{{ID: "p1", Name: "Clavier"}},
		Stores:   []erp.Store{{ID: "m1", Name: "Centre Ville"}},
	}
	if total := snapshot.QuantityOf("p1"); total != 7 {
		t.Fatalf("expected total 7, got %f", total)
	}
	if _, ok := snapshot.ProductByID("p1"); !ok {
		t.Fatal("expected product p1")
	}
	if _, ok := snapshot.StoreByID("m9"); ok {
		t.Fatal("did not expect store m9")
	}
}
