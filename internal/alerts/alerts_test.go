package alerts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/erp"
)

func snapshotWith(quantity, threshold float64) catalog.Snapshot {
	return catalog.Snapshot{
		Stocks: []erp.Stock{
			{ID: "s1", ProductID: "p1", StoreID: "m1", Quantity: erp.Number(quantity), Threshold: erp.Number(threshold)},
		},
		Products: []erp.Product{{ID: "p1", Name: "Clavier"}},
		Stores:   []erp.Store{{ID: "m1", Name: "Centre Ville"}},
	}
}

func TestRuleEvaluateFindsLowStock(t *testing.T) {
	rule := Rule{Operator: OperatorLessOrEqual, FallbackThreshold: 5}
	findings := rule.Evaluate(snapshotWith(3, 5))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.ProductName != "Clavier" || f.StoreName != "Centre Ville" {
		t.Fatalf("expected names resolved, got %+v", f)
	}
	if f.Quantity != 3 || f.Threshold != 5 {
		t.Fatalf("unexpected finding values %+v", f)
	}
}

func TestRuleEvaluateIgnoresHealthyStock(t *testing.T) {
	rule := Rule{Operator: OperatorLessOrEqual, FallbackThreshold: 5}
	if findings := rule.Evaluate(snapshotWith(10, 5)); len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
}

func TestRuleFallbackThreshold(t *testing.T) {
	rule := Rule{Operator: OperatorLess, FallbackThreshold: 4}
	findings := rule.Evaluate(snapshotWith(2, 0))
	if len(findings) != 1 {
		t.Fatalf("expected fallback threshold to apply, got %v", findings)
	}
	if findings[0].Threshold != 4 {
		t.Fatalf("expected threshold 4, got %g", findings[0].Threshold)
	}
}

func TestRuleValidate(t *testing.T) {
	if err := (Rule{Operator: ">", FallbackThreshold: 1}).Validate(); err == nil {
		t.Fatal("expected invalid operator error")
	}
	if err := (Rule{Operator: OperatorLess, FallbackThreshold: 1}).Validate(); err != nil {
		t.Fatalf("expected valid rule, got %v", err)
	}
}

func TestWebhookNotifierPayload(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload struct {
			MsgType string `json:"msgtype"`
			Text    struct {
				Content string `json:"content"`
			} `json:"text"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- payload.Text.Content
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, "")
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	finding := Finding{StockID: "s1", ProductName: "Clavier", StoreName: "Centre Ville", Quantity: 2, Threshold: 5}
	if err := notifier.Notify(context.Background(), finding); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case content := <-received:
		if !strings.Contains(content, "Clavier") || !strings.Contains(content, "Centre Ville") {
			t.Fatalf("unexpected content %q", content)
		}
	case <-time.After(time.Second):
		t.Fatal("webhook not called")
	}
}

type recordingNotifier struct {
	notified []string
}

func (r *recordingNotifier) Notify(_ context.Context, f Finding) error {
	r.notified = append(r.notified, f.StockID)
	return nil
}

type staticFetcher struct {
	snapshot catalog.Snapshot
}

func (s *staticFetcher) ListStocks(context.Context) ([]erp.Stock, error) {
	return s.snapshot.Stocks, nil
}

func (s *staticFetcher) ListProducts(context.Context) ([]erp.Product, error) {
	return s.snapshot.Products, nil
}

func (s *staticFetcher) ListStores(context.Context) ([]erp.Store, error) {
	return s.snapshot.Stores, nil
}

func TestSweeperDedupesUntilRecovery(t *testing.T) {
	fetcher := &staticFetcher{snapshot: snapshotWith(2, 5)}
	cache, err := catalog.NewCache(fetcher)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	notifier := &recordingNotifier{}
	sweeper, err := NewSweeper(cache, Rule{Operator: OperatorLessOrEqual}, notifier, time.Minute, nil)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	sweeper.SweepOnce(context.Background())
	sweeper.SweepOnce(context.Background())
	if len(notifier.notified) != 1 {
		t.Fatalf("expected a single notification while low, got %d", len(notifier.notified))
	}

	// Recovery clears the dedupe; a later drop notifies again.
	fetcher.snapshot = snapshotWith(10, 5)
	cache.Invalidate()
	sweeper.SweepOnce(context.Background())

	fetcher.snapshot = snapshotWith(1, 5)
	cache.Invalidate()
	sweeper.SweepOnce(context.Background())
	if len(notifier.notified) != 2 {
		t.Fatalf("expected a second notification after recovery, got %d", len(notifier.notified))
	}
}
