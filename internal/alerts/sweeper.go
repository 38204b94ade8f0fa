package alerts

import (
	"context"
	"log"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/observability/metrics"
)

// Sweeper periodically evaluates the catalog for low stock and notifies once
// per finding until the line recovers.
type Sweeper struct {
	cache    *catalog.Cache
	rule     Rule
	notifier Notifier
	interval time.Duration
	logger   *log.Logger

	active map[string]struct{}
}

// NewSweeper constructs a Sweeper.
func NewSweeper(cache *catalog.Cache, rule Rule, notifier Notifier, interval time.Duration, logger *log.Logger) (*Sweeper, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		cache:    cache,
		rule:     rule,
		notifier: notifier,
		interval: interval,
		logger:   logger,
		active:   make(map[string]struct{}),
	}, nil
}

// Start begins the sweep loop. It returns when ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce evaluates the catalog once, notifying new findings and clearing
// recovered ones.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	snapshot, err := s.cache.Data(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("alert sweep skipped: %v", err)
		}
		return
	}

	findings := s.rule.Evaluate(snapshot)
	seen := make(map[string]struct{}, len(findings))
	for _, finding := range findings {
		seen[finding.Key()] = struct{}{}
		if _, already := s.active[finding.Key()]; already {
			continue
		}
		s.active[finding.Key()] = struct{}{}
		if s.notifier == nil {
			continue
		}
		err := s.notifier.Notify(ctx, finding)
		metrics.ObserveAlertNotification(err)
		if err != nil && s.logger != nil {
			s.logger.Printf("alert notify error: stock=%s err=%v", finding.StockID, err)
		}
	}

	// Recovered lines become eligible for notification again.
	for key := range s.active {
		if _, still := seen[key]; !still {
			delete(s.active, key)
		}
	}
}
