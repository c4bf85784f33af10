package predict

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Store is a prediction cache backend.
type Store interface {
	// Get returns the cached prediction and true, or false on a miss.
	Get(ctx context.Context, key string) (domain.Prediction, bool, error)
	Set(ctx context.Context, key string, p domain.Prediction) error
}

// CachedPredictor wraps a Predictor with a cache Store. Only successful
// predictions are cached so failures are retried on the next call.
type CachedPredictor struct {
	inner   domain.Predictor
	store   Store
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedPredictor creates a cache decorator around a predictor.
func NewCachedPredictor(inner domain.Predictor, store Store, metrics *observability.Metrics, logger *slog.Logger) *CachedPredictor {
	return &CachedPredictor{
		inner:   inner,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *CachedPredictor) Predict(ctx context.Context, region string) (domain.Prediction, error) {
	key := cacheKey(region)

	p, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("prediction cache read failed", "region", region, "error", err)
	}
	if ok {
		c.metrics.PredictionCache.WithLabelValues("hit").Inc()
		return p, nil
	}
	c.metrics.PredictionCache.WithLabelValues("miss").Inc()

	p, err = c.inner.Predict(ctx, region)
	if err != nil {
		return p, err
	}
	if err := c.store.Set(ctx, key, p); err != nil {
		c.logger.Warn("prediction cache write failed", "region", region, "error", err)
	}
	return p, nil
}

func cacheKey(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// MemoryStore is a thread-safe in-process LRU with per-entry expiry.
type MemoryStore struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key       string
	value     domain.Prediction
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// NewMemoryStore creates an LRU holding at most maxEntries predictions for ttl each.
func NewMemoryStore(maxEntries int, ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *MemoryStore) Get(_ context.Context, key string) (domain.Prediction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Prediction{}, false, nil
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.remove(e)
		return domain.Prediction{}, false, nil
	}
	c.moveToFront(e)
	return e.value, true, nil
}

func (c *MemoryStore) Set(_ context.Context, key string, value domain.Prediction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryStore) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *MemoryStore) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryStore) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *MemoryStore) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
