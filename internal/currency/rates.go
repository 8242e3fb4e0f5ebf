// Package currency converts prices between currencies using remotely
// fetched exchange rates, cached with a TTL. On fetch failure it degrades
// through a stale snapshot, then a fixed heuristic table, and finally
// identity conversion — Convert never fails.
package currency

import (
	"context"
	"log"
	"sync"
	"time"
)

// Snapshot is the cached rate set, stored as a single JSON blob.
type Snapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp int64              `json:"timestamp"` // epoch ms
}

// Store persists the latest snapshot. Implementations: in-memory, Redis,
// and the durable KV table.
type Store interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Fetcher retrieves fresh rates for a base currency.
type Fetcher interface {
	Fetch(ctx context.Context, base string, symbols []string) (map[string]float64, error)
}

// Hard-coded last-resort multipliers, keyed "FROM:TO". Only the NGN/USD/EUR
// pairs the storefront actually prices in are covered; anything else falls
// back to identity.
var fallbackRates = map[string]float64{
	"NGN:USD": 0.0012,
	"USD:NGN": 820,
	"NGN:EUR": 0.0011,
	"EUR:NGN": 905,
}

type RateCache struct {
	mu      sync.Mutex
	store   Store
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
}

func NewRateCache(store Store, fetcher Fetcher, ttl time.Duration) *RateCache {
	return &RateCache{
		store:   store,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Rates returns a rate map for base. A cached snapshot is reused only while
// its base matches and its age is under the TTL; otherwise a fresh fetch is
// attempted, falling back to whatever snapshot exists (any base, any age)
// when the fetch fails. With no snapshot and no network, the fetch error
// surfaces.
func (c *RateCache) Rates(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("[currency] snapshot load failed: %v", err)
		ok = false
	}

	nowMs := c.now().UnixMilli()
	if ok && snap.Base == base && nowMs-snap.Timestamp < c.ttl.Milliseconds() {
		return snap.Rates, nil
	}

	rates, ferr := c.fetcher.Fetch(ctx, base, symbols)
	if ferr == nil {
		fresh := Snapshot{Base: base, Rates: rates, Timestamp: nowMs}
		if serr := c.store.Save(ctx, fresh); serr != nil {
			log.Printf("[currency] snapshot save failed: %v", serr)
		}
		return rates, nil
	}

	// Relaxed fallback: any cached snapshot beats no data at all.
	if ok {
		log.Printf("[currency] fetch failed, serving stale snapshot (base %s): %v", snap.Base, ferr)
		return snap.Rates, nil
	}
	return nil, ferr
}

// Convert converts amount between currencies. It never returns an error:
// when both network and cache are unavailable it applies the fixed
// heuristic table, and for pairs that table does not cover it returns the
// amount unchanged.
func (c *RateCache) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if from == to {
		return amount
	}
	rates, err := c.Rates(ctx, from, []string{to})
	if err == nil {
		if rate, ok := rates[to]; ok {
			return amount * rate
		}
	}
	if rate, ok := fallbackRates[from+":"+to]; ok {
		return amount * rate
	}
	return amount
}
