package currency

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

type fakeFetcher struct {
	rates map[string]float64
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, base string, symbols []string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func newTestCache(f *fakeFetcher, ttl time.Duration) *RateCache {
	return NewRateCache(NewMemoryStore(), f, ttl)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConvertIdentity(t *testing.T) {
	f := &fakeFetcher{}
	c := newTestCache(f, time.Hour)

	if got := c.Convert(context.Background(), 42.5, "NGN", "NGN"); got != 42.5 {
		t.Fatalf("Convert(42.5, NGN, NGN) = %v", got)
	}
	if f.calls != 0 {
		t.Fatalf("identity conversion hit the network (%d calls)", f.calls)
	}
}

func TestRatesCacheHitWithinTTL(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"USD": 0.0013}}
	c := newTestCache(f, time.Hour)
	ctx := context.Background()

	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}
	if f.calls != 1 {
		t.Fatalf("fetch calls = %d; want 1 (second read should be a cache hit)", f.calls)
	}
}

func TestRatesTTLBoundary(t *testing.T) {
	ttl := time.Hour
	f := &fakeFetcher{rates: map[string]float64{"USD": 0.0013}}
	c := newTestCache(f, ttl)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}

	// one millisecond short of expiry: reuse, no fetch
	c.now = func() time.Time { return base.Add(ttl - time.Millisecond) }
	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}
	if f.calls != 1 {
		t.Fatalf("fetch calls = %d before expiry; want 1", f.calls)
	}

	// just past expiry: a fresh fetch is attempted
	c.now = func() time.Time { return base.Add(ttl + time.Millisecond) }
	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}
	if f.calls != 2 {
		t.Fatalf("fetch calls = %d after expiry; want 2", f.calls)
	}
}

func TestRatesBaseMismatchRefetches(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"USD": 0.0013}}
	c := newTestCache(f, time.Hour)
	ctx := context.Background()

	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Rates(ctx, "EUR", []string{"USD"}); err != nil {
		t.Fatal(err)
	}
	if f.calls != 2 {
		t.Fatalf("fetch calls = %d; want 2 (base change must refetch)", f.calls)
	}
}

func TestRatesStaleFallbackOnFetchFailure(t *testing.T) {
	ttl := time.Hour
	f := &fakeFetcher{rates: map[string]float64{"USD": 0.0013}}
	c := newTestCache(f, ttl)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}

	// network gone, entry long expired: stale rates still served
	f.err = errors.New("network down")
	c.now = func() time.Time { return base.Add(48 * time.Hour) }
	rates, err := c.Rates(ctx, "NGN", []string{"USD"})
	if err != nil {
		t.Fatalf("stale fallback returned error: %v", err)
	}
	if !approx(rates["USD"], 0.0013) {
		t.Fatalf("stale rates = %v", rates)
	}
}

func TestRatesStaleFallbackIgnoresBase(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"USD": 0.0013}}
	c := newTestCache(f, time.Hour)
	ctx := context.Background()

	if _, err := c.Rates(ctx, "NGN", []string{"USD"}); err != nil {
		t.Fatal(err)
	}

	// the relaxed fallback serves the NGN snapshot even for an EUR request
	f.err = errors.New("network down")
	rates, err := c.Rates(ctx, "EUR", []string{"USD"})
	if err != nil {
		t.Fatalf("cross-base stale fallback returned error: %v", err)
	}
	if !approx(rates["USD"], 0.0013) {
		t.Fatalf("rates = %v", rates)
	}
}

func TestRatesNoCacheNoNetworkFails(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	c := newTestCache(f, time.Hour)

	if _, err := c.Rates(context.Background(), "NGN", []string{"USD"}); err == nil {
		t.Fatal("expected error with no cache and no network")
	}
}

func TestConvertUsesFetchedRate(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"USD": 0.0013}}
	c := newTestCache(f, time.Hour)

	got := c.Convert(context.Background(), 1000, "NGN", "USD")
	if !approx(got, 1.3) {
		t.Fatalf("Convert(1000, NGN, USD) = %v; want 1.3", got)
	}
}

func TestConvertHeuristicFallback(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	c := newTestCache(f, time.Hour)
	ctx := context.Background()

	if got := c.Convert(ctx, 1000, "NGN", "USD"); !approx(got, 1000*0.0012) {
		t.Fatalf("NGN->USD fallback = %v", got)
	}
	if got := c.Convert(ctx, 10, "USD", "NGN"); !approx(got, 8200) {
		t.Fatalf("USD->NGN fallback = %v", got)
	}
}

func TestConvertUnsupportedPairIsIdentity(t *testing.T) {
	f := &fakeFetcher{err: errors.New("network down")}
	c := newTestCache(f, time.Hour)

	if got := c.Convert(context.Background(), 7, "GBP", "JPY"); got != 7 {
		t.Fatalf("Convert(7, GBP, JPY) = %v; want identity", got)
	}
}

func TestConvertMissingSymbolDegrades(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.0011}}
	c := newTestCache(f, time.Hour)

	// fetch succeeds but lacks USD; heuristic table takes over
	if got := c.Convert(context.Background(), 1000, "NGN", "USD"); !approx(got, 1.2) {
		t.Fatalf("Convert with missing symbol = %v; want 1.2", got)
	}
}
