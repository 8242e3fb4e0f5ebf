package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("base"); got != "NGN" {
			t.Errorf("base = %q", got)
		}
		if got := r.URL.Query().Get("symbols"); got != "USD,EUR" {
			t.Errorf("symbols = %q", got)
		}
		w.Write([]byte(`{"rates":{"USD":0.0013,"EUR":0.0012}}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	rates, err := f.Fetch(context.Background(), "NGN", []string{"USD", "EUR"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !approx(rates["USD"], 0.0013) || !approx(rates["EUR"], 0.0012) {
		t.Fatalf("rates = %v", rates)
	}
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	if _, err := f.Fetch(context.Background(), "NGN", []string{"USD"}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestHTTPFetcherEmptyRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{}}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL)
	if _, err := f.Fetch(context.Background(), "NGN", []string{"USD"}); err == nil {
		t.Fatal("expected error on empty rates")
	}
}
