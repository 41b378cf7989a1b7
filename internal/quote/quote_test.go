package quote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/quote"

	"github.com/shopspring/decimal"
)

func TestLookupFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/AAPL/quote" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "sekret" {
			t.Errorf("token not forwarded")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"AAPL","companyName":"Apple Inc","latestPrice":189.84}`))
	}))
	defer ts.Close()

	c := quote.NewClient(ts.URL, "sekret", time.Second)
	q, err := c.Lookup(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if q.Name != "Apple Inc" {
		t.Errorf("name: got %q", q.Name)
	}
	if !q.Price.Equal(decimal.RequireFromString("189.84")) {
		t.Errorf("price: got %s", q.Price)
	}
}

func TestLookupNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unknown symbol", http.StatusNotFound)
	}))
	defer ts.Close()

	c := quote.NewClient(ts.URL, "sekret", time.Second)
	_, err := c.Lookup(context.Background(), "ZZZZ")
	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Fatalf("want ErrSymbolNotFound, got %v", err)
	}
}

func TestLookupProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := quote.NewClient(ts.URL, "sekret", time.Second)
	_, err := c.Lookup(context.Background(), "AAPL")
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Fatalf("want ErrOracleUnavailable, got %v", err)
	}
}

func TestLookupTimeout(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block // hold the request past the client timeout
	}))
	defer ts.Close()
	defer close(block)

	c := quote.NewClient(ts.URL, "sekret", 50*time.Millisecond)
	_, err := c.Lookup(context.Background(), "AAPL")
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Fatalf("want ErrOracleUnavailable, got %v", err)
	}
}
