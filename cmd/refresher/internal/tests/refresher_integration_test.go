package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/refresher/internal/refresher"
)

const listingsBody = `{
  "data": [
    {"id": 1, "name": "Bitcoin", "symbol": "BTC",
     "quote": {"USD": {"price": 65000.12, "market_cap": 1.28e12, "volume_24h": 3.1e10,
       "percent_change_1h": 0.2, "percent_change_24h": 1.5,
       "percent_change_7d": -3.1, "percent_change_30d": 12.4}}},
    {"id": 1027, "name": "Ethereum", "symbol": "ETH",
     "quote": {"USD": {"price": 3200.5, "market_cap": 3.9e11, "volume_24h": 1.5e10,
       "percent_change_1h": -0.1, "percent_change_24h": 0.8,
       "percent_change_7d": 2.2, "percent_change_30d": 8.0}}}
  ]
}`

func TestRefresher_EndToEnd_ProviderToStore(t *testing.T) {
	var gotKey, gotQuery string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/cryptocurrency/listings/latest") {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("X-CMC_PRO_API_KEY")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listingsBody))
	}))
	defer provider.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	client := refresher.NewCMCClient(provider.URL, "test-key")
	ref := refresher.New(client, rdb, zap.NewNop(), 100, 10*time.Minute)

	ref.Refresh(context.Background())

	if gotKey != "test-key" {
		t.Errorf("API key header not sent, got %q", gotKey)
	}
	if !strings.Contains(gotQuery, "limit=100") || !strings.Contains(gotQuery, "convert=USD") {
		t.Errorf("Unexpected query: %q", gotQuery)
	}

	meta, ok := ref.Lookup("ETH")
	if !ok {
		t.Fatal("Expected ETH in table")
	}
	if meta.Rank != 2 {
		t.Errorf("ETH rank = %d, want 2", meta.Rank)
	}
	if meta.PercentChange30d != 8.0 {
		t.Errorf("ETH percentChange30d = %v, want 8.0", meta.PercentChange30d)
	}

	raw, err := mr.Get(refresher.MetadataKey)
	if err != nil {
		t.Fatalf("Persisted table missing: %v", err)
	}
	if !strings.Contains(raw, `["BTC",`) {
		t.Errorf("Persisted value is not the ordered pair list: %s", raw)
	}
}

func TestRefresher_EndToEnd_ServerErrorKeepsTable(t *testing.T) {
	fail := false
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, `{"status":{"error_code":1008}}`, http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(listingsBody))
	}))
	defer provider.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ref := refresher.New(refresher.NewCMCClient(provider.URL, "k"), rdb, zap.NewNop(), 100, 10*time.Minute)

	ref.Refresh(context.Background())
	fail = true
	ref.Refresh(context.Background())

	if _, ok := ref.Lookup("BTC"); !ok {
		t.Error("Rate-limited refresh must keep the previous table")
	}
}
