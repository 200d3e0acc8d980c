package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/satya1844/cryptrack/cmd/refresher/internal/refresher"
)

// MockListingsClient returns a scripted listing, or an error when Fail is set.
type MockListingsClient struct {
	Coins []refresher.CMCCoin
	Fail  bool
	Calls int
	Mu    sync.Mutex
}

func (m *MockListingsClient) TopListings(ctx context.Context, limit int) ([]refresher.CMCCoin, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Calls++
	if m.Fail {
		return nil, errors.New("provider unavailable")
	}
	if limit < len(m.Coins) {
		return m.Coins[:limit], nil
	}
	return m.Coins, nil
}

// Coin builds a minimal listing entry for tests.
func Coin(id int64, symbol, name string, marketCap float64) refresher.CMCCoin {
	var c refresher.CMCCoin
	c.ID = id
	c.Symbol = symbol
	c.Name = name
	c.Quote.USD.MarketCap = marketCap
	c.Quote.USD.PercentChange24h = 1.5
	return c
}
