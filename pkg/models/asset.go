package models

import (
	"encoding/json"
	"fmt"
)

// RawTick is one element of the exchange's all-market ticker array. Values
// are kept in the exact string form the feed delivers them in.
type RawTick struct {
	Symbol         string `json:"s"` // trading pair, e.g. BTCUSDT
	LastPrice      string `json:"c"`
	PriceChange    string `json:"p"` // absolute 24h change
	PriceChangePct string `json:"P"` // percent 24h change
	High           string `json:"h"`
	Low            string `json:"l"`
	Volume         string `json:"v"`
}

// AssetSnapshot is the per trading-pair record kept in the prices hash.
// Latest write wins; no history is retained.
type AssetSnapshot struct {
	Symbol      string `json:"symbol"`
	Price       string `json:"price"`
	PriceChange string `json:"priceChange"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Volume      string `json:"volume"`
	Timestamp   int64  `json:"timestamp"` // unix milli at ingestion
}

// AssetMetadata is the slowly-changing reference record for one base asset.
// The whole table is replaced on each refresh, never mutated in place.
type AssetMetadata struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Logo             string  `json:"logo"`
	MarketCap        float64 `json:"marketCap"`
	Rank             int     `json:"rank"`
	PercentChange1h  float64 `json:"percentChange1h"`
	PercentChange24h float64 `json:"percentChange24h"`
	PercentChange7d  float64 `json:"percentChange7d"`
	PercentChange30d float64 `json:"percentChange30d"`
}

// EnrichedAsset is one element of the broadcast payload: a raw tick joined
// with its reference metadata.
type EnrichedAsset struct {
	Symbol           string  `json:"symbol"`
	BaseSymbol       string  `json:"baseSymbol"`
	Name             string  `json:"name"`
	Logo             string  `json:"logo"`
	Rank             int     `json:"rank"`
	MarketCap        float64 `json:"marketCap"`
	Price            string  `json:"price"`
	PriceChange      string  `json:"priceChange"`
	PercentChange1h  float64 `json:"percentChange1h"`
	PercentChange24h float64 `json:"percentChange24h"`
	PercentChange7d  float64 `json:"percentChange7d"`
	PercentChange30d float64 `json:"percentChange30d"`
	Volume           string  `json:"volume"`
	High             string  `json:"high"`
	Low              string  `json:"low"`
}

// MetadataEntry is one element of the persisted metadata list. It serializes
// as a ["BTC", {...}] pair so the stored value is an ordered list of
// symbol/metadata tuples.
type MetadataEntry struct {
	Symbol string
	Meta   AssetMetadata
}

func (e MetadataEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Symbol, e.Meta})
}

func (e *MetadataEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("metadata entry: want [symbol, metadata] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Symbol); err != nil {
		return fmt.Errorf("metadata entry symbol: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Meta); err != nil {
		return fmt.Errorf("metadata entry for %s: %w", e.Symbol, err)
	}
	return nil
}
