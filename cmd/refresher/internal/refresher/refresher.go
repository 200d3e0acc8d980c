package refresher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/pkg/models"
)

// MetadataKey holds the full serialized table as an ordered pair list,
// rewritten wholesale on every refresh and read by the gateway for warm start.
const MetadataKey = "cmc:metadata"

type table map[string]models.AssetMetadata

// Refresher keeps a top-N metadata table fresh: fetch from the provider on a
// fixed interval, swap the in-memory table atomically, persist to the store.
// A failed fetch keeps the previous table; reference data is a soft
// dependency and never fails the process.
type Refresher struct {
	client   ListingsClient
	rdb      RedisClient
	logger   *zap.Logger
	limit    int
	interval time.Duration

	table atomic.Pointer[table]
}

func New(client ListingsClient, rdb RedisClient, logger *zap.Logger, limit int, interval time.Duration) *Refresher {
	r := &Refresher{
		client:   client,
		rdb:      rdb,
		logger:   logger,
		limit:    limit,
		interval: interval,
	}
	empty := table{}
	r.table.Store(&empty)
	return r
}

// Lookup returns the current metadata for a base symbol.
func (r *Refresher) Lookup(symbol string) (models.AssetMetadata, bool) {
	meta, ok := (*r.table.Load())[symbol]
	return meta, ok
}

// Size returns the number of assets in the current table.
func (r *Refresher) Size() int {
	return len(*r.table.Load())
}

// Run warm-starts from the persisted table, refreshes eagerly, then on every
// interval tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.LoadPersisted(ctx); err != nil {
		r.logger.Warn("No persisted metadata to warm-start from", zap.Error(err))
	}
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh pulls the ranked listing, swaps the table and persists it. Errors
// are logged and the previous table stays in place.
func (r *Refresher) Refresh(ctx context.Context) {
	coins, err := r.client.TopListings(ctx, r.limit)
	if err != nil {
		r.logger.Error("Metadata fetch failed, keeping previous table", zap.Error(err))
		return
	}
	if len(coins) == 0 {
		r.logger.Warn("Provider returned empty listing, keeping previous table")
		return
	}

	entries := BuildEntries(coins)
	t := tableOf(entries)
	r.table.Store(&t)
	r.logger.Info("Metadata table refreshed", zap.Int("assets", len(entries)))

	payload, err := json.Marshal(entries)
	if err != nil {
		r.logger.Error("Failed to serialize metadata table", zap.Error(err))
		return
	}
	if err := r.rdb.Set(ctx, MetadataKey, payload, 0).Err(); err != nil {
		r.logger.Error("Failed to persist metadata table", zap.Error(err))
	}
}

// LoadPersisted restores the last persisted table so consumers have data
// before the first fetch completes. A missing key is a normal cold start.
func (r *Refresher) LoadPersisted(ctx context.Context) error {
	raw, err := r.rdb.Get(ctx, MetadataKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	var entries []models.MetadataEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("persisted metadata decode: %w", err)
	}
	t := tableOf(entries)
	r.table.Store(&t)
	r.logger.Info("Loaded persisted metadata", zap.Int("assets", len(entries)))
	return nil
}

// BuildEntries converts a ranked listing into the ordered entry list.
// Rank is the 1-based position in the listing.
func BuildEntries(coins []CMCCoin) []models.MetadataEntry {
	entries := make([]models.MetadataEntry, 0, len(coins))
	for i, coin := range coins {
		q := coin.Quote.USD
		entries = append(entries, models.MetadataEntry{
			Symbol: coin.Symbol,
			Meta: models.AssetMetadata{
				Symbol:           coin.Symbol,
				Name:             coin.Name,
				Logo:             LogoURL(coin.ID),
				MarketCap:        q.MarketCap,
				Rank:             i + 1,
				PercentChange1h:  q.PercentChange1h,
				PercentChange24h: q.PercentChange24h,
				PercentChange7d:  q.PercentChange7d,
				PercentChange30d: q.PercentChange30d,
			},
		})
	}
	return entries
}

func tableOf(entries []models.MetadataEntry) table {
	t := make(table, len(entries))
	for _, e := range entries {
		t[e.Symbol] = e.Meta
	}
	return t
}
