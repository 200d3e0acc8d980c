package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/satya1844/cryptrack/pkg/models"
)

const (
	pricesKey      = "prices"
	metadataKey    = "cmc:metadata"
	updatesChannel = "prices:updates"
)

// Compile-time check to ensure RedisStore implements PriceStore
var _ PriceStore = (*RedisStore)(nil)

type RedisStore struct {
	client *redis.Client
	pubsub *redis.PubSub
}

// NewRedisStore wires the store. The pub/sub subscription uses a dedicated
// connection (go-redis puts a subscribed client in pub/sub mode); the client
// handles everything else.
func NewRedisStore(client *redis.Client) *RedisStore {
	ps := client.Subscribe(context.Background(), updatesChannel)
	return &RedisStore{
		client: client,
		pubsub: ps,
	}
}

// Snapshots returns the full price hash, one entry per trading pair.
func (r *RedisStore) Snapshots(ctx context.Context) (map[string]models.AssetSnapshot, error) {
	fields, err := r.client.HGetAll(ctx, pricesKey).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.AssetSnapshot, len(fields))
	for sym, raw := range fields {
		var snap models.AssetSnapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			// Skip unreadable entries rather than failing the whole read.
			continue
		}
		out[sym] = snap
	}
	return out, nil
}

// LoadMetadata reads the persisted metadata pair list. A missing key returns
// an empty result, not an error.
func (r *RedisStore) LoadMetadata(ctx context.Context) ([]models.MetadataEntry, error) {
	raw, err := r.client.Get(ctx, metadataKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []models.MetadataEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RunPubSub is a blocking loop that delivers each raw batch published on the
// updates channel to the callback, in delivery order.
func (r *RedisStore) RunPubSub(ctx context.Context, onMessage func(payload string)) {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			onMessage(msg.Payload)
		}
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	if err := r.pubsub.Close(); err != nil {
		return err
	}
	return r.client.Close()
}
