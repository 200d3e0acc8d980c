package repository

import (
	"context"

	"github.com/satya1844/cryptrack/pkg/models"
)

type PriceStore interface {
	Snapshots(ctx context.Context) (map[string]models.AssetSnapshot, error)
	LoadMetadata(ctx context.Context) ([]models.MetadataEntry, error)
	RunPubSub(ctx context.Context, onMessage func(payload string))
	Ping(ctx context.Context) error
	Close() error
}
