package broadcaster

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/satya1844/cryptrack/cmd/gateway/internal/metadata"
	"github.com/satya1844/cryptrack/pkg/models"
)

// UpdateSource delivers raw batches from the update channel, in order.
type UpdateSource interface {
	RunPubSub(ctx context.Context, onMessage func(payload string))
}

// TableProvider exposes the current metadata table.
type TableProvider interface {
	Current() metadata.Table
}

// Sink receives each serialized enriched payload.
type Sink interface {
	Broadcast(msg []byte)
}

// Broadcaster turns raw tick batches into enriched broadcast payloads.
// It owns no persistent state: every batch is recomputed against the table
// the provider serves at that moment.
type Broadcaster struct {
	source UpdateSource
	tables TableProvider
	sink   Sink
	logger *zap.Logger
	opts   Options
}

func New(source UpdateSource, tables TableProvider, sink Sink, logger *zap.Logger, opts Options) *Broadcaster {
	return &Broadcaster{
		source: source,
		tables: tables,
		sink:   sink,
		logger: logger,
		opts:   opts,
	}
}

// Run consumes the update channel until ctx is cancelled. Batches are
// joined and handed to the sink one at a time, in delivery order.
func (b *Broadcaster) Run(ctx context.Context) {
	b.source.RunPubSub(ctx, b.HandleBatch)
}

// HandleBatch processes one published payload: parse, join, serialize, send.
// Anything that is not a tick array is logged and discarded.
func (b *Broadcaster) HandleBatch(payload string) {
	var batch []models.RawTick
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		b.logger.Warn("Discarding malformed update payload", zap.Error(err))
		return
	}

	enriched := Enrich(batch, b.tables.Current(), b.opts)
	if len(enriched) == 0 {
		return
	}

	msg, err := json.Marshal(enriched)
	if err != nil {
		b.logger.Error("Failed to serialize broadcast payload", zap.Error(err))
		return
	}

	b.sink.Broadcast(msg)
	b.logger.Debug("Broadcast sent", zap.Int("assets", len(enriched)))
}
